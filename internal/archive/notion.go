// Package archive persists enriched posts into the configured workspace
// backend. Exactly one backend is active per deployment, selected by
// configuration.
package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jomei/notionapi"

	"github.com/btquan/tweetnest/internal/bot/domain"
)

// tagsPropertyName is the multi-select property holding the controlled
// tag vocabulary in the target Notion database.
const tagsPropertyName = "Tags"

// NotionArchive stores enriched posts as pages of a Notion database.
type NotionArchive struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
	logger     *slog.Logger
}

// NewNotionArchive creates an archive writing to the given database.
func NewNotionArchive(apiKey, databaseID string, logger *slog.Logger) *NotionArchive {
	return &NotionArchive{
		client:     notionapi.NewClient(notionapi.Token(apiKey)),
		databaseID: notionapi.DatabaseID(databaseID),
		logger:     logger,
	}
}

// TagVocabulary reads the options of the database's Tags multi-select
// property. A database without that property yields an empty vocabulary,
// not an error.
func (a *NotionArchive) TagVocabulary(ctx context.Context) ([]string, error) {
	db, err := a.client.Database.Get(ctx, a.databaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to read Notion database: %w", err)
	}

	prop, ok := db.Properties[tagsPropertyName]
	if !ok {
		a.logger.Warn("Notion database has no Tags property")
		return nil, nil
	}

	multiSelect, ok := prop.(*notionapi.MultiSelectPropertyConfig)
	if !ok {
		a.logger.Warn("Notion Tags property is not a multi-select")
		return nil, nil
	}

	tags := make([]string, 0, len(multiSelect.MultiSelect.Options))
	for _, opt := range multiSelect.MultiSelect.Options {
		tags = append(tags, opt.Name)
	}

	a.logger.Info("Tag vocabulary loaded from Notion",
		slog.Int("tag_count", len(tags)),
	)

	return tags, nil
}

// Save creates one page per post with the title, raw content, URL,
// summary and tags as database properties.
func (a *NotionArchive) Save(ctx context.Context, post *domain.SavedPost) error {
	options := make([]notionapi.Option, 0, len(post.Record.MatchedTags))
	for _, tag := range post.Record.MatchedTags {
		options = append(options, notionapi.Option{Name: tag})
	}

	_, err := a.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: a.databaseID,
		},
		Properties: notionapi.Properties{
			"X Title": notionapi.TitleProperty{
				Title: richText(post.Record.Title),
			},
			"X Content": notionapi.RichTextProperty{
				RichText: richText(post.RawText),
			},
			"URL": notionapi.URLProperty{
				URL: post.URL,
			},
			"Summary": notionapi.RichTextProperty{
				RichText: richText(post.Record.Summary),
			},
			"AI Tag": notionapi.RichTextProperty{
				RichText: richText(post.Record.SuggestedTag),
			},
			tagsPropertyName: notionapi.MultiSelectProperty{
				MultiSelect: options,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create Notion page: %w", err)
	}

	a.logger.Info("Post archived to Notion",
		slog.String("url", post.URL),
		slog.String("title", post.Record.Title),
	)

	return nil
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{Text: &notionapi.Text{Content: content}},
	}
}
