package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/btquan/tweetnest/internal/bot/domain"
	"github.com/btquan/tweetnest/shared/postgresql"
)

// PostgresArchive stores enriched posts in a Postgres table. Expected
// schema:
//
//	CREATE TABLE tags (
//	    name TEXT PRIMARY KEY
//	);
//
//	CREATE TABLE saved_posts (
//	    post_id       UUID PRIMARY KEY,
//	    url           TEXT NOT NULL,
//	    raw_text      TEXT NOT NULL,
//	    title         TEXT NOT NULL,
//	    summary       TEXT NOT NULL,
//	    matched_tags  TEXT[] NOT NULL DEFAULT '{}',
//	    suggested_tag TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresArchive struct {
	client *postgresql.Client
	logger *slog.Logger
}

// NewPostgresArchive creates an archive backed by the given database
// client.
func NewPostgresArchive(client *postgresql.Client, logger *slog.Logger) *PostgresArchive {
	return &PostgresArchive{
		client: client,
		logger: logger,
	}
}

// TagVocabulary reads the curated tag set from the tags table.
func (a *PostgresArchive) TagVocabulary(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM tags ORDER BY name`

	var tags []string
	if err := a.client.SelectContext(ctx, &tags, query); err != nil {
		return nil, fmt.Errorf("failed to read tag vocabulary: %w", err)
	}

	a.logger.Info("Tag vocabulary loaded from Postgres",
		slog.Int("tag_count", len(tags)),
	)

	return tags, nil
}

// Save inserts one row per archived post.
func (a *PostgresArchive) Save(ctx context.Context, post *domain.SavedPost) error {
	query := `
		INSERT INTO saved_posts (post_id, url, raw_text, title, summary, matched_tags, suggested_tag)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	err := a.client.ExecContext(ctx, query,
		uuid.NewString(),
		post.URL,
		post.RawText,
		post.Record.Title,
		post.Record.Summary,
		tagsArray(post.Record.MatchedTags),
		post.Record.SuggestedTag,
	)
	if err != nil {
		return fmt.Errorf("failed to insert saved post: %w", err)
	}

	a.logger.Info("Post archived to Postgres",
		slog.String("url", post.URL),
		slog.String("title", post.Record.Title),
	)

	return nil
}

// tagsArray binds matched tags as a Postgres array. A record with no
// matched tags must still bind as an empty array, not SQL NULL; the
// matched_tags column is NOT NULL.
func tagsArray(tags []string) pq.StringArray {
	if len(tags) == 0 {
		return pq.StringArray{}
	}
	return pq.StringArray(tags)
}
