// Package fetch retrieves post content through the Twitter API v2.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	twitter "github.com/g8rswimmer/go-twitter/v2"

	"github.com/btquan/tweetnest/internal/bot/domain"
	"github.com/btquan/tweetnest/internal/bot/links"
)

// bearerAuthorizer adds the API v2 bearer credential to each request.
type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// TwitterFetcher implements worker.ContentFetcher against the Twitter
// API v2 tweet lookup endpoint.
type TwitterFetcher struct {
	client *twitter.Client
	logger *slog.Logger
}

// NewTwitterFetcher creates a fetcher using the given bearer token.
func NewTwitterFetcher(bearerToken string, logger *slog.Logger) *TwitterFetcher {
	return &TwitterFetcher{
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{token: bearerToken},
			Client:     http.DefaultClient,
			Host:       "https://api.twitter.com",
		},
		logger: logger,
	}
}

// Fetch looks up the post behind a canonical URL. Failures map onto the
// fetch error taxonomy: ErrInvalidPostURL, ErrPostNotFound,
// ErrPostForbidden, ErrUnauthenticated, or a wrapped transport error.
func (f *TwitterFetcher) Fetch(ctx context.Context, url string) (*domain.PostContent, error) {
	tweetID := links.StatusID(url)
	if tweetID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPostURL, url)
	}

	f.logger.Info("Fetching post",
		slog.String("tweet_id", tweetID),
	)

	opts := twitter.TweetLookupOpts{
		TweetFields: []twitter.TweetField{
			twitter.TweetFieldText,
			twitter.TweetFieldCreatedAt,
			twitter.TweetFieldAttachments,
		},
		Expansions:  []twitter.Expansion{twitter.ExpansionAttachmentsMediaKeys},
		MediaFields: []twitter.MediaField{twitter.MediaFieldURL, twitter.MediaFieldType},
	}

	resp, err := f.client.TweetLookup(ctx, []string{tweetID}, opts)
	if err != nil {
		return nil, f.mapRequestError(err, tweetID)
	}

	if resp.Raw == nil || len(resp.Raw.Tweets) == 0 {
		if mapped := mapPartialErrors(resp.Raw); mapped != nil {
			return nil, fmt.Errorf("%w: tweet %s", mapped, tweetID)
		}
		return nil, fmt.Errorf("%w: tweet %s", domain.ErrPostNotFound, tweetID)
	}

	tweet := resp.Raw.Tweets[0]
	content := &domain.PostContent{
		Text: tweet.Text,
		URL:  url,
	}

	if tweet.Attachments != nil && len(tweet.Attachments.MediaKeys) > 0 {
		content.HasMedia = true
		content.MediaURLs = mediaURLs(resp.Raw, tweet.Attachments.MediaKeys)
	}

	f.logger.Info("Post fetched",
		slog.String("tweet_id", tweetID),
		slog.Int("text_length", len(content.Text)),
		slog.Bool("has_media", content.HasMedia),
	)

	return content, nil
}

// mapRequestError converts HTTP-level API failures into the fetch
// taxonomy.
func (f *TwitterFetcher) mapRequestError(err error, tweetID string) error {
	var apiErr *twitter.ErrorResponse
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", domain.ErrUnauthenticated, apiErr.Detail)
		case http.StatusForbidden:
			return fmt.Errorf("%w: tweet %s", domain.ErrPostForbidden, tweetID)
		case http.StatusNotFound:
			return fmt.Errorf("%w: tweet %s", domain.ErrPostNotFound, tweetID)
		}
	}
	return fmt.Errorf("tweet lookup failed: %w", err)
}

// mapPartialErrors inspects the per-resource errors the API returns for
// tweets it could not serve inside an otherwise successful response.
func mapPartialErrors(raw *twitter.TweetRaw) error {
	if raw == nil {
		return nil
	}
	for _, e := range raw.Errors {
		switch e.Title {
		case "Not Found Error":
			return domain.ErrPostNotFound
		case "Authorization Error":
			return domain.ErrPostForbidden
		}
	}
	return nil
}

// mediaURLs resolves attachment media keys against the response includes.
func mediaURLs(raw *twitter.TweetRaw, keys []string) []string {
	if raw.Includes == nil {
		return nil
	}
	byKey := make(map[string]string, len(raw.Includes.Media))
	for _, m := range raw.Includes.Media {
		if m.URL != "" {
			byKey[m.Key] = m.URL
		}
	}

	var urls []string
	for _, k := range keys {
		if u, ok := byKey[k]; ok {
			urls = append(urls, u)
		}
	}
	return urls
}
