package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/stretchr/testify/assert"

	"github.com/btquan/tweetnest/internal/bot/domain"
)

func TestFetch_InvalidURL(t *testing.T) {
	f := NewTwitterFetcher("token", slog.New(slog.DiscardHandler))

	_, err := f.Fetch(context.Background(), "https://example.com/not-a-post")
	assert.ErrorIs(t, err, domain.ErrInvalidPostURL)
}

func TestMapRequestError(t *testing.T) {
	f := &TwitterFetcher{logger: slog.New(slog.DiscardHandler)}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "unauthorized",
			err:  &twitter.ErrorResponse{StatusCode: http.StatusUnauthorized, Detail: "bad token"},
			want: domain.ErrUnauthenticated,
		},
		{
			name: "forbidden",
			err:  &twitter.ErrorResponse{StatusCode: http.StatusForbidden},
			want: domain.ErrPostForbidden,
		},
		{
			name: "not found",
			err:  &twitter.ErrorResponse{StatusCode: http.StatusNotFound},
			want: domain.ErrPostNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.mapRequestError(tt.err, "123")
			assert.ErrorIs(t, got, tt.want)
		})
	}

	t.Run("other errors are wrapped, not mapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		got := f.mapRequestError(cause, "123")
		assert.ErrorIs(t, got, cause)
		assert.NotErrorIs(t, got, domain.ErrPostNotFound)
	})
}

func TestMapPartialErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  *twitter.TweetRaw
		want error
	}{
		{
			name: "nil raw",
		},
		{
			name: "no errors",
			raw:  &twitter.TweetRaw{},
		},
		{
			name: "deleted tweet",
			raw: &twitter.TweetRaw{
				Errors: []*twitter.ErrorObj{{Title: "Not Found Error"}},
			},
			want: domain.ErrPostNotFound,
		},
		{
			name: "protected account",
			raw: &twitter.TweetRaw{
				Errors: []*twitter.ErrorObj{{Title: "Authorization Error"}},
			},
			want: domain.ErrPostForbidden,
		},
		{
			name: "unknown error title is ignored",
			raw: &twitter.TweetRaw{
				Errors: []*twitter.ErrorObj{{Title: "Something Else"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapPartialErrors(tt.raw))
		})
	}
}

func TestMediaURLs(t *testing.T) {
	raw := &twitter.TweetRaw{
		Includes: &twitter.TweetRawIncludes{
			Media: []*twitter.MediaObj{
				{Key: "m1", URL: "https://pbs.example/m1.jpg"},
				{Key: "m2"},
				{Key: "m3", URL: "https://pbs.example/m3.jpg"},
			},
		},
	}

	got := mediaURLs(raw, []string{"m1", "m2", "m3", "missing"})
	assert.Equal(t, []string{"https://pbs.example/m1.jpg", "https://pbs.example/m3.jpg"}, got)

	assert.Nil(t, mediaURLs(&twitter.TweetRaw{}, []string{"m1"}))
}
