package enrich

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/btquan/tweetnest/internal/bot/domain"
)

func newTestEnricher(generate func(ctx context.Context, prompt string) (string, error)) *GeminiEnricher {
	return &GeminiEnricher{
		model:    "test-model",
		logger:   slog.New(slog.DiscardHandler),
		generate: generate,
	}
}

func TestGeminiEnricher_Enrich(t *testing.T) {
	vocabulary := []string{"go", "ai"}

	t.Run("returns a parsed record", func(t *testing.T) {
		var gotPrompt string
		e := newTestEnricher(func(_ context.Context, prompt string) (string, error) {
			gotPrompt = prompt
			return `{"title":"T","summary":"S","matched_tags":["ai"],"ai_suggested_tag":"devops"}`, nil
		})

		record, err := e.Enrich(context.Background(), "some post text", vocabulary)
		require.NoError(t, err)

		assert.Equal(t, "T", record.Title)
		assert.Equal(t, "S", record.Summary)
		assert.Equal(t, []string{"ai"}, record.MatchedTags)
		assert.Equal(t, "#devops", record.SuggestedTag)

		// The prompt carries both the post text and the vocabulary.
		assert.Contains(t, gotPrompt, "some post text")
		assert.Contains(t, gotPrompt, "go, ai")
	})

	t.Run("empty text is rejected before calling the model", func(t *testing.T) {
		called := false
		e := newTestEnricher(func(context.Context, string) (string, error) {
			called = true
			return "", nil
		})

		_, err := e.Enrich(context.Background(), "", vocabulary)
		assert.ErrorIs(t, err, ErrEmptyText)
		assert.False(t, called)
	})

	t.Run("model errors pass through", func(t *testing.T) {
		wantErr := errors.New("quota exceeded")
		e := newTestEnricher(func(context.Context, string) (string, error) {
			return "", wantErr
		})

		_, err := e.Enrich(context.Background(), "text", vocabulary)
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("unparseable output is malformed", func(t *testing.T) {
		e := newTestEnricher(func(context.Context, string) (string, error) {
			return "not json at all", nil
		})

		_, err := e.Enrich(context.Background(), "text", vocabulary)
		assert.ErrorIs(t, err, domain.ErrMalformedEnrichment)
	})
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr error
	}{
		{
			name:    "nil response",
			wantErr: domain.ErrMalformedEnrichment,
		},
		{
			name: "blocked prompt with zero candidates",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
					BlockReason: genai.BlockedReasonSafety,
				},
			},
			wantErr: domain.ErrContentBlocked,
		},
		{
			name:    "no candidates and no feedback",
			resp:    &genai.GenerateContentResponse{},
			wantErr: domain.ErrMalformedEnrichment,
		},
		{
			name: "candidate finished for safety",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{FinishReason: genai.FinishReasonSafety},
				},
			},
			wantErr: domain.ErrContentBlocked,
		},
		{
			name: "candidate without content",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{}},
			},
			wantErr: domain.ErrMalformedEnrichment,
		},
		{
			name: "parts concatenated",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{
						Content: &genai.Content{
							Parts: []*genai.Part{{Text: `{"title":`}, {Text: `"T"}`}},
						},
					},
				},
			},
			want: `{"title":"T"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := responseText(tt.resp)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
