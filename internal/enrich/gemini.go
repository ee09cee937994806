// Package enrich derives titles, summaries and tags from post text using
// the Gemini generative-language API.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/btquan/tweetnest/internal/bot/domain"
)

// ErrEmptyText is returned when there is nothing to enrich.
var ErrEmptyText = errors.New("post text is empty")

// GeminiEnricher implements worker.Enricher on top of the Gemini API.
type GeminiEnricher struct {
	client *genai.Client
	model  string
	logger *slog.Logger

	// generate is the model call, swappable in tests.
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewGeminiEnricher creates an enricher for the given API key and model
// name.
func NewGeminiEnricher(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiEnricher, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	if model == "" {
		return nil, errors.New("gemini model name cannot be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	e := &GeminiEnricher{
		client: client,
		model:  model,
		logger: logger,
	}
	e.generate = e.callModel
	return e, nil
}

// Enrich produces an EnrichedRecord for the given post text, matching
// tags against the supplied vocabulary. Safety blocks surface as
// domain.ErrContentBlocked, unusable output as
// domain.ErrMalformedEnrichment. No retries here: every failure is
// terminal for its job.
func (e *GeminiEnricher) Enrich(ctx context.Context, text string, vocabulary []string) (*domain.EnrichedRecord, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	prompt := buildPrompt(text, vocabulary)

	e.logger.Info("Requesting enrichment",
		slog.String("model", e.model),
		slog.Int("text_length", len(text)),
		slog.Int("vocabulary_size", len(vocabulary)),
	)

	raw, err := e.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	record, err := parseEnrichment(raw, vocabulary)
	if err != nil {
		e.logger.Error("Enrichment response unusable",
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	e.logger.Info("Enrichment complete",
		slog.String("title", record.Title),
		slog.Int("matched_tags", len(record.MatchedTags)),
		slog.String("suggested_tag", record.SuggestedTag),
	)

	return record, nil
}

// callModel performs the Gemini API call and returns the raw response
// text.
func (e *GeminiEnricher) callModel(ctx context.Context, prompt string) (string, error) {
	resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	return responseText(resp)
}

// responseText extracts the raw text from a generation response. Safety
// blocks happen at two levels: a blocked prompt comes back with zero
// candidates and PromptFeedback.BlockReason set, a blocked completion
// with a safety finish reason on the candidate. Both map to
// domain.ErrContentBlocked; anything else unusable maps to
// domain.ErrMalformedEnrichment.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: no response", domain.ErrMalformedEnrichment)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", domain.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", domain.ErrMalformedEnrichment)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", domain.ErrContentBlocked)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content in response", domain.ErrMalformedEnrichment)
	}

	var text string
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}
	return text, nil
}
