package enrich

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/btquan/tweetnest/internal/bot/domain"
)

// enrichmentSchema is the JSON shape the prompt demands from the model.
type enrichmentSchema struct {
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	MatchedTags    []string `json:"matched_tags"`
	AISuggestedTag string   `json:"ai_suggested_tag"`
}

// maxMatchedTags bounds how many vocabulary tags a record may carry.
const maxMatchedTags = 3

// parseEnrichment turns the raw model output into an EnrichedRecord.
// Models wrap JSON in markdown fences often enough that stripping them is
// part of the contract. Missing title or summary, or unparseable JSON,
// yields ErrMalformedEnrichment; the rest is normalized (matched tags
// filtered to the vocabulary and clamped, suggested tag '#'-prefixed).
func parseEnrichment(raw string, vocabulary []string) (*domain.EnrichedRecord, error) {
	cleaned := stripJSONFences(raw)

	var parsed enrichmentSchema
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEnrichment, err)
	}

	if parsed.Title == "" || parsed.Summary == "" {
		return nil, fmt.Errorf("%w: missing title or summary", domain.ErrMalformedEnrichment)
	}

	record := &domain.EnrichedRecord{
		Title:        parsed.Title,
		Summary:      parsed.Summary,
		MatchedTags:  filterMatchedTags(parsed.MatchedTags, vocabulary),
		SuggestedTag: normalizeSuggestedTag(parsed.AISuggestedTag),
	}

	if record.SuggestedTag == "" {
		return nil, fmt.Errorf("%w: missing suggested tag", domain.ErrMalformedEnrichment)
	}

	return record, nil
}

// stripJSONFences removes markdown code fences around a JSON payload.
func stripJSONFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// filterMatchedTags keeps only tags present in the vocabulary, preserving
// order, clamped to maxMatchedTags. With an empty vocabulary nothing can
// match.
func filterMatchedTags(tags, vocabulary []string) []string {
	if len(tags) == 0 || len(vocabulary) == 0 {
		return nil
	}

	known := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		known[v] = struct{}{}
	}

	var out []string
	for _, t := range tags {
		if _, ok := known[t]; !ok {
			continue
		}
		out = append(out, t)
		if len(out) == maxMatchedTags {
			break
		}
	}
	return out
}

// normalizeSuggestedTag trims the tag and guarantees the '#' prefix.
func normalizeSuggestedTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return tag
}
