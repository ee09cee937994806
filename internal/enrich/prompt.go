package enrich

import (
	"fmt"
	"strings"
)

// promptTemplate asks the model for the exact JSON shape parseEnrichment
// expects. The predefined category list is the tag vocabulary read from
// the archive; matched tags must come from it.
const promptTemplate = `You are a content analysis and tagging expert.
Here is a list of predefined categories:
%s

Here is the content of a post:
---
%s
---

Based on the post content, perform the following tasks and provide the output ONLY in a valid JSON format:

1. "title": Generate a short, concise title for the post, under 10 words.
2. "summary": Write a concise, neutral summary of the post.
3. "matched_tags": From the predefined categories list, select up to three (3) of the most relevant tags. The result must be a JSON array of strings. If no tags match, return an empty array.
4. "ai_suggested_tag": Generate exactly one new, insightful tag that best categorizes the post, even if it is not in the predefined list. This tag must start with '#'. The result must be a JSON string.

Your response MUST be a single JSON object and nothing else.`

// buildPrompt renders the enrichment prompt for a post text and tag
// vocabulary.
func buildPrompt(text string, vocabulary []string) string {
	vocab := "(none)"
	if len(vocabulary) > 0 {
		vocab = strings.Join(vocabulary, ", ")
	}
	return fmt.Sprintf(promptTemplate, vocab, text)
}
