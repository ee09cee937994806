package domain

// Job represents one queued link-processing request. A Job is immutable
// once enqueued and is consumed by exactly one worker.
type Job struct {
	// ID is a correlation id used only in logs.
	ID string

	// URL is the canonical post URL (query string already stripped).
	URL string

	// ChatID identifies the chat the link arrived in.
	ChatID int64

	// StatusMessageID is the message edited in place with progress.
	StatusMessageID int

	// OriginMessageID is the triggering message, deleted on success.
	OriginMessageID int
}

// PostContent is the output of a content fetch.
type PostContent struct {
	Text      string
	URL       string
	HasMedia  bool
	MediaURLs []string
}

// EnrichedRecord is the structured output of the enrichment service.
// Created transiently per job and discarded after the archive write.
type EnrichedRecord struct {
	Title string
	// Summary is a short neutral summary of the post text.
	Summary string
	// MatchedTags is a subset (at most 3) of the controlled tag vocabulary.
	MatchedTags []string
	// SuggestedTag is exactly one freeform tag, '#'-prefixed.
	SuggestedTag string
}

// SavedPost is the record handed to the archive backend.
type SavedPost struct {
	URL     string
	RawText string
	Record  *EnrichedRecord
}

// ChatMessage is a transport-independent inbound chat message.
// LinkAnnotations carries URLs the chat transport itself recognized as
// links (some transports deliver these out-of-band from the visible text).
type ChatMessage struct {
	ChatID          int64
	MessageID       int
	Text            string
	LinkAnnotations []string
}
