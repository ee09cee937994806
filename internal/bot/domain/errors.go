package domain

import "errors"

var (
	// ErrInvalidPostURL is returned when no status id can be parsed from a URL
	ErrInvalidPostURL = errors.New("no status id in post URL")

	// ErrPostNotFound is returned when the post does not exist or was deleted
	ErrPostNotFound = errors.New("post not found")

	// ErrPostForbidden is returned when the post is protected or restricted
	ErrPostForbidden = errors.New("post access forbidden")

	// ErrUnauthenticated is returned when the fetch credential is rejected
	ErrUnauthenticated = errors.New("fetch credential rejected")

	// ErrContentBlocked is returned when the enrichment API refuses the content
	ErrContentBlocked = errors.New("content blocked by enrichment safety filters")

	// ErrMalformedEnrichment is returned when the enrichment response cannot
	// be parsed into a complete record
	ErrMalformedEnrichment = errors.New("malformed enrichment response")
)
