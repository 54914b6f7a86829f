package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown client type, task or utility.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Research tasks fall back to offline screening without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Pipeline Errors.

	// ErrNoCheckpoint indicates no checkpoint exists for a client.
	ErrNoCheckpoint = errors.New("no checkpoint")

	// ErrReviewNotReached indicates finalize was called before the run paused for review.
	ErrReviewNotReached = errors.New("review stage not reached")

	// ErrInvalidEvidence indicates an evidence record failed validation at the store boundary.
	ErrInvalidEvidence = errors.New("invalid evidence record")

	// ErrEmptySynthesis indicates the synthesis collaborator returned nothing usable.
	ErrEmptySynthesis = errors.New("synthesis returned no structured output")
)
