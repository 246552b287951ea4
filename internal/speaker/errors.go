package speaker

import "errors"

// Enrollment validation errors. All are recoverable: the request is
// rejected and no partial profile is committed.
var (
	// ErrInsufficientSamples means fewer samples were supplied than
	// enrollment requires.
	ErrInsufficientSamples = errors.New("insufficient enrollment samples")
	// ErrSampleTooShort means a sample is below the minimum duration.
	ErrSampleTooShort = errors.New("enrollment sample too short")
	// ErrUnreadableSample means a sample file could not be decoded.
	ErrUnreadableSample = errors.New("unreadable enrollment sample")
)

// Pipeline errors.
var (
	// ErrEmbeddingProvider wraps an embedding model fault. Enrollment
	// fails hard on it; verification converts it to a fail-open result
	// instead of surfacing it.
	ErrEmbeddingProvider = errors.New("embedding provider failure")
	// ErrProfileStore wraps a storage fault. Fatal for both flows.
	ErrProfileStore = errors.New("profile store failure")
)
