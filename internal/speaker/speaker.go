// Package speaker implements the two-level speaker-verification pipeline:
// a cheap amplitude gate in front of an embedding-similarity decision, the
// enrollment procedure that derives a voice profile from sample recordings,
// and the administrative surface gluing them to a profile store.
package speaker

import (
	"context"
)

// Minimum enrollment requirements.
const (
	// MinEnrollmentSamples is the fewest sample recordings accepted
	// for enrollment.
	MinEnrollmentSamples = 3
	// MinSampleSeconds is the shortest acceptable sample duration.
	MinSampleSeconds = 1.5
)

// Default decision thresholds.
const (
	DefaultSimilarityThreshold = 0.75
	DefaultAmplitudeThreshold  = 0.01
)

// failOpenConfidence marks a segment that passed unverified because the
// embedding provider failed. The value is a fixed sentinel, not a
// probability; no threshold logic may be derived from it.
const failOpenConfidence = 0.5

// Method records which decision path produced a verification result.
type Method string

const (
	// MethodDisabled means verification is switched off and the segment
	// passed without inspection.
	MethodDisabled Method = "disabled"
	// MethodNoProfile means the segment passed open because the user has
	// no enrolled profile, or the embedding provider failed.
	MethodNoProfile Method = "no_profile"
	// MethodAmplitudeFiltered means the segment was rejected by the
	// energy gate before any inference ran.
	MethodAmplitudeFiltered Method = "amplitude_filtered"
	// MethodEmbedding means a full embedding-similarity comparison ran.
	MethodEmbedding Method = "embedding"
)

// Speaker identifiers in verification results.
const (
	SpeakerUnknown  = 0
	SpeakerEnrolled = 1
)

// Result is the per-segment verification outcome. Confidence carries the
// raw similarity score only when Method is MethodEmbedding; other paths
// use fixed sentinel values.
type Result struct {
	IsUser     bool    `json:"is_user"`
	Confidence float64 `json:"confidence"`
	SpeakerID  int     `json:"speaker_id"`
	Method     Method  `json:"method"`
}

// Enrollment describes a committed voice profile.
type Enrollment struct {
	ProfileID   string `json:"profile_id"`
	UserID      string `json:"user_id"`
	SampleCount int    `json:"sample_count"`
}

// Embedder converts a speech segment into a fixed-length vector. The call
// blocks for the duration of model inference and must tolerate concurrent
// invocation.
type Embedder interface {
	Embed(ctx context.Context, samples []float32, sampleRate int) ([]float32, error)
}

// ProfileStore persists voice profiles keyed by user, holding at most one
// active profile per user.
type ProfileStore interface {
	// Save atomically replaces the user's active profile and returns the
	// new profile's ID.
	Save(ctx context.Context, userID string, embedding []float32, sampleCount int) (string, error)
	// LoadActive returns the active profile's embedding, or ok=false when
	// the user has none.
	LoadActive(ctx context.Context, userID string) (embedding []float32, ok bool, err error)
	// HasActive reports whether the user has an active profile.
	HasActive(ctx context.Context, userID string) (bool, error)
}
