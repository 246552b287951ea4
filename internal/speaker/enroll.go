package speaker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/voicegate/voicegate/internal/audio"
)

// Enroller derives a voice profile from sample recordings and commits it.
// Unlike verification it fails loudly: a degraded model would silently
// corrupt the profile, so provider errors are surfaced, and no partial
// profile is ever written.
type Enroller struct {
	store    ProfileStore
	embedder Embedder
	log      zerolog.Logger
}

// NewEnroller creates an Enroller.
func NewEnroller(store ProfileStore, embedder Embedder, log zerolog.Logger) *Enroller {
	return &Enroller{
		store:    store,
		embedder: embedder,
		log:      log.With().Str("component", "enroller").Logger(),
	}
}

// Enroll validates the samples, embeds each one, aggregates them into a
// profile vector, and commits it as userID's new active profile. The
// profile embedding is the element-wise arithmetic mean of the per-sample
// embeddings: averaging several noisy estimates of the same voice reduces
// variance versus any single sample.
func (e *Enroller) Enroll(ctx context.Context, userID string, samples []audio.Segment) (Enrollment, error) {
	// Validate everything before any embedding call.
	if len(samples) < MinEnrollmentSamples {
		return Enrollment{}, fmt.Errorf("%w: got %d, need at least %d",
			ErrInsufficientSamples, len(samples), MinEnrollmentSamples)
	}
	for i, s := range samples {
		if d := s.Duration(); d < MinSampleSeconds {
			return Enrollment{}, fmt.Errorf("%w: sample %d is %.2fs, need at least %.1fs",
				ErrSampleTooShort, i, d, MinSampleSeconds)
		}
	}

	var mean []float64
	for i, s := range samples {
		embedding, err := e.embedder.Embed(ctx, s.Samples, s.SampleRate)
		if err != nil {
			return Enrollment{}, fmt.Errorf("%w: sample %d: %v", ErrEmbeddingProvider, i, err)
		}
		if mean == nil {
			mean = make([]float64, len(embedding))
		}
		if len(embedding) != len(mean) {
			return Enrollment{}, fmt.Errorf("%w: sample %d: dimension %d, want %d",
				ErrEmbeddingProvider, i, len(embedding), len(mean))
		}
		for j, v := range embedding {
			mean[j] += float64(v)
		}
	}
	floats.Scale(1/float64(len(samples)), mean)

	profile := make([]float32, len(mean))
	for i, v := range mean {
		profile[i] = float32(v)
	}

	profileID, err := e.store.Save(ctx, userID, profile, len(samples))
	if err != nil {
		return Enrollment{}, fmt.Errorf("%w: %v", ErrProfileStore, err)
	}

	e.log.Info().
		Str("user_id", userID).
		Str("profile_id", profileID).
		Int("sample_count", len(samples)).
		Msg("enrollment committed")

	return Enrollment{
		ProfileID:   profileID,
		UserID:      userID,
		SampleCount: len(samples),
	}, nil
}
