package speaker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/voicegate/voicegate/internal/audio"
)

// Verifier decides whether an audio segment was spoken by the enrolled
// user, by comparing the segment's embedding against the user's stored
// profile. Every failure except a storage fault resolves to a fail-open
// result so a flaky model never causes data loss upstream.
type Verifier struct {
	store     ProfileStore
	embedder  Embedder
	threshold float64
	log       zerolog.Logger
}

// NewVerifier creates a Verifier. A zero threshold selects the default.
func NewVerifier(store ProfileStore, embedder Embedder, threshold float64, log zerolog.Logger) *Verifier {
	if threshold == 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Verifier{
		store:     store,
		embedder:  embedder,
		threshold: threshold,
		log:       log.With().Str("component", "verifier").Logger(),
	}
}

// Verify scores the segment against userID's active profile. The returned
// error is non-nil only for a profile store fault; all other failure paths
// produce a fail-open Result.
func (v *Verifier) Verify(ctx context.Context, userID string, seg audio.Segment) (Result, error) {
	profile, ok, err := v.store.LoadActive(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrProfileStore, err)
	}
	if !ok {
		// No enrollment yet: never reject, preferring false acceptance
		// over data loss.
		v.log.Debug().Str("user_id", userID).Msg("no active profile, passing open")
		return Result{
			IsUser:     true,
			Confidence: 1.0,
			SpeakerID:  SpeakerEnrolled,
			Method:     MethodNoProfile,
		}, nil
	}

	embedding, err := v.embedder.Embed(ctx, seg.Samples, seg.SampleRate)
	if err != nil {
		// Fail open, but with reduced confidence to signal the segment
		// passed unverified.
		v.log.Warn().Err(err).Str("user_id", userID).Msg("embedding failed, passing open")
		return Result{
			IsUser:     true,
			Confidence: failOpenConfidence,
			SpeakerID:  SpeakerEnrolled,
			Method:     MethodNoProfile,
		}, nil
	}

	similarity := CosineSimilarity(embedding, profile)
	accepted := similarity >= v.threshold

	speakerID := SpeakerUnknown
	if accepted {
		speakerID = SpeakerEnrolled
	}

	v.log.Debug().
		Str("user_id", userID).
		Float64("similarity", similarity).
		Bool("accepted", accepted).
		Msg("segment verified")

	return Result{
		IsUser:     accepted,
		Confidence: similarity,
		SpeakerID:  speakerID,
		Method:     MethodEmbedding,
	}, nil
}
