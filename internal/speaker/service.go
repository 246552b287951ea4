package speaker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/voicegate/voicegate/internal/audio"
)

// Config holds the pipeline decision settings.
type Config struct {
	// Enabled switches verification on. When false every segment passes
	// with MethodDisabled.
	Enabled bool
	// SimilarityThreshold is the minimum cosine similarity to accept a
	// segment as the enrolled user. Zero selects the default.
	SimilarityThreshold float64
	// AmplitudeThreshold is the minimum RMS energy a segment needs to
	// reach the embedding stage. Zero selects the default.
	AmplitudeThreshold float64
}

// DefaultConfig returns a Config with verification on and default
// thresholds.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		SimilarityThreshold: DefaultSimilarityThreshold,
		AmplitudeThreshold:  DefaultAmplitudeThreshold,
	}
}

// Service is the administrative surface of the pipeline: verification of
// live segments, enrollment, and profile queries. Safe for concurrent use;
// operations are short-lived with no background work.
type Service struct {
	cfg      Config
	gate     audio.Gate
	verifier *Verifier
	enroller *Enroller
	store    ProfileStore
	log      zerolog.Logger
}

// NewService wires the pipeline together.
func NewService(cfg Config, store ProfileStore, embedder Embedder, log zerolog.Logger) *Service {
	if cfg.AmplitudeThreshold == 0 {
		cfg.AmplitudeThreshold = DefaultAmplitudeThreshold
	}
	return &Service{
		cfg:      cfg,
		gate:     audio.Gate{Threshold: cfg.AmplitudeThreshold},
		verifier: NewVerifier(store, embedder, cfg.SimilarityThreshold, log),
		enroller: NewEnroller(store, embedder, log),
		store:    store,
		log:      log.With().Str("component", "speaker").Logger(),
	}
}

// Verify runs the segment through the pipeline: disabled check, amplitude
// gate, then embedding similarity. Only a profile store fault returns an
// error; everything else resolves to a Result with an explicit method.
func (s *Service) Verify(ctx context.Context, userID string, seg audio.Segment) (Result, error) {
	if !s.cfg.Enabled {
		return Result{
			IsUser:    true,
			SpeakerID: SpeakerEnrolled,
			Method:    MethodDisabled,
		}, nil
	}

	if !s.gate.Pass(seg.Samples) {
		// Short-circuit: no embedding inference for quiet segments.
		return Result{
			IsUser:    false,
			SpeakerID: SpeakerUnknown,
			Method:    MethodAmplitudeFiltered,
		}, nil
	}

	return s.verifier.Verify(ctx, userID, seg)
}

// Enroll derives and commits a profile from already-decoded samples.
func (s *Service) Enroll(ctx context.Context, userID string, samples []audio.Segment) (Enrollment, error) {
	return s.enroller.Enroll(ctx, userID, samples)
}

// EnrollFiles decodes the given audio files and enrolls them. A file that
// cannot be decoded rejects the whole request with ErrUnreadableSample.
func (s *Service) EnrollFiles(ctx context.Context, userID string, paths []string) (Enrollment, error) {
	if len(paths) < MinEnrollmentSamples {
		return Enrollment{}, fmt.Errorf("%w: got %d, need at least %d",
			ErrInsufficientSamples, len(paths), MinEnrollmentSamples)
	}

	samples := make([]audio.Segment, 0, len(paths))
	for _, path := range paths {
		seg, err := audio.LoadFile(path)
		if err != nil {
			return Enrollment{}, fmt.Errorf("%w: %s: %v", ErrUnreadableSample, path, err)
		}
		samples = append(samples, seg)
	}

	return s.enroller.Enroll(ctx, userID, samples)
}

// HasProfile reports whether userID has an active voice profile.
func (s *Service) HasProfile(ctx context.Context, userID string) (bool, error) {
	ok, err := s.store.HasActive(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrProfileStore, err)
	}
	return ok, nil
}
