package speaker

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voicegate/voicegate/internal/audio"
)

// segmentOfDuration returns a quiet test segment of the given length.
func segmentOfDuration(seconds float64) audio.Segment {
	n := int(16000 * seconds)
	return audio.Segment{Samples: make([]float32, n), SampleRate: 16000}
}

func TestEnrollTooFewSamples(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{}
	e := NewEnroller(store, embedder, zerolog.Nop())

	samples := []audio.Segment{segmentOfDuration(3), segmentOfDuration(3)}
	_, err := e.Enroll(context.Background(), "alice", samples)
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Errorf("error = %v, want ErrInsufficientSamples", err)
	}
	if embedder.callCount() != 0 {
		t.Errorf("embedder called %d times, want 0 (validate before embedding)", embedder.callCount())
	}
}

func TestEnrollSampleTooShort(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{}
	e := NewEnroller(store, embedder, zerolog.Nop())

	samples := []audio.Segment{
		segmentOfDuration(3),
		segmentOfDuration(1.0), // below the 1.5s minimum
		segmentOfDuration(3),
	}
	_, err := e.Enroll(context.Background(), "alice", samples)
	if !errors.Is(err, ErrSampleTooShort) {
		t.Errorf("error = %v, want ErrSampleTooShort", err)
	}
	if embedder.callCount() != 0 {
		t.Errorf("embedder called %d times, want 0 (validate before embedding)", embedder.callCount())
	}
	if len(store.saved) != 0 {
		t.Error("profile committed despite validation failure")
	}
}

func TestEnrollCommitsMeanEmbedding(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{results: [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{2, 2, 0, 0},
	}}
	e := NewEnroller(store, embedder, zerolog.Nop())

	samples := []audio.Segment{
		segmentOfDuration(3),
		segmentOfDuration(3),
		segmentOfDuration(3),
	}
	enrollment, err := e.Enroll(context.Background(), "alice", samples)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	if enrollment.UserID != "alice" {
		t.Errorf("UserID = %q, want %q", enrollment.UserID, "alice")
	}
	if enrollment.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", enrollment.SampleCount)
	}
	if enrollment.ProfileID == "" {
		t.Error("ProfileID is empty")
	}

	got := store.active["alice"]
	want := []float32{1, 1, 0, 0} // ([1 0]+[0 1]+[2 2]) / 3
	if len(got) != len(want) {
		t.Fatalf("committed embedding has %d dims, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("embedding[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if store.saved["alice"] != 3 {
		t.Errorf("saved sample count = %d, want 3", store.saved["alice"])
	}
}

func TestEnrollEmbedderFailureIsHard(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{err: errors.New("model exploded")}
	e := NewEnroller(store, embedder, zerolog.Nop())

	samples := []audio.Segment{
		segmentOfDuration(3),
		segmentOfDuration(3),
		segmentOfDuration(3),
	}
	_, err := e.Enroll(context.Background(), "alice", samples)
	if !errors.Is(err, ErrEmbeddingProvider) {
		t.Errorf("error = %v, want ErrEmbeddingProvider", err)
	}
	if len(store.saved) != 0 {
		t.Error("profile committed despite embedder failure")
	}
}

func TestEnrollDimensionMismatchIsHard(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{results: [][]float32{
		{1, 0, 0},
		{0, 1}, // wrong dimensionality
		{1, 1, 1},
	}}
	e := NewEnroller(store, embedder, zerolog.Nop())

	samples := []audio.Segment{
		segmentOfDuration(3),
		segmentOfDuration(3),
		segmentOfDuration(3),
	}
	_, err := e.Enroll(context.Background(), "alice", samples)
	if !errors.Is(err, ErrEmbeddingProvider) {
		t.Errorf("error = %v, want ErrEmbeddingProvider", err)
	}
	if len(store.saved) != 0 {
		t.Error("profile committed despite dimension mismatch")
	}
}

func TestEnrollStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("disk on fire")
	embedder := &fakeEmbedder{results: [][]float32{{1}, {1}, {1}}}
	e := NewEnroller(store, embedder, zerolog.Nop())

	samples := []audio.Segment{
		segmentOfDuration(3),
		segmentOfDuration(3),
		segmentOfDuration(3),
	}
	_, err := e.Enroll(context.Background(), "alice", samples)
	if !errors.Is(err, ErrProfileStore) {
		t.Errorf("error = %v, want ErrProfileStore", err)
	}
}
