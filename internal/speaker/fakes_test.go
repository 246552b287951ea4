package speaker

import (
	"context"
	"sync"
)

// fakeEmbedder returns canned embeddings (or errors) in call order.
type fakeEmbedder struct {
	mu      sync.Mutex
	results [][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ []float32, _ int) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return nil, nil
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeStore is an in-memory ProfileStore.
type fakeStore struct {
	mu       sync.Mutex
	active   map[string][]float32
	saved    map[string]int // userID -> sample count of last save
	nextID   int
	loadErr  error
	saveErr  error
	lastUser string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		active: make(map[string][]float32),
		saved:  make(map[string]int),
	}
}

func (f *fakeStore) Save(_ context.Context, userID string, embedding []float32, sampleCount int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.active[userID] = embedding
	f.saved[userID] = sampleCount
	f.lastUser = userID
	f.nextID++
	return string(rune('a' + f.nextID - 1)), nil
}

func (f *fakeStore) LoadActive(_ context.Context, userID string) ([]float32, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	emb, ok := f.active[userID]
	return emb, ok, nil
}

func (f *fakeStore) HasActive(ctx context.Context, userID string) (bool, error) {
	_, ok, err := f.LoadActive(ctx, userID)
	return ok, err
}
