package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"addrcore/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRegistry answers from a keyword table and records every query.
type fakeRegistry struct {
	mu      sync.Mutex
	answers map[string][]model.RegistryCandidate
	err     error
	queries []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{answers: make(map[string][]model.RegistryCandidate)}
}

func (f *fakeRegistry) on(keyword string, candidates ...model.RegistryCandidate) *fakeRegistry {
	f.answers[keyword] = candidates
	return f
}

func (f *fakeRegistry) Query(_ context.Context, keyword string) (*model.RegistryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, keyword)
	if f.err != nil {
		return nil, f.err
	}
	candidates := f.answers[keyword]
	return &model.RegistryResponse{TotalCount: len(candidates), Candidates: candidates}, nil
}

func (f *fakeRegistry) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fakePatternStore struct {
	match *model.PatternMatch
	err   error
	calls int
}

func (f *fakePatternStore) FindByPattern(_ context.Context, _ string, _ model.BuildingClass) (*model.PatternMatch, error) {
	f.calls++
	return f.match, f.err
}

type savedCorrection struct {
	original, corrected string
	class               model.BuildingClass
	correctionType      string
	confidence          float64
}

type fakeLearnedStore struct {
	mu      sync.Mutex
	hit     *model.LearnedCorrection
	findErr error
	saveErr error
	saved   []savedCorrection
}

func (f *fakeLearnedStore) FindLearned(_ context.Context, _ string, _ model.BuildingClass) (*model.LearnedCorrection, error) {
	return f.hit, f.findErr
}

func (f *fakeLearnedStore) SaveLearned(_ context.Context, original, corrected string, class model.BuildingClass, correctionType string, confidence float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, savedCorrection{original, corrected, class, correctionType, confidence})
	return f.saveErr
}

type fakeAI struct {
	answer *model.AINormalization
	err    error
	calls  int
}

func (f *fakeAI) NormalizeDetail(_ context.Context, _ string, _ model.BuildingClass, _ string) (*model.AINormalization, error) {
	f.calls++
	return f.answer, f.err
}

// memoryCache is an in-process QueryCache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}
