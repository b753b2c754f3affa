package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"careerintel/pkg/cache"
	"careerintel/pkg/config"
	"careerintel/pkg/models"
	"careerintel/pkg/sources"
)

type stubAdapter struct {
	name  string
	jobs  []models.RawJob
	err   error
	delay time.Duration
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Search(ctx context.Context, query, location string, limit int) ([]models.RawJob, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.jobs, s.err
}

type fakeStore struct {
	data map[string][]byte
	sets int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	b, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (f *fakeStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = b
	f.sets++
	return nil
}

func testSettings() config.GlobalSettings {
	return config.GlobalSettings{
		TimeoutMs:         500,
		ResultCap:         50,
		CacheTTLSeconds:   60,
		RequestsPerSecond: 100,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func buildAggregator(t *testing.T, store cache.Store, adapters ...sources.Adapter) *Aggregator {
	t.Helper()
	reg := sources.NewRegistry()
	for _, a := range adapters {
		if err := reg.Register(a); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	return New(reg, store, quietLogger(), testSettings())
}

func TestAggregateMergesAndSkipsMalformed(t *testing.T) {
	a := buildAggregator(t, newFakeStore(),
		&stubAdapter{name: "alpha", jobs: []models.RawJob{
			{Title: "Go Developer", Company: "Acme", Location: "Berlin"},
			{Title: "Go Developer", Company: "Acme"}, // missing location: distinct key, still valid
			{Title: "", Company: "Broken"},           // malformed, skipped
		}},
		&stubAdapter{name: "beta", jobs: []models.RawJob{
			{Title: "Platform Engineer", Company: "Globex", Location: "Remote", WorkMode: models.WorkModeRemote},
		}},
	)

	postings, err := a.Aggregate(context.Background(), Request{Query: "go"})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(postings) != 3 {
		t.Fatalf("got %d postings, want 3", len(postings))
	}
	for _, p := range postings {
		if p.Source == "" {
			t.Errorf("posting %q missing source", p.Title)
		}
		if p.Skills == nil {
			t.Errorf("posting %q has nil skills", p.Title)
		}
	}
}

func TestAggregateDeduplicates(t *testing.T) {
	shared := models.RawJob{Title: "Go Developer", Company: "Acme", Location: "Berlin"}
	a := buildAggregator(t, newFakeStore(),
		&stubAdapter{name: "alpha", jobs: []models.RawJob{shared}},
		&stubAdapter{name: "beta", jobs: []models.RawJob{
			{Title: "GO DEVELOPER", Company: "ACME", Location: "berlin"}, // same key, case-folded
		}},
	)

	postings, err := a.Aggregate(context.Background(), Request{Query: "go"})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(postings) != 1 {
		t.Errorf("got %d postings, want 1 after dedup", len(postings))
	}
}

func TestAggregateToleratesSourceFailure(t *testing.T) {
	a := buildAggregator(t, newFakeStore(),
		&stubAdapter{name: "alpha", jobs: []models.RawJob{
			{Title: "Go Developer", Company: "Acme", Location: "Berlin"},
			{Title: "Backend Engineer", Company: "Acme", Location: "Berlin"},
		}},
		&stubAdapter{name: "beta", err: errors.New("connection refused")},
		&stubAdapter{name: "gamma", delay: 2 * time.Second}, // exceeds per-source timeout
	)

	postings, err := a.Aggregate(context.Background(), Request{Query: "go"})
	if err != nil {
		t.Fatalf("partial failure must not fail the call: %v", err)
	}
	if len(postings) != 2 {
		t.Errorf("got %d postings, want 2 from the healthy source", len(postings))
	}
}

func TestAggregateAllSourcesDownYieldsEmpty(t *testing.T) {
	a := buildAggregator(t, newFakeStore(),
		&stubAdapter{name: "alpha", err: errors.New("down")},
		&stubAdapter{name: "beta", err: errors.New("down")},
	)

	postings, err := a.Aggregate(context.Background(), Request{Query: "go"})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if postings == nil {
		t.Fatal("result must be empty, not nil")
	}
	if len(postings) != 0 {
		t.Errorf("got %d postings, want 0", len(postings))
	}
}

func TestAggregateRemoteOnlyFilter(t *testing.T) {
	a := buildAggregator(t, newFakeStore(),
		&stubAdapter{name: "alpha", jobs: []models.RawJob{
			{Title: "Go Developer", Company: "Acme", Location: "Remote", WorkMode: models.WorkModeRemote},
			{Title: "Backend Engineer", Company: "Globex", Location: "Munich", WorkMode: models.WorkModeOnSite},
		}},
	)

	postings, err := a.Aggregate(context.Background(), Request{Query: "go", RemoteOnly: true})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("got %d postings, want 1 remote", len(postings))
	}
	if !postings[0].IsRemote() {
		t.Errorf("non-remote posting survived the filter: %+v", postings[0])
	}
}

func TestAggregateCapsResults(t *testing.T) {
	var jobs []models.RawJob
	for i := 0; i < 80; i++ {
		jobs = append(jobs, models.RawJob{
			Title:    fmt.Sprintf("Role %d", i),
			Company:  "Acme",
			Location: "Berlin",
		})
	}
	a := buildAggregator(t, newFakeStore(), &stubAdapter{name: "alpha", jobs: jobs})

	postings, err := a.Aggregate(context.Background(), Request{Query: "go"})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(postings) != 50 {
		t.Errorf("got %d postings, want result cap of 50", len(postings))
	}
}

func TestAggregateValidation(t *testing.T) {
	a := buildAggregator(t, newFakeStore(), &stubAdapter{name: "alpha"})

	if _, err := a.Aggregate(context.Background(), Request{Query: "   "}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("blank query: got %v, want ErrInvalidRequest", err)
	}
	if _, err := a.Aggregate(context.Background(), Request{Query: "go", Sources: []string{"nope"}}); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("unknown source: got %v, want ErrUnknownSource", err)
	}
}

func TestAggregateCacheShortCircuit(t *testing.T) {
	store := newFakeStore()
	counting := &stubAdapter{name: "alpha", jobs: []models.RawJob{
		{Title: "Go Developer", Company: "Acme", Location: "Berlin"},
	}}
	a := buildAggregator(t, store, counting)

	first, err := a.Aggregate(context.Background(), Request{Query: "go"})
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if store.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", store.sets)
	}

	// Break the adapter; the second identical request must come from cache.
	counting.jobs = nil
	counting.err = errors.New("source now down")

	second, err := a.Aggregate(context.Background(), Request{Query: "go"})
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("cached result differs: %d vs %d postings", len(second), len(first))
	}
	if store.sets != 1 {
		t.Errorf("cache repopulated on a hit: sets = %d", store.sets)
	}
}
