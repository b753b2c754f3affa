package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"careerintel/pkg/cache"
	"careerintel/pkg/config"
	"careerintel/pkg/models"
	"careerintel/pkg/normalize"
	"careerintel/pkg/sources"
)

// ErrInvalidRequest marks a request that fails validation before any work
// is performed.
var ErrInvalidRequest = errors.New("invalid request")

// ErrUnknownSource marks a request naming a source id that is not
// registered. Fatal to the call: aggregation does not proceed.
var ErrUnknownSource = errors.New("unknown source")

// Request are the parameters of one aggregation call.
type Request struct {
	Query      string
	Location   string
	RemoteOnly bool
	Sources    []string // empty means every registered source
}

// Aggregator fans a query out to all requested source adapters
// concurrently, normalizes and deduplicates their output, and owns the
// cache in front of the whole fetch+parse cycle.
type Aggregator struct {
	registry   *sources.Registry
	normalizer *normalize.Normalizer
	store      cache.Store
	logger     *logrus.Logger
	limiter    *rate.Limiter

	perSourceTimeout time.Duration
	resultCap        int
	cacheTTL         time.Duration
}

func New(reg *sources.Registry, store cache.Store, logger *logrus.Logger, settings config.GlobalSettings) *Aggregator {
	return &Aggregator{
		registry:         reg,
		normalizer:       normalize.New(),
		store:            store,
		logger:           logger,
		limiter:          rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), settings.RequestsPerSecond),
		perSourceTimeout: time.Duration(settings.TimeoutMs) * time.Millisecond,
		resultCap:        settings.ResultCap,
		cacheTTL:         time.Duration(settings.CacheTTLSeconds) * time.Second,
	}
}

type sourceResult struct {
	source string
	jobs   []models.RawJob
	err    error
}

// Aggregate runs one fan-out/normalize/dedupe cycle. A cache hit
// short-circuits the fetch entirely. Individual source failures degrade to
// zero results and are logged; only request validation and unknown source
// ids fail the call.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) ([]models.JobPosting, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidRequest)
	}

	adapters, err := a.resolveAdapters(req.Sources)
	if err != nil {
		return nil, err
	}

	key := a.cacheKey(req)
	var cached []models.JobPosting
	if hit, err := a.store.GetJSON(ctx, key, &cached); err == nil && hit {
		a.logger.Debugf("Cache hit for %s", key)
		return cached, nil
	}

	postings := a.fanOut(ctx, adapters, req)

	if err := a.store.SetJSON(ctx, key, postings, a.cacheTTL); err != nil {
		a.logger.Warnf("Failed to populate cache for %s: %v", key, err)
	}
	return postings, nil
}

func (a *Aggregator) resolveAdapters(names []string) ([]sources.Adapter, error) {
	if len(names) == 0 {
		names = a.registry.Names()
	}
	adapters := make([]sources.Adapter, 0, len(names))
	for _, name := range names {
		adapter, err := a.registry.Get(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

// fanOut dispatches every adapter concurrently and collects results in
// completion order. Total latency is bounded by the slowest adapter (or
// its timeout), never the sum.
func (a *Aggregator) fanOut(ctx context.Context, adapters []sources.Adapter, req Request) []models.JobPosting {
	resultChan := make(chan sourceResult, len(adapters))
	var wg sync.WaitGroup

	for _, adapter := range adapters {
		wg.Add(1)
		go func(adapter sources.Adapter) {
			defer wg.Done()

			if err := a.limiter.Wait(ctx); err != nil {
				resultChan <- sourceResult{source: adapter.Name(), err: err}
				return
			}

			actx, cancel := context.WithTimeout(ctx, a.perSourceTimeout)
			defer cancel()

			jobs, err := adapter.Search(actx, req.Query, req.Location, a.resultCap)
			resultChan <- sourceResult{source: adapter.Name(), jobs: jobs, err: err}
		}(adapter)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	seen := make(map[string]bool)
	var merged []models.JobPosting
	degraded := 0

	for result := range resultChan {
		if result.err != nil {
			degraded++
			a.logger.Warnf("Source %s degraded: %v", result.source, result.err)
			continue
		}
		a.logger.Infof("Source %s returned %d listings", result.source, len(result.jobs))

		for _, raw := range result.jobs {
			if !raw.Valid() {
				continue
			}
			posting := a.normalizer.Normalize(raw, result.source)
			if key := posting.Key(); !seen[key] {
				seen[key] = true
				merged = append(merged, posting)
			}
		}
	}

	if degraded > 0 {
		a.logger.Warnf("Aggregation completed with %d/%d sources degraded", degraded, len(adapters))
	}

	if req.RemoteOnly {
		filtered := merged[:0]
		for _, p := range merged {
			if p.IsRemote() {
				filtered = append(filtered, p)
			}
		}
		merged = filtered
	}

	if len(merged) > a.resultCap {
		merged = merged[:a.resultCap]
	}
	if merged == nil {
		merged = []models.JobPosting{}
	}
	return merged
}

// cacheKey is a deterministic function of every request parameter that
// affects the result; the source set is sorted so ordering does not split
// the key space.
func (a *Aggregator) cacheKey(req Request) string {
	names := req.Sources
	if len(names) == 0 {
		names = a.registry.Names()
	} else {
		names = append([]string(nil), names...)
		sort.Strings(names)
	}
	return fmt.Sprintf("jobs:%s:%s:%t:%s",
		strings.ToLower(req.Query),
		strings.ToLower(req.Location),
		req.RemoteOnly,
		strings.Join(names, ","),
	)
}
