// Package resolve implements the fan-out resolver: given a set of lookup
// keys for one entity kind, it consults the expiring cache, attempts one
// batch fetch, and falls back to bounded-parallelism per-key fetches for
// whatever remains unresolved.
//
// The result always covers exactly the deduplicated input key set. A nil
// value means the key could not be resolved (service down, not found, or
// malformed response); no dependency failure ever escapes Resolve.
package resolve

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/foodfast/services/pkg/cache"
	"github.com/foodfast/services/pkg/logging"
)

// Prometheus metrics for resolution passes.
var (
	resolvedKeysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resolver_keys_total",
		Help: "Resolved keys by kind, path taken and outcome",
	}, []string{"kind", "path", "outcome"}) // path: cache/batch/fallback, outcome: resolved/absent

	fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resolver_fallbacks_total",
		Help: "Resolution passes that fell back to per-key fetches",
	}, []string{"kind"})

	resolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resolver_duration_seconds",
		Help:    "Duration of a full resolution pass",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"kind"})
)

// Source is the remote lookup contract the resolver drives. BatchFetch
// signals "batch path unavailable" through its error; a successful map
// missing some ids means those ids are confirmed absent. SingleFetch
// never fails past its boundary.
type Source[E any] interface {
	BatchFetch(ctx context.Context, ids []int64) (map[int64]E, error)
	SingleFetch(ctx context.Context, id int64) (E, bool)
}

// Config holds resolver tuning.
type Config struct {
	// SuccessTTL caches a resolved entity.
	SuccessTTL time.Duration

	// FailureTTL caches an unresolved key. Kept shorter than SuccessTTL
	// so transient failures are retried sooner than confirmed data is
	// refreshed.
	FailureTTL time.Duration

	// MaxWorkers caps the per-key fallback fan-out. The effective pool
	// size never exceeds the pending-key count.
	MaxWorkers int
}

// DefaultConfig returns the standard resolver tuning.
func DefaultConfig() Config {
	return Config{
		SuccessTTL: 30 * time.Second,
		FailureTTL: 10 * time.Second,
		MaxWorkers: 8,
	}
}

// Resolver resolves lookup keys for one entity kind.
type Resolver[E any] struct {
	kind   string
	src    Source[E]
	store  cache.Store[int64, *E]
	cfg    Config
	logger zerolog.Logger
}

// New creates a resolver for one entity kind backed by the given source
// and cache store.
func New[E any](kind string, src Source[E], store cache.Store[int64, *E], cfg Config) *Resolver[E] {
	if cfg.SuccessTTL <= 0 {
		cfg.SuccessTTL = 30 * time.Second
	}
	if cfg.FailureTTL <= 0 {
		cfg.FailureTTL = 10 * time.Second
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 8
	}
	return &Resolver[E]{
		kind:   kind,
		src:    src,
		store:  store,
		cfg:    cfg,
		logger: logging.NewLogger("resolver").With().Str("kind", kind).Logger(),
	}
}

// Resolve maps every key in ids to its entity, or to nil when the key
// could not be resolved. The returned map's key set equals the
// deduplicated input set exactly, on every path.
func (r *Resolver[E]) Resolve(ctx context.Context, ids []int64) map[int64]*E {
	start := time.Now()
	defer func() {
		resolveDuration.WithLabelValues(r.kind).Observe(time.Since(start).Seconds())
	}()

	result := make(map[int64]*E, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	var pending []int64

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if v, ok := r.store.Get(ctx, id); ok {
			// Hit; v may be nil (cached "known absent").
			result[id] = v
			resolvedKeysTotal.WithLabelValues(r.kind, "cache", outcome(v)).Inc()
			continue
		}
		pending = append(pending, id)
	}

	if len(pending) == 0 {
		return result
	}

	if batch, err := r.src.BatchFetch(ctx, pending); err == nil {
		// A successful batch settles every pending key: ids absent from
		// the response are confirmed absent and are not retried within
		// this pass, only cached with the shorter failure TTL.
		for _, id := range pending {
			if e, ok := batch[id]; ok {
				v := e
				result[id] = &v
				r.store.Set(ctx, id, &v, r.cfg.SuccessTTL)
				resolvedKeysTotal.WithLabelValues(r.kind, "batch", "resolved").Inc()
			} else {
				result[id] = nil
				r.store.Set(ctx, id, nil, r.cfg.FailureTTL)
				resolvedKeysTotal.WithLabelValues(r.kind, "batch", "absent").Inc()
			}
		}
		return result
	}

	fallbacksTotal.WithLabelValues(r.kind).Inc()
	r.logger.Warn().Int("pending", len(pending)).Msg("Batch path unavailable, falling back to per-key fetches")

	for id, v := range r.fetchEach(ctx, pending) {
		result[id] = v
	}
	return result
}

type keyResult[E any] struct {
	id    int64
	value *E
}

// fetchEach runs one SingleFetch per key on a bounded worker pool and
// returns a value (possibly nil) for every key. One key's failure never
// affects another key's fetch.
func (r *Resolver[E]) fetchEach(ctx context.Context, ids []int64) map[int64]*E {
	workers := r.cfg.MaxWorkers
	if len(ids) < workers {
		workers = len(ids)
	}

	queue := make(chan int64, len(ids))
	results := make(chan keyResult[E], len(ids))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range queue {
				if e, ok := r.src.SingleFetch(ctx, id); ok {
					v := e
					r.store.Set(ctx, id, &v, r.cfg.SuccessTTL)
					resolvedKeysTotal.WithLabelValues(r.kind, "fallback", "resolved").Inc()
					results <- keyResult[E]{id: id, value: &v}
				} else {
					r.store.Set(ctx, id, nil, r.cfg.FailureTTL)
					resolvedKeysTotal.WithLabelValues(r.kind, "fallback", "absent").Inc()
					results <- keyResult[E]{id: id, value: nil}
				}
			}
		}()
	}

	for _, id := range ids {
		queue <- id
	}
	close(queue)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[int64]*E, len(ids))
	for kr := range results {
		out[kr.id] = kr.value
	}
	return out
}

func outcome[E any](v *E) string {
	if v == nil {
		return "absent"
	}
	return "resolved"
}
