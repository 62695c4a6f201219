package resolve

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foodfast/services/pkg/cache"
)

type item struct {
	ID   int64
	Name string
}

// fakeSource is a scriptable Source that records every call.
type fakeSource struct {
	mu          sync.Mutex
	batchCalls  [][]int64
	singleCalls map[int64]int

	batchFn  func(ids []int64) (map[int64]item, error)
	singleFn func(id int64) (item, bool)
}

func newFakeSource() *fakeSource {
	return &fakeSource{singleCalls: make(map[int64]int)}
}

func (f *fakeSource) BatchFetch(_ context.Context, ids []int64) (map[int64]item, error) {
	f.mu.Lock()
	f.batchCalls = append(f.batchCalls, append([]int64(nil), ids...))
	f.mu.Unlock()
	if f.batchFn == nil {
		return nil, errors.New("batch not scripted")
	}
	return f.batchFn(ids)
}

func (f *fakeSource) SingleFetch(_ context.Context, id int64) (item, bool) {
	f.mu.Lock()
	f.singleCalls[id]++
	f.mu.Unlock()
	if f.singleFn == nil {
		return item{}, false
	}
	return f.singleFn(id)
}

func (f *fakeSource) batchCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batchCalls)
}

func (f *fakeSource) singleCallCount(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.singleCalls[id]
}

func newResolver(src Source[item], cfg Config) *Resolver[item] {
	return New[item]("test", src, cache.NewMemory[int64, *item]("test"), cfg)
}

func assertKeySet(t *testing.T, got map[int64]*item, want []int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len(result) = %d, want %d", len(got), len(want))
	}
	for _, id := range want {
		if _, ok := got[id]; !ok {
			t.Errorf("Key %d missing from result", id)
		}
	}
}

func TestResolve_BatchPath_KeySetComplete(t *testing.T) {
	src := newFakeSource()
	src.batchFn = func(ids []int64) (map[int64]item, error) {
		out := make(map[int64]item, len(ids))
		for _, id := range ids {
			out[id] = item{ID: id, Name: "n"}
		}
		return out, nil
	}
	r := newResolver(src, DefaultConfig())

	// Duplicates in the input must collapse to one entry each.
	got := r.Resolve(context.Background(), []int64{3, 1, 2, 1, 3, 3})

	assertKeySet(t, got, []int64{1, 2, 3})
	for id, v := range got {
		if v == nil || v.ID != id {
			t.Errorf("Key %d resolved to %+v", id, v)
		}
	}
}

func TestResolve_FallbackPath_KeySetComplete(t *testing.T) {
	src := newFakeSource()
	src.singleFn = func(id int64) (item, bool) {
		return item{ID: id}, true
	}
	r := newResolver(src, DefaultConfig())

	got := r.Resolve(context.Background(), []int64{5, 6, 5, 7})

	assertKeySet(t, got, []int64{5, 6, 7})
}

func TestResolve_EmptyInput(t *testing.T) {
	r := newResolver(newFakeSource(), DefaultConfig())

	got := r.Resolve(context.Background(), nil)
	if len(got) != 0 {
		t.Errorf("len(result) = %d, want 0", len(got))
	}
}

func TestResolve_CacheHitSkipsRemote(t *testing.T) {
	src := newFakeSource()
	src.batchFn = func(ids []int64) (map[int64]item, error) {
		out := make(map[int64]item)
		for _, id := range ids {
			out[id] = item{ID: id}
		}
		return out, nil
	}
	r := newResolver(src, DefaultConfig())
	ctx := context.Background()

	r.Resolve(ctx, []int64{1, 2})
	if src.batchCallCount() != 1 {
		t.Fatalf("Batch calls after first resolve = %d, want 1", src.batchCallCount())
	}

	// Everything is cached, so the second resolve makes no remote call.
	got := r.Resolve(ctx, []int64{1, 2})
	if src.batchCallCount() != 1 {
		t.Errorf("Batch calls after second resolve = %d, want 1", src.batchCallCount())
	}
	assertKeySet(t, got, []int64{1, 2})
}

func TestResolve_BatchPartial_NoSamePassFallback(t *testing.T) {
	src := newFakeSource()
	src.batchFn = func(ids []int64) (map[int64]item, error) {
		// Only id 1 is known to the service.
		return map[int64]item{1: {ID: 1, Name: "Laptop"}}, nil
	}
	r := newResolver(src, DefaultConfig())

	got := r.Resolve(context.Background(), []int64{1, 2, 3})

	assertKeySet(t, got, []int64{1, 2, 3})
	if got[1] == nil || got[1].Name != "Laptop" {
		t.Errorf("Key 1 = %+v, want Laptop", got[1])
	}
	if got[2] != nil || got[3] != nil {
		t.Errorf("Batch-omitted keys must resolve to nil: 2=%+v 3=%+v", got[2], got[3])
	}

	// A successful batch settles everything: no per-key fetch is made
	// for the omitted subset within the same pass.
	for _, id := range []int64{1, 2, 3} {
		if n := src.singleCallCount(id); n != 0 {
			t.Errorf("SingleFetch(%d) called %d times, want 0", id, n)
		}
	}
}

func TestResolve_BatchOmittedKeysUseFailureTTL(t *testing.T) {
	src := newFakeSource()
	src.batchFn = func(ids []int64) (map[int64]item, error) {
		return map[int64]item{1: {ID: 1}}, nil
	}
	r := newResolver(src, Config{
		SuccessTTL: time.Hour,
		FailureTTL: 30 * time.Millisecond,
		MaxWorkers: 8,
	})
	ctx := context.Background()

	r.Resolve(ctx, []int64{1, 2})

	time.Sleep(60 * time.Millisecond)

	// Key 1 is still cached under the success TTL; only the absent key 2
	// is pending again.
	r.Resolve(ctx, []int64{1, 2})
	if src.batchCallCount() != 2 {
		t.Fatalf("Batch calls = %d, want 2", src.batchCallCount())
	}
	second := src.batchCalls[1]
	if len(second) != 1 || second[0] != 2 {
		t.Errorf("Second batch pending set = %v, want [2]", second)
	}
}

func TestResolve_SuccessCachedUntilTTL(t *testing.T) {
	src := newFakeSource()
	src.batchFn = func(ids []int64) (map[int64]item, error) {
		out := make(map[int64]item)
		for _, id := range ids {
			out[id] = item{ID: id}
		}
		return out, nil
	}
	r := newResolver(src, Config{
		SuccessTTL: 50 * time.Millisecond,
		FailureTTL: 10 * time.Millisecond,
		MaxWorkers: 8,
	})
	ctx := context.Background()

	r.Resolve(ctx, []int64{1})
	r.Resolve(ctx, []int64{1})
	if src.batchCallCount() != 1 {
		t.Fatalf("Batch calls before TTL = %d, want 1", src.batchCallCount())
	}

	time.Sleep(80 * time.Millisecond)

	r.Resolve(ctx, []int64{1})
	if src.batchCallCount() != 2 {
		t.Errorf("Batch calls after TTL = %d, want 2", src.batchCallCount())
	}
}

func TestResolve_FailureRetriedAfterShorterTTL(t *testing.T) {
	src := newFakeSource()
	src.singleFn = func(id int64) (item, bool) {
		return item{}, false // everything fails
	}
	r := newResolver(src, Config{
		SuccessTTL: time.Hour,
		FailureTTL: 30 * time.Millisecond,
		MaxWorkers: 8,
	})
	ctx := context.Background()

	got := r.Resolve(ctx, []int64{1})
	if got[1] != nil {
		t.Fatalf("Key 1 = %+v, want nil", got[1])
	}
	if src.singleCallCount(1) != 1 {
		t.Fatalf("SingleFetch(1) = %d calls, want 1", src.singleCallCount(1))
	}

	// Within the failure TTL the cached nil is served, no refetch.
	r.Resolve(ctx, []int64{1})
	if src.singleCallCount(1) != 1 {
		t.Errorf("SingleFetch(1) within TTL = %d calls, want 1", src.singleCallCount(1))
	}

	time.Sleep(60 * time.Millisecond)

	r.Resolve(ctx, []int64{1})
	if src.singleCallCount(1) != 2 {
		t.Errorf("SingleFetch(1) after failure TTL = %d calls, want 2", src.singleCallCount(1))
	}
}

func TestResolve_FallbackFailureIsolation(t *testing.T) {
	src := newFakeSource()
	src.singleFn = func(id int64) (item, bool) {
		if id == 2 {
			return item{}, false
		}
		return item{ID: id, Name: "ok"}, true
	}
	r := newResolver(src, DefaultConfig())

	got := r.Resolve(context.Background(), []int64{1, 2, 3})

	assertKeySet(t, got, []int64{1, 2, 3})
	if got[1] == nil || got[3] == nil {
		t.Errorf("Keys 1 and 3 should resolve despite key 2 failing: 1=%+v 3=%+v", got[1], got[3])
	}
	if got[2] != nil {
		t.Errorf("Key 2 = %+v, want nil", got[2])
	}

	// Exactly one fallback attempt per pending key.
	for _, id := range []int64{1, 2, 3} {
		if n := src.singleCallCount(id); n != 1 {
			t.Errorf("SingleFetch(%d) = %d calls, want 1", id, n)
		}
	}
}

func TestResolve_WorkerPoolBounded(t *testing.T) {
	var inFlight, peak int64

	src := newFakeSource()
	src.singleFn = func(id int64) (item, bool) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return item{ID: id}, true
	}

	cfg := DefaultConfig()
	cfg.MaxWorkers = 4
	r := newResolver(src, cfg)

	ids := make([]int64, 20)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	got := r.Resolve(context.Background(), ids)

	assertKeySet(t, got, ids)
	if p := atomic.LoadInt64(&peak); p > 4 {
		t.Errorf("Peak concurrent fetches = %d, want <= 4", p)
	}
}

func TestResolve_ConcurrentOverlappingSets(t *testing.T) {
	src := newFakeSource()
	src.singleFn = func(id int64) (item, bool) {
		time.Sleep(time.Millisecond)
		return item{ID: id}, true
	}
	r := newResolver(src, DefaultConfig())

	sets := [][]int64{
		{1, 2, 3},
		{2, 3, 4},
		{3, 4, 5},
		{1, 5, 2},
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ids := sets[g%len(sets)]
			got := r.Resolve(context.Background(), ids)
			if len(got) != len(ids) {
				t.Errorf("goroutine %d: len(result) = %d, want %d", g, len(got), len(ids))
				return
			}
			for _, id := range ids {
				v, ok := got[id]
				if !ok {
					t.Errorf("goroutine %d: key %d missing", g, id)
				} else if v == nil || v.ID != id {
					t.Errorf("goroutine %d: key %d = %+v", g, id, v)
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SuccessTTL != 30*time.Second {
		t.Errorf("SuccessTTL = %v, want 30s", cfg.SuccessTTL)
	}
	if cfg.FailureTTL != 10*time.Second {
		t.Errorf("FailureTTL = %v, want 10s", cfg.FailureTTL)
	}
	if cfg.SuccessTTL <= cfg.FailureTTL {
		t.Error("SuccessTTL must exceed FailureTTL")
	}
	if cfg.MaxWorkers != 8 {
		t.Errorf("MaxWorkers = %d, want 8", cfg.MaxWorkers)
	}
}
