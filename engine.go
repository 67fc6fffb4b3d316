// Package dispatch implements the concurrency-bounded dispatch engine at
// the center of this gateway: a bounded queue, a semaphore-limited worker
// pool, four mutable capability registries, a content-addressed response
// cache, and a per-token auth/rate-limit gate. HTTP framing, process
// bootstrap, and backend internals are external collaborators — see
// runtime for the capability contracts this engine dispatches against.
package dispatch

import (
	"context"
	"os"
	goruntime "runtime"
	"strconv"
	"sync"
	"time"

	"github.com/dispatchlabs/inference-gateway/internal/auditlog"
	"github.com/dispatchlabs/inference-gateway/internal/logging"
	"github.com/dispatchlabs/inference-gateway/internal/metrics"
	rt "github.com/dispatchlabs/inference-gateway/runtime"
)

// Config tunes one Engine instance. Every field has a sensible default
// applied by NewEngine when left zero.
type Config struct {
	// Workers bounds concurrent backend invocations. Zero selects
	// host parallelism, falling back to 4 if that cannot be determined.
	Workers int
	// APIKeys is the raw comma-separated API_KEYS value. Empty
	// disables auth entirely.
	APIKeys string
	// RateLimitPerMinute is the per-token quota (default: 60).
	RateLimitPerMinute int
	// CacheCapacity and CacheTTL configure the response cache (defaults:
	// 10000 entries, 60s).
	CacheCapacity int
	CacheTTL      time.Duration
	// Audit, if non-nil, receives a dispatch event per successful buffered
	// chat cache miss, embedding, and image request, and an admin event per
	// load/unload. Streaming chats, cache hits, and failed requests are not
	// recorded. A nil Audit is a no-op.
	Audit auditlog.Writer
}

// ConfigFromEnv builds a Config from its two environment variables,
// ENGINE_WORKERS and API_KEYS. Unset optional values use the package
// defaults described on Config's fields.
func ConfigFromEnv() Config {
	cfg := Config{APIKeys: os.Getenv("API_KEYS")}
	if v := os.Getenv("ENGINE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	return cfg
}

// Engine is the dispatch façade: the four capability registries, the
// dispatch queue and worker pool, the response cache, and the auth/rate
// gate, bundled into one object with an explicit New -> use -> Close
// lifecycle instead of process-wide statics.
type Engine struct {
	llm        *Registry[rt.TextGenerator]
	multimodal *Registry[rt.VisionGenerator]
	embedding  *Registry[rt.Embedder]
	image      *Registry[rt.ImageGenerator]

	queue *dispatchQueue
	sem   chan struct{}

	cache *responseCache
	gate  *gate
	audit auditlog.Writer

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewEngine constructs an engine, seeds the four registries with their
// preload set, and starts the worker-pool supervisor.
func NewEngine(cfg Config) *Engine {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtimeParallelism()
	}

	capacity := cfg.CacheCapacity
	if capacity <= 0 {
		capacity = 10000
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}

	audit := cfg.Audit
	if audit == nil {
		audit = auditlog.NoopWriter{}
	}

	e := &Engine{
		llm:        NewRegistry[rt.TextGenerator](),
		multimodal: NewRegistry[rt.VisionGenerator](),
		embedding:  NewRegistry[rt.Embedder](),
		image:      NewRegistry[rt.ImageGenerator](),
		queue:      newDispatchQueue(),
		sem:        make(chan struct{}, workers),
		cache:      newResponseCache(capacity, ttl),
		gate:       newGate(cfg.APIKeys, cfg.RateLimitPerMinute),
		audit:      audit,
		stopCh:     make(chan struct{}),
	}

	e.seedPreload()
	e.seedEnvProviders(context.Background())

	e.wg.Add(1)
	go e.supervise()

	logging.Logger.Info("dispatch engine started", "workers", workers)
	return e
}

// runtimeParallelism mirrors the original engine's worker-count default:
// host parallelism, else 4.
func runtimeParallelism() int {
	if n := goruntime.NumCPU(); n > 0 {
		return n
	}
	return 4
}

// seedPreload installs the four preload dummy backends: llm and
// multimodal under "dummy-model", embedding under "dummy-embedding", image
// under "dummy-image".
func (e *Engine) seedPreload() {
	e.llm.Insert("dummy-model", rt.NewDummyRuntime())
	e.multimodal.Insert("dummy-model", rt.NewDummyRuntime())
	e.embedding.Insert("dummy-embedding", rt.NewDummyEmbeddingRuntime(rt.DummyEmbeddingDimension))
	e.image.Insert("dummy-image", rt.NewDummyImageRuntime())
}

// supervise is the single consumer of the dispatch queue: it dequeues one
// envelope at a time and spawns a detached goroutine to execute it.
// Dequeue itself is never blocked by backend execution — only execution
// is bounded, by the semaphore acquired inside each goroutine.
func (e *Engine) supervise() {
	defer e.wg.Done()
	for {
		select {
		case env := <-e.queue.ch:
			metrics.QueueDepth.Set(float64(len(e.queue.ch)))
			e.wg.Add(1)
			go e.execute(env)
		case <-e.stopCh:
			return
		}
	}
}

// execute acquires a worker-pool permit, releases it on every exit path,
// and routes env to the matching dispatcher.
func (e *Engine) execute(env envelope) {
	defer e.wg.Done()

	e.sem <- struct{}{}
	metrics.WorkersBusy.Inc()
	defer func() {
		<-e.sem
		metrics.WorkersBusy.Dec()
	}()

	ctx := context.Background()
	switch v := env.(type) {
	case *chatEnvelope:
		e.runChat(ctx, v)
	case *embeddingEnvelope:
		e.runEmbedding(ctx, v)
	case *imageEnvelope:
		e.runImage(ctx, v)
	}
}

// Close stops the supervisor and waits for in-flight executions to finish.
// Already-queued-but-undequeued envelopes are abandoned: cancellation is
// best-effort at the queue boundary only.
func (e *Engine) Close() {
	e.stopOnce.Do(func() {
		e.queue.close()
		close(e.stopCh)
	})
	e.wg.Wait()
}

// Authorize runs the auth + rate-limit gate against a raw
// Authorization header value. The HTTP layer calls this ahead of every
// request except /health and /admin/metrics.
func (e *Engine) Authorize(authorizationHeader string) error {
	_, err := e.gate.authorize(authorizationHeader)
	return err
}
