package cache

import (
	"context"
	"errors"
	"sync"

	"docuchat/pkg/logger"
)

// ProducerFunc performs the actual extraction for a fingerprint on a cache
// miss. It must return the complete entry; partial results are never stored.
type ProducerFunc func(ctx context.Context) (*CacheEntry, error)

// inflightJob parks waiters for a fingerprint on a completion channel while
// one producer runs. Both fields are written exactly once, before done is
// closed.
type inflightJob struct {
	done  chan struct{}
	entry *CacheEntry
	err   error
}

// Ensurer serializes extraction per fingerprint: concurrent callers for the
// same fingerprint coalesce onto one producer run, while different
// fingerprints proceed in parallel. The mutex only guards the in-flight map,
// never an extraction.
type Ensurer struct {
	store  Store
	logger *logger.Logger

	mu       sync.Mutex
	inflight map[string]*inflightJob
}

// NewEnsurer wraps a store with the at-most-one-concurrent-build primitive.
func NewEnsurer(store Store, log *logger.Logger) *Ensurer {
	return &Ensurer{
		store:    store,
		logger:   log,
		inflight: make(map[string]*inflightJob),
	}
}

// Ensure returns the cached entry for fingerprint, running producer exactly
// once across concurrent callers on a miss. On producer failure the build
// slot is released without storing anything and every coalesced waiter sees
// the same error. A waiter whose own context is cancelled stops waiting, but
// the in-flight job keeps running for the others.
func (e *Ensurer) Ensure(ctx context.Context, fingerprint string, producer ProducerFunc) (*CacheEntry, error) {
	// Fast path: a durable hit needs no slot.
	if entry, err := e.lookup(ctx, fingerprint); err == nil {
		return entry, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	e.mu.Lock()
	if job, ok := e.inflight[fingerprint]; ok {
		e.mu.Unlock()
		select {
		case <-job.done:
			if job.err != nil {
				return nil, job.err
			}
			return job.entry, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	job := &inflightJob{done: make(chan struct{})}
	e.inflight[fingerprint] = job
	e.mu.Unlock()

	entry, err := e.build(ctx, fingerprint, producer)
	job.entry, job.err = entry, err

	e.mu.Lock()
	delete(e.inflight, fingerprint)
	e.mu.Unlock()
	close(job.done)

	return entry, err
}

// build re-checks the store inside the slot (another slot holder may have
// finished between our miss and acquisition), then runs the producer and
// persists its result.
func (e *Ensurer) build(ctx context.Context, fingerprint string, producer ProducerFunc) (*CacheEntry, error) {
	if entry, err := e.lookup(ctx, fingerprint); err == nil {
		return entry, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	entry, err := producer(ctx)
	if err != nil {
		e.logger.Debug("Extraction job for %s failed, releasing slot without storing: %v", fingerprint, err)
		return nil, err
	}

	if err := e.store.Store(ctx, fingerprint, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Lookup exposes the underlying store's lookup for callers that must not
// trigger extraction.
func (e *Ensurer) Lookup(ctx context.Context, fingerprint string) (*CacheEntry, error) {
	return e.lookup(ctx, fingerprint)
}

func (e *Ensurer) lookup(ctx context.Context, fingerprint string) (*CacheEntry, error) {
	entry, err := e.store.Lookup(ctx, fingerprint)
	if err == nil {
		e.logger.Debug("Cache hit for %s (method=%s, %d pages)", fingerprint, entry.Method, entry.PageCount)
	}
	return entry, err
}
