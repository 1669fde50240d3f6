// Package resource governs the resources a tree may consume.
//
// A Controller manages three independent budgets:
//
//   - Memory: bytes held by a private copy of the point set (non-blocking, fail-fast)
//   - Workers: goroutines a bulk search may run at once (weighted semaphore)
//   - Queries: query throughput (token bucket)
//
// # Memory
//
// AcquireMemory never blocks. It returns ErrMemoryLimitExceeded when the
// reservation would exceed the limit and leaves usage unchanged:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//	if err := rc.AcquireMemory(n); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(n)
//
// # Workers
//
//	rc := resource.NewController(resource.Config{MaxWorkers: 4})
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// # Queries
//
// WaitQuery blocks until the limiter admits one more query or ctx is done.
// Without QueriesPerSecond it returns immediately.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
