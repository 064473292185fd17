// Package workers provides a bounded goroutine pool for property resolution.
//
//	pool := workers.NewPool(8, logger)
//	defer pool.Close()
//	err := pool.Submit(ctx, func() { ... })
package workers
