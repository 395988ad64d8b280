// Package shutdown coordinates graceful termination of gamesvc commands.
//
// WithSignals derives a context canceled on SIGINT or SIGTERM. A Handler
// runs named cleanup hooks in reverse registration order under a deadline,
// so the manager closes before the storage engine it writes to.
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//	h := shutdown.NewHandler(5*time.Second, log)
//	h.OnShutdown("storage", engine.Close)
//	<-ctx.Done()
//	err := h.Shutdown()
package shutdown
