// Package shutdown coordinates graceful process termination.
//
// Signals (SIGINT, SIGTERM) cancel the context returned by Handler.Notify;
// the caller then runs the registered hooks with Handler.Shutdown. Hooks
// run in reverse registration order under a shared timeout, so components
// started last stop first.
//
// Usage:
//
//	h := shutdown.NewHandler(10*time.Second, logger)
//	ctx, stop := h.Notify(context.Background())
//	defer stop()
//	h.OnShutdown("aof", d.Close)
//	srv.Run(ctx)
//	err := h.Shutdown()
package shutdown
