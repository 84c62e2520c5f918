package workers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Qwertuhh/leanaura-alpha/contract"
)

const shutdownGrace = 5 * time.Second

// Ensure *HTTPServerWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*HTTPServerWorker)(nil)

// HTTPServerWorker runs an http.Server under supervision: serving errors are
// returned so the supervisor can restart it, and context cancellation drives
// a graceful shutdown with a bounded grace period.
type HTTPServerWorker struct {
	server *http.Server
	log    *slog.Logger
}

func NewHTTPServerWorker(log *slog.Logger, server *http.Server) *HTTPServerWorker {
	return &HTTPServerWorker{server: server, log: log}
}

func (w *HTTPServerWorker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		w.log.Info("HTTP server listening", "addr", w.server.Addr)
		errCh <- w.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := w.server.Shutdown(shutdownCtx); err != nil {
			w.log.Warn("HTTP server shutdown was not clean", "error", err)
		}
		<-errCh
		return nil
	}
}
