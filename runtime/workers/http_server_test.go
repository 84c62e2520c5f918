package workers

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPServerWorker_GracefulShutdownOnCancel(t *testing.T) {
	req := require.New(t)

	server := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}
	worker := NewHTTPServerWorker(slog.Default(), server)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	// When the context is canceled while the server is listening
	time.Sleep(100 * time.Millisecond)
	cancel()

	// Then Run returns nil, the shutdown was graceful
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.Fail("worker should have shut down after cancel")
	}
}

func TestHTTPServerWorker_ReportsServeError(t *testing.T) {
	req := require.New(t)

	// Given a server bound to an address that cannot be listened on
	server := &http.Server{
		Addr:    "256.256.256.256:0",
		Handler: http.NewServeMux(),
	}
	worker := NewHTTPServerWorker(slog.Default(), server)

	// Then the serving error surfaces so the supervisor can react
	err := worker.Run(context.Background())
	req.Error(err)
}
