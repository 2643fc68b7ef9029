package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPService serves an http.Server as a Service. Start shuts the server
// down when its context is cancelled, so the service never outlives the
// lifecycle that runs it.
type HTTPService struct {
	Server *http.Server
	Logger *zap.Logger
	// ShutdownTimeout bounds the graceful shutdown started by cancellation.
	// Zero selects DefaultStopTimeout.
	ShutdownTimeout time.Duration
}

// Start listens on Server.Addr and serves until ctx is cancelled or the
// server fails.
//
// Postcondition: Returns nil after a shutdown, or the listen or serve error.
func (h *HTTPService) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.Server.Addr)
	if err != nil {
		return err
	}
	h.Logger.Info("serving http", zap.Stringer("addr", ln.Addr()))

	served := make(chan error, 1)
	go func() { served <- h.Server.Serve(ln) }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := h.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := h.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down. It is safe to call after Start has already
// shut the server down.
func (h *HTTPService) Stop(ctx context.Context) error { return h.Server.Shutdown(ctx) }
