// Package httpserver runs the templatehub API over plain HTTP.
package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Server wraps an http.Server configured with the API's timeouts.
type Server struct {
	inner *http.Server
}

// New constructs a server listening on the provided port. Port 0 picks a free port.
func New(port int, handler http.Handler) *Server {
	return &Server{
		inner: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.inner.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.inner.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It always returns a non-nil error;
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.inner.Serve(ln)
}

// Shutdown gracefully terminates the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
