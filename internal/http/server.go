package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"time"
)

// Server wraps the engine in a net/http server so shutdown can drain
// in-flight requests instead of cutting them off. Only the header read is
// bounded: a write timeout would kill long-lived SSE streams.
type Server struct {
	srv *nethttp.Server
}

func NewServer(addr string, handler nethttp.Handler) *Server {
	return &Server{
		srv: &nethttp.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run blocks until the listener fails or Shutdown is called. A graceful
// shutdown is not an error.
func (s *Server) Run() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
