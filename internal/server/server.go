package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Server wraps the HTTP server around the gin router.
type Server struct {
	http *http.Server
}

// New creates a new server instance.
func New(router *gin.Engine, port string) *Server {
	return &Server{
		http: &http.Server{
			Addr:    ":" + port,
			Handler: router,
		},
	}
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	slog.Info("starting HTTP server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
