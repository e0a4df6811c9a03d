package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"

	"reelgrab/pkg/config"
	"reelgrab/pkg/download"
	"reelgrab/pkg/logger"
)

// Resolver is the extraction pipeline's outer entry point
type Resolver interface {
	Resolve(ctx context.Context, postURL string) (string, error)
}

// Fetcher streams resolved media to storage
type Fetcher interface {
	Fetch(ctx context.Context, mediaURL, filename string) (*download.Outcome, error)
}

// Server is the HTTP boundary in front of the extraction pipeline
type Server struct {
	cfg      *config.Config
	resolver Resolver
	fetcher  Fetcher
	logger   logger.Logger
	httpSrv  *http.Server
}

// New creates the HTTP server with its routes wired
func New(cfg *config.Config, resolver Resolver, fetcher Fetcher, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}

	s := &Server{
		cfg:      cfg,
		resolver: resolver,
		fetcher:  fetcher,
		logger:   log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/download", s.handleDownload)
	mux.Handle("GET /downloads/", http.StripPrefix("/downloads/",
		http.FileServer(http.Dir(cfg.Download.Directory))))

	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: cors.Default().Handler(mux),
	}

	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoWithFields("server listening", map[string]interface{}{
			"addr": s.httpSrv.Addr,
		})
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// Handler exposes the configured handler, for tests
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// RunSweeper drives a sweeper until ctx is cancelled
func RunSweeper(ctx context.Context, interval time.Duration, sweep func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
