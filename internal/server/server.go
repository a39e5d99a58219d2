// Package server exposes the recommendation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dshills/stylist/internal/face"
	"github.com/dshills/stylist/internal/metrics"
	"github.com/dshills/stylist/internal/schema"
	"github.com/dshills/stylist/internal/synth"
)

// shutdownTimeout bounds draining of in-flight requests on shutdown.
const shutdownTimeout = 10 * time.Second

// Recommender is the part of synth.Synthesizer the server needs.
type Recommender interface {
	Recommend(ctx context.Context, req synth.Request) schema.RecommendationSet
}

// Options configures a Server.
type Options struct {
	Recommender    Recommender
	Analyzer       face.Analyzer
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger
	MaxUploadBytes int64
}

// Server is the HTTP front end.
type Server struct {
	opts   Options
	router *gin.Engine
}

// New builds the router. Analyzer defaults to face.Unknown.
func New(opts Options) (*Server, error) {
	if opts.Recommender == nil {
		return nil, errors.New("server: recommender is required")
	}
	if opts.Analyzer == nil {
		opts.Analyzer = face.Unknown{}
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger, opts.Metrics))
	r.MaxMultipartMemory = opts.MaxUploadBytes

	s := &Server{opts: opts, router: r}
	r.GET("/healthz", s.handleHealth)
	r.POST("/analyze", s.handleAnalyze)
	r.POST("/recommend", s.handleRecommend)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	s.opts.Logger.Info().Msg("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
