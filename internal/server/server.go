// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"TitanQuant/internal/analyzer"
	"TitanQuant/internal/collector"
	"TitanQuant/internal/recorder"
)

// Server wraps the gin engine around the analyzer and collector.
type Server struct {
	addr      string
	analyzer  *analyzer.Analyzer
	collector *collector.Collector
	recorder  recorder.Recorder
	router    *gin.Engine
	http      *http.Server
}

// Config assembles a Server. Analyzer and Collector are required;
// Recorder may be nil in which case results are not persisted.
type Config struct {
	Addr      string
	Analyzer  *analyzer.Analyzer
	Collector *collector.Collector
	Recorder  recorder.Recorder
}

func New(cfg Config) (*Server, error) {
	if cfg.Analyzer == nil || cfg.Collector == nil {
		return nil, errors.New("analyzer and collector are required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.Recorder == nil {
		cfg.Recorder = recorder.NewNoopRecorder()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:      cfg.Addr,
		analyzer:  cfg.Analyzer,
		collector: cfg.Collector,
		recorder:  cfg.Recorder,
		router:    router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.POST("/analyze_full", s.handleAnalyze)
	s.router.GET("/market", s.handleMarket)
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Run blocks until ctx is cancelled, then shuts the listener down with
// a short grace period.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{Addr: s.addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] http server listening on %s", s.addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }
