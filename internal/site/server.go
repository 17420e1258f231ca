package site

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "wigorcal/internal/log"
	"wigorcal/internal/model"
)

// RefreshFunc re-runs the scrape+publish cycle and returns the fresh
// weeks. Failures leave the previously served state in place.
type RefreshFunc func(ctx context.Context) ([]model.WeekSchedule, error)

// Server serves the published output directory plus a small JSON API,
// optionally re-running the pipeline on a cron schedule.
type Server struct {
	listen      string
	outputDir   string
	refreshCron string
	refresh     RefreshFunc

	mu    sync.RWMutex
	weeks []model.WeekSchedule

	mux *http.ServeMux
}

// NewServer builds a Server for the given published tree. refresh may be
// nil, in which case serve mode only exposes what is already on disk.
func NewServer(listen, outputDir, refreshCron string, weeks []model.WeekSchedule, refresh RefreshFunc) *Server {
	s := &Server{
		listen:      listen,
		outputDir:   outputDir,
		refreshCron: refreshCron,
		refresh:     refresh,
		weeks:       weeks,
		mux:         http.NewServeMux(),
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/weeks", s.handleWeeks)
	s.mux.Handle("/", http.FileServer(http.Dir(outputDir)))
	return s
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until ctx is canceled. When a refresh function and cron
// expression are configured, the pipeline re-runs on schedule.
func (s *Server) Run(ctx context.Context) error {
	if s.refresh != nil && s.refreshCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(s.refreshCron, func() { s.runRefresh(ctx) }); err != nil {
			return err
		}
		c.Start()
		defer c.Stop()
		appLog.Info("refresh scheduler started", "cron", s.refreshCron)
	}

	srv := &http.Server{
		Addr:    s.listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("http server listening", "addr", "http://"+s.listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) runRefresh(ctx context.Context) {
	appLog.Info("scheduled refresh starting")
	weeks, err := s.refresh(ctx)
	if err != nil {
		appLog.Error("scheduled refresh failed, keeping previous state", err)
		return
	}
	s.mu.Lock()
	s.weeks = weeks
	s.mu.Unlock()
	appLog.Info("scheduled refresh done", "weeks", len(weeks))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// weekDTO wraps a schedule with its Monday, which the week's own JSON
// form (an object keyed by day label) does not carry.
type weekDTO struct {
	Monday string             `json:"monday"`
	Days   model.WeekSchedule `json:"days"`
}

func (s *Server) handleWeeks(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	weeks := s.weeks
	s.mu.RUnlock()

	out := make([]weekDTO, 0, len(weeks))
	for _, wk := range weeks {
		out = append(out, weekDTO{
			Monday: wk.Monday.Format("2006-01-02"),
			Days:   wk,
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		appLog.Error("failed to encode /api/weeks response", err)
	}
}
