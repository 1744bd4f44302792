package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"PadelTracker/internal/analyst"
	"PadelTracker/internal/collector"
	"PadelTracker/internal/config"
	"PadelTracker/internal/dashboard"
	"PadelTracker/internal/recorder"
	"PadelTracker/internal/statefile"
)

// app bundles the components every command needs.
type app struct {
	svc    *dashboard.Service
	sqlite *recorder.SQLiteRecorder
	state  *statefile.Manager
	rec    recorder.Recorder
}

func newProvider(c *config.Config) collector.Provider {
	if c.DataSource.BaseURL != "" {
		return collector.NewHTTPProvider(c.DataSource.BaseURL, c.DataSource.APIKey, c.Proxy)
	}
	seed := c.DataSource.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return collector.NewMockProvider(c.Product.Name, c.Product.ImageURL, c.DataSource.Latency, seed)
}

func newGenerator(ctx context.Context, c *config.Config, log *zap.Logger) (analyst.Generator, error) {
	if !c.AnalysisEnabled() {
		log.Warn("no Gemini API key configured, analyses will return the neutral fallback")
		return analyst.Unavailable(), nil
	}
	gen, err := analyst.NewGeminiGenerator(ctx, c.Analysis.APIKey, c.Analysis.BaseURL)
	if err != nil {
		return nil, err
	}
	return gen, nil
}

func newApp(ctx context.Context, c *config.Config, log *zap.Logger) (*app, error) {
	provider := newProvider(c)
	log.Info("data source selected", zap.String("provider", provider.Name()))

	gen, err := newGenerator(ctx, c, log)
	if err != nil {
		return nil, fmt.Errorf("init analysis: %w", err)
	}
	analyzer := analyst.NewAnalyzer(gen, c.Analysis.Model, c.Product.Category, log.Named("analyst"))

	a := &app{}
	var sinks recorder.Multi
	if c.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(c.Database.SQLitePath, log.Named("recorder"))
		if err != nil {
			log.Warn("init sqlite recorder failed, history disabled", zap.Error(err))
		} else {
			a.sqlite = sr
			sinks = append(sinks, sr)
		}
	}
	if c.State.File != "" {
		m, err := statefile.NewManager(c.State.File, log.Named("state"))
		if err != nil {
			log.Warn("init state file failed, warm start disabled", zap.Error(err))
		} else {
			a.state = m
			sinks = append(sinks, m)
		}
	}
	a.rec = recorder.NewNoopRecorder()
	if len(sinks) > 0 {
		a.rec = sinks
	}

	col := collector.NewCollector(provider, log.Named("collector"))
	a.svc = dashboard.NewService(col, analyzer, a.rec, log.Named("dashboard"))
	a.svc.AnalysisTimeout = c.Analysis.Timeout
	return a, nil
}

// restore seeds the dashboard from the state file. It reports whether a
// snapshot was loaded.
func (a *app) restore(log *zap.Logger) bool {
	if a.state == nil {
		return false
	}
	saved := a.state.Saved()
	if saved.Snapshot == nil {
		return false
	}
	if err := a.svc.Restore(saved.Snapshot, saved.Analysis); err != nil {
		log.Warn("restore saved snapshot", zap.Error(err))
		return false
	}
	a.state.MarkRestored(a.svc.State().Version)
	log.Info("restored saved snapshot",
		zap.Time("fetched_at", saved.Snapshot.FetchedAt),
		zap.Bool("with_analysis", saved.Analysis != nil))
	return true
}

func (a *app) Close() error {
	if a.rec == nil {
		return nil
	}
	return a.rec.Close()
}

var errNoHistory = errors.New("analysis history requires database.sqlite_path")
