// Package testkit opens one browser session per test and tears it down
// afterwards, saving a screenshot and the page source when the test failed.
package testkit

import (
	"context"
	"sync"
	"testing"

	"browser-pages/internal/application/port/output"
	"browser-pages/internal/di"
	"browser-pages/internal/infrastructure/browser/rod"
	"browser-pages/internal/infrastructure/env"
)

type Session struct {
	Driver  output.Driver
	Logger  output.LoggerPort
	Config  di.Config
	BaseURL string

	t         testing.TB
	container *di.Container
	once      sync.Once
}

// Start configures a session from the environment. Tests are skipped in
// -short mode and when a local Chromium is required but missing.
func Start(t testing.TB) *Session {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping browser session in short mode")
	}

	cfg := di.LoadConfig(env.NewEnvService())
	if cfg.UsesLocalBrowser() && !rod.Available() {
		t.Skip("No local Chromium found")
	}
	return StartWith(t, cfg, di.NewDriver)
}

func StartWith(t testing.TB, cfg di.Config, newDriver di.DriverFactory) *Session {
	t.Helper()
	cfg.LogName = t.Name()

	c, err := di.NewContainerWith(context.Background(), cfg, newDriver)
	if err != nil {
		t.Fatalf("start browser session: %v", err)
	}

	s := &Session{
		Driver:    c.Driver,
		Logger:    c.Logger.WithField("test", t.Name()),
		Config:    cfg,
		BaseURL:   cfg.BaseURL,
		t:         t,
		container: c,
	}
	t.Cleanup(func() { s.finish(t.Failed()) })
	return s
}

func (s *Session) finish(failed bool) {
	s.once.Do(func() {
		if failed {
			paths, err := SaveArtifacts(context.Background(), s.Driver, s.Config.ArtifactDir, s.t.Name())
			if err != nil {
				s.Logger.Warn("saving failure artifacts", "error", err)
			}
			for _, p := range paths {
				s.Logger.Info("failure artifact saved", "path", p)
			}
		}
		s.container.Close()
	})
}
