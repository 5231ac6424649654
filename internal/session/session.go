// Package session owns the browser session a single test drives: one
// isolated browser context, one page, its timeouts and its artifacts.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Timeouts bound the primitives of a session
type Timeouts struct {
	Action     time.Duration
	Navigation time.Duration
}

// Options configures Open
type Options struct {
	Name         string
	Context      browser.ContextOptions
	Timeouts     Timeouts
	ArtifactRoot string
	Log          *logging.Sink
}

// Session is an isolated browser context and its page. It is owned by one
// test and must not be shared.
type Session struct {
	ID        string
	Name      string
	Page      browser.Page
	Timeouts  Timeouts
	Artifacts *ArtifactDir
	Log       *logging.Sink

	bctx      browser.Context
	closeOnce sync.Once
	closeErr  error
}

// OptionsFromConfig builds session options from the automation configuration
func OptionsFromConfig(cfg *config.E2EConfig, name string, log *logging.Sink) Options {
	opts := Options{
		Name: name,
		Context: browser.ContextOptions{
			BaseURL:           cfg.BaseURL,
			Locale:            cfg.Locale,
			TimezoneID:        cfg.Timezone,
			IgnoreHTTPSErrors: cfg.IgnoreHTTPSErrors,
			ViewportWidth:     cfg.ViewportWidth,
			ViewportHeight:    cfg.ViewportHeight,
		},
		Timeouts: Timeouts{
			Action:     cfg.ActionTimeout,
			Navigation: cfg.NavigationTimeout,
		},
		ArtifactRoot: cfg.ScreenshotDir,
		Log:          log,
	}
	if cfg.RecordsVideo() {
		opts.Context.RecordVideoDir = NewArtifactDir(cfg.VideoDir, name).Path()
	}
	return opts
}

// Open creates a fresh browser context and page
func Open(ctx context.Context, engine browser.Engine, opts Options) (*Session, error) {
	id := uuid.NewString()
	log := opts.Log
	if log == nil {
		log = logging.NewNop()
	}
	log = log.With(zap.String("session", id), zap.String("test", opts.Name))

	start := time.Now()
	bctx, err := engine.NewContext(ctx, opts.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := bctx.NewPage(ctx)
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	log.Perf("session open", start, zap.String("engine", engine.Name()))

	return &Session{
		ID:        id,
		Name:      opts.Name,
		Page:      page,
		Timeouts:  opts.Timeouts,
		Artifacts: NewArtifactDir(opts.ArtifactRoot, opts.Name),
		Log:       log,
		bctx:      bctx,
	}, nil
}

// Context returns the underlying browser context
func (s *Session) Context() browser.Context {
	return s.bctx
}

// Recorder returns the artifact recorder of the context, if it has one
func (s *Session) Recorder() (browser.ArtifactRecorder, bool) {
	r, ok := s.bctx.(browser.ArtifactRecorder)
	return r, ok
}

// Close closes the page and the context. Later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = errors.Join(s.Page.Close(), s.bctx.Close())
		if s.closeErr != nil {
			s.Log.Warn("session close failed", zap.Error(s.closeErr))
			return
		}
		s.Log.Debug("session closed")
	})
	return s.closeErr
}
