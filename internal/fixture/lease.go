package fixture

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/pages"
	"github.com/adyen/storefront-e2e/internal/session"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// LeaseState is the lifecycle state of a lease
type LeaseState int32

// Lease states
const (
	LeaseUninitialized LeaseState = iota
	LeaseProvisioned
	LeaseTornDown
)

func (s LeaseState) String() string {
	switch s {
	case LeaseUninitialized:
		return "uninitialized"
	case LeaseProvisioned:
		return "provisioned"
	case LeaseTornDown:
		return "torn-down"
	}
	return fmt.Sprintf("LeaseState(%d)", int32(s))
}

type stageTeardown struct {
	stage string
	fn    Teardown
}

// Lease owns a provisioned session until Release
type Lease struct {
	Session *session.Session

	cfg       *config.E2EConfig
	teardowns []stageTeardown
	tracing   bool
	traceExt  string
	state     atomic.Int32
}

// State returns the current lifecycle state
func (l *Lease) State() LeaseState {
	return LeaseState(l.state.Load())
}

// Release tears the lease down. Only the first call does anything; later
// calls return nil. Every step runs even when an earlier one fails.
func (l *Lease) Release(ctx context.Context, failed bool) error {
	if !l.state.CompareAndSwap(int32(LeaseProvisioned), int32(LeaseTornDown)) {
		return nil
	}
	s := l.Session
	var errs []error

	if l.cfg.ScreenshotOnRelease(failed) {
		label := lo.Ternary(failed, "failure", "final")
		if _, err := pages.NewBase(s).CaptureScreenshot(ctx, label); err != nil {
			errs = append(errs, fmt.Errorf("screenshot: %w", err))
		}
	}

	for i := len(l.teardowns) - 1; i >= 0; i-- {
		td := l.teardowns[i]
		if err := td.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("teardown %s: %w", td.stage, err))
		}
	}

	if l.tracing {
		if err := l.stopTrace(failed); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close session: %w", err))
	}

	if l.cfg.RecordsVideo() && !l.cfg.KeepVideo(failed) {
		if rec, ok := s.Recorder(); ok {
			if err := rec.DiscardVideos(); err != nil {
				errs = append(errs, fmt.Errorf("discard videos: %w", err))
			}
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		s.Log.Warn("lease released with errors", zap.Bool("failed", failed), zap.Error(err))
	} else {
		s.Log.Debug("lease released", zap.Bool("failed", failed))
	}
	return err
}

func (l *Lease) stopTrace(failed bool) error {
	rec, ok := l.Session.Recorder()
	if !ok {
		return nil
	}
	var path string
	if l.cfg.KeepTrace(failed) {
		p, err := session.NewArtifactDir(l.cfg.TraceDir, l.Session.Name).NewFile("trace", l.traceExt)
		if err != nil {
			_ = rec.StopTrace("")
			return fmt.Errorf("trace: %w", err)
		}
		path = p
	}
	if err := rec.StopTrace(path); err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	if path != "" {
		l.Session.Log.Info("trace saved", zap.String("path", path))
	}
	return nil
}
