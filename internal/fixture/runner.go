package fixture

import (
	"context"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/adyen/storefront-e2e/internal/session"
)

// TB is the part of testing.TB the runner uses
type TB interface {
	Helper()
	Name() string
	Cleanup(func())
	Failed() bool
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// Runner binds pipelines to tests. One runner, and so one engine, is shared
// by all tests of a binary; every test gets its own session.
type Runner struct {
	engine browser.Engine
	cfg    *config.E2EConfig
	log    *logging.Sink
}

// NewRunner creates a runner
func NewRunner(engine browser.Engine, cfg *config.E2EConfig, log *logging.Sink) *Runner {
	if log == nil {
		log = logging.NewNop()
	}
	return &Runner{engine: engine, cfg: cfg, log: log}
}

// Config returns the runner configuration
func (r *Runner) Config() *config.E2EConfig {
	return r.cfg
}

// Pipeline returns an empty pipeline on the runner's engine
func (r *Runner) Pipeline() *Pipeline {
	return NewPipeline(r.engine, r.cfg, r.log)
}

// Session provisions a bare session for t
func (r *Runner) Session(t TB) (context.Context, *session.Session) {
	t.Helper()
	return r.Run(t, r.Pipeline())
}

// AuthenticatedSession provisions a session logged in with the configured user
func (r *Runner) AuthenticatedSession(t TB) (context.Context, *session.Session) {
	t.Helper()
	return r.Run(t, r.Pipeline().With(StandardUser(r.cfg)))
}

// Run provisions p for t. The returned context ends after TEST_TIMEOUT.
// Release runs from t.Cleanup, so it happens on pass, failure and FailNow.
func (r *Runner) Run(t TB, p *Pipeline) (context.Context, *session.Session) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.TestTimeout)
	lease, err := p.Provision(ctx, t.Name())
	if err != nil {
		cancel()
		t.Fatalf("fixture: %v", err)
		return nil, nil
	}

	t.Cleanup(func() {
		defer cancel()
		// the test context may already be done
		relCtx, relCancel := context.WithTimeout(context.Background(), releaseTimeout(r.cfg))
		defer relCancel()
		if err := lease.Release(relCtx, t.Failed()); err != nil {
			t.Logf("fixture release: %v", err)
		}
	})
	return ctx, lease.Session
}

func releaseTimeout(cfg *config.E2EConfig) time.Duration {
	return cfg.NavigationTimeout + cfg.ActionTimeout
}
