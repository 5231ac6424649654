package fixture

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/adyen/storefront-e2e/internal/session"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ProvisioningError reports the stage that failed. Everything provisioned
// before it has been released.
type ProvisioningError struct {
	Stage string
	Err   error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning failed at stage %q: %v", e.Stage, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// Pipeline is an engine, a configuration and ordered stages. It is
// immutable; With returns a new pipeline.
type Pipeline struct {
	engine browser.Engine
	cfg    *config.E2EConfig
	log    *logging.Sink
	stages []Stage
}

// NewPipeline creates a pipeline without stages
func NewPipeline(engine browser.Engine, cfg *config.E2EConfig, log *logging.Sink) *Pipeline {
	if log == nil {
		log = logging.NewNop()
	}
	return &Pipeline{engine: engine, cfg: cfg, log: log}
}

// With returns a pipeline running p's stages followed by stages
func (p *Pipeline) With(stages ...Stage) *Pipeline {
	return &Pipeline{
		engine: p.engine,
		cfg:    p.cfg,
		log:    p.log,
		stages: slices.Concat(p.stages, stages),
	}
}

// StageNames lists the stages in run order
func (p *Pipeline) StageNames() []string {
	return lo.Map(p.stages, func(s Stage, _ int) string { return s.Name() })
}

// Provision opens a fresh session named name and runs the stages in order
func (p *Pipeline) Provision(ctx context.Context, name string) (*Lease, error) {
	start := time.Now()

	s, err := session.Open(ctx, p.engine, session.OptionsFromConfig(p.cfg, name, p.log))
	if err != nil {
		return nil, &ProvisioningError{Stage: "session", Err: err}
	}

	lease := &Lease{Session: s, cfg: p.cfg, traceExt: traceExt(p.engine)}
	lease.state.Store(int32(LeaseProvisioned))

	if p.cfg.RecordsTrace() {
		if rec, ok := s.Recorder(); ok {
			if err := rec.StartTrace(s.Name); err != nil {
				s.Log.Warn("trace not started", zap.Error(err))
			} else {
				lease.tracing = true
			}
		}
	}

	for i, stage := range p.stages {
		s.Log.Step(i+1, stage.Name(), logging.StepInProgress)
		teardown, err := stage.Setup(ctx, s)
		if err != nil {
			s.Log.Step(i+1, stage.Name(), logging.StepFailed)
			// ctx may be what failed the stage
			relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.NavigationTimeout)
			if relErr := lease.Release(relCtx, true); relErr != nil {
				s.Log.Warn("release after failed provisioning", zap.Error(relErr))
			}
			cancel()
			return nil, &ProvisioningError{Stage: stage.Name(), Err: err}
		}
		if teardown != nil {
			lease.teardowns = append(lease.teardowns, stageTeardown{stage: stage.Name(), fn: teardown})
		}
		s.Log.Step(i+1, stage.Name(), logging.StepCompleted)
	}

	s.Log.Perf("provision", start, zap.Strings("stages", p.StageNames()))
	return lease, nil
}

func traceExt(engine browser.Engine) string {
	if engine.Name() == config.EngineHTML {
		return "json"
	}
	return "zip"
}
