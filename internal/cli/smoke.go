package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/fixture"
	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/adyen/storefront-e2e/internal/pages"
	"github.com/adyen/storefront-e2e/internal/scenarios"
	"github.com/adyen/storefront-e2e/internal/session"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SmokeOptions configures RunSmoke
type SmokeOptions struct {
	Engine browser.Engine
	Config *config.E2EConfig
	Log    *logging.Sink
	// Rows defaults to every login scenario
	Rows []scenarios.Login
}

// SmokeResult is the outcome of one login row
type SmokeResult struct {
	Description string `json:"description"`
	Username    string `json:"username"`
	Expected    string `json:"expected"`
	Outcome     string `json:"outcome"`
	Passed      bool   `json:"passed"`
	Attempts    int    `json:"attempts"`
	DurationMS  int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}

// SmokeReport summarises a smoke run
type SmokeReport struct {
	BaseURL    string        `json:"base_url"`
	Engine     string        `json:"engine"`
	StartedAt  time.Time     `json:"started_at"`
	DurationMS int64         `json:"duration_ms"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Results    []SmokeResult `json:"results"`
}

const outcomeAccepted = "accepted"

// RunSmoke drives the login rows against the configured shop. At most
// Workers rows run at once and a failing row is tried again up to Retries
// times. Row failures are reported, not returned.
func RunSmoke(ctx context.Context, opts SmokeOptions) (*SmokeReport, error) {
	if opts.Engine == nil || opts.Config == nil {
		return nil, errors.New("smoke run needs an engine and a configuration")
	}
	log := opts.Log
	if log == nil {
		log = logging.NewNop()
	}
	rows := opts.Rows
	if rows == nil {
		rows = scenarios.Logins()
	}

	report := &SmokeReport{
		BaseURL:   opts.Config.BaseURL,
		Engine:    opts.Engine.Name(),
		StartedAt: time.Now(),
		Results:   make([]SmokeResult, len(rows)),
	}
	pipeline := fixture.NewPipeline(opts.Engine, opts.Config, log)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Config.Workers)

	for i, row := range rows {
		g.Go(func() error {
			res := runLoginRow(gctx, pipeline, opts.Config, row, i)
			report.Results[i] = res

			status := lo.Ternary(res.Passed, logging.StepCompleted, logging.StepFailed)
			log.Step(i+1, row.Description, status)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("smoke run interrupted: %w", err)
	}

	report.Passed = lo.CountBy(report.Results, func(r SmokeResult) bool { return r.Passed })
	report.Failed = len(report.Results) - report.Passed
	report.DurationMS = time.Since(report.StartedAt).Milliseconds()
	log.Info("smoke run finished",
		zap.Int("passed", report.Passed),
		zap.Int("failed", report.Failed),
		zap.Int64("duration_ms", report.DurationMS))
	return report, nil
}

func runLoginRow(ctx context.Context, pipeline *fixture.Pipeline, cfg *config.E2EConfig, row scenarios.Login, i int) (res SmokeResult) {
	res = SmokeResult{
		Description: row.Description,
		Username:    row.Username,
		Expected:    lo.Ternary(row.Valid, outcomeAccepted, string(row.Kind)),
	}
	start := time.Now()
	defer func() { res.DurationMS = time.Since(start).Milliseconds() }()

	for attempt := 1; attempt <= cfg.Retries+1; attempt++ {
		res.Attempts = attempt
		outcome, err := attemptLogin(ctx, pipeline, cfg, row, fmt.Sprintf("smoke-%02d-attempt-%d", i+1, attempt))
		res.Outcome = outcome
		res.Passed = err == nil && outcome == res.Expected
		res.Error = ""
		if err != nil {
			res.Error = err.Error()
		}
		if res.Passed || ctx.Err() != nil {
			break
		}
	}
	return res
}

// attemptLogin provisions a login and classifies what the shop answered
func attemptLogin(ctx context.Context, pipeline *fixture.Pipeline, cfg *config.E2EConfig, row scenarios.Login, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.TestTimeout)
	defer cancel()

	lease, err := pipeline.With(fixture.Login(row.Username, row.Password)).Provision(ctx, name)
	if err == nil {
		relErr := lease.Release(context.WithoutCancel(ctx), !row.Valid)
		return outcomeAccepted, relErr
	}

	var rejected *pages.LoginRejectedError
	if errors.As(err, &rejected) {
		return string(rejected.Kind), nil
	}
	return "error", err
}

// Write stores the report as JSON under dir and returns the file path
func (r *SmokeReport) Write(dir string) (string, error) {
	path, err := session.NewArtifactDir(dir, "smoke").NewFile("report", "json")
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode smoke report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write smoke report: %w", err)
	}
	return path, nil
}
