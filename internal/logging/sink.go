// Package logging provides the structured log sink shared by the browser
// session, the page objects, the fixtures and the demo storefront.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StepStatus is the progress state reported by Step.
type StepStatus string

// Step statuses
const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in-progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
)

// Event kinds carried in the "kind" field.
const (
	KindPerf = "perf"
	KindStep = "step"
)

// Options configures a Sink.
type Options struct {
	// Debug enables debug level output.
	Debug bool
	// Format is "console" (default) or "json".
	Format string
	// Output defaults to os.Stdout.
	Output io.Writer
}

// Sink is a level based event emitter. The only mutable state is the debug gate.
type Sink struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// New creates a sink writing to opts.Output.
func New(opts Options) (*Sink, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch opts.Format {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return &Sink{logger: zap.New(core), level: level}, nil
}

// NewWithCore wraps an existing core, e.g. zaptest/observer in tests.
// The core should accept debug entries; the sink applies its own gate.
func NewWithCore(core zapcore.Core, debug bool) *Sink {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}
	return &Sink{logger: zap.New(core), level: level}
}

// NewNop returns a sink that discards everything.
func NewNop() *Sink {
	return &Sink{logger: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}
}

// With returns a child sink carrying the given fields. The debug gate is shared.
func (s *Sink) With(fields ...zap.Field) *Sink {
	return &Sink{logger: s.logger.With(fields...), level: s.level}
}

// SetDebug toggles debug output at runtime.
func (s *Sink) SetDebug(enabled bool) {
	if enabled {
		s.level.SetLevel(zapcore.DebugLevel)
		return
	}
	s.level.SetLevel(zapcore.InfoLevel)
}

// DebugEnabled reports whether debug events are emitted.
func (s *Sink) DebugEnabled() bool {
	return s.level.Enabled(zapcore.DebugLevel)
}

// Info logs at info level.
func (s *Sink) Info(msg string, fields ...zap.Field) {
	s.logger.Info(msg, fields...)
}

// Warn logs at warn level.
func (s *Sink) Warn(msg string, fields ...zap.Field) {
	s.logger.Warn(msg, fields...)
}

// Error logs at error level. err may be nil.
func (s *Sink) Error(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Error(msg, fields...)
}

// Debug logs at debug level when the gate is open.
func (s *Sink) Debug(msg string, fields ...zap.Field) {
	if !s.DebugEnabled() {
		return
	}
	s.logger.Debug(msg, fields...)
}

// Perf records how long the labelled operation took since start.
func (s *Sink) Perf(label string, start time.Time, fields ...zap.Field) {
	elapsed := time.Since(start)
	fields = append(fields,
		zap.String("kind", KindPerf),
		zap.Duration("duration", elapsed),
	)
	s.logger.Info(fmt.Sprintf("%s completed in %s", label, elapsed.Round(10*time.Microsecond)), fields...)
}

// Step records progress of a numbered test step.
func (s *Sink) Step(n int, name string, status StepStatus) {
	s.logger.Info(fmt.Sprintf("Step %d: %s - %s", n, name, status),
		zap.String("kind", KindStep),
		zap.Int("step", n),
		zap.String("status", string(status)),
	)
}

// Sync flushes buffered output.
func (s *Sink) Sync() error {
	return s.logger.Sync()
}
