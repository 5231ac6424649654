package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(debug bool) (*Sink, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewWithCore(core, debug), logs
}

func TestSink_DebugGate(t *testing.T) {
	// GIVEN a sink with debug disabled
	sink, logs := newObserved(false)

	// WHEN debug is logged before and after enabling it
	sink.Debug("hidden")
	sink.SetDebug(true)
	sink.Debug("shown")

	// THEN only the second event is emitted
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
	assert.True(t, sink.DebugEnabled())

	sink.SetDebug(false)
	assert.False(t, sink.DebugEnabled())
}

func TestSink_ErrorCarriesDetail(t *testing.T) {
	sink, logs := newObserved(false)

	sink.Error("navigation failed", errors.New("boom"), zap.String("target", "/"))

	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	ctx := entry.ContextMap()
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "/", ctx["target"])
}

func TestSink_PerfAndStep(t *testing.T) {
	sink, logs := newObserved(false)

	sink.Perf("login", time.Now().Add(-5*time.Millisecond))
	sink.Step(2, "Perform login", StepCompleted)

	perf := logs.FilterField(zap.String("kind", KindPerf)).All()
	require.Len(t, perf, 1)
	assert.Contains(t, perf[0].Message, "login completed in")
	assert.GreaterOrEqual(t, perf[0].ContextMap()["duration"], 5*time.Millisecond)

	steps := logs.FilterField(zap.String("kind", KindStep)).All()
	require.Len(t, steps, 1)
	assert.Equal(t, "Step 2: Perform login - completed", steps[0].Message)
	assert.Equal(t, "completed", steps[0].ContextMap()["status"])
}

func TestSink_WithSharesGate(t *testing.T) {
	sink, logs := newObserved(false)
	child := sink.With(zap.String("session", "abc"))

	sink.SetDebug(true)
	child.Debug("from child")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "abc", logs.All()[0].ContextMap()["session"])
}

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
		want    string
	}{
		{name: "console default", format: "", want: "INFO"},
		{name: "json", format: "json", want: `"level":"info"`},
		{name: "unknown", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sink, err := New(Options{Format: tt.format, Output: &buf})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			sink.Info("hello")
			sink.Debug("suppressed")

			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "hello")
			assert.NotContains(t, buf.String(), "suppressed")
		})
	}
}

func TestNewNop(t *testing.T) {
	sink := NewNop()
	sink.Info("nothing")
	sink.Error("nothing", errors.New("x"))
	assert.False(t, sink.DebugEnabled())
}
