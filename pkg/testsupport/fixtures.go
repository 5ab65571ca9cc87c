// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/goliatone/go-formflow/pkg/portal"
)

// FixedNow is the instant test clocks report: a Monday morning in UTC.
var FixedNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

// Clock returns a clock stuck at FixedNow.
func Clock() func() time.Time {
	return func() time.Time { return FixedNow }
}

// Logger returns a logger that writes through t.
func Logger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
}

// FastTiming keeps simulated remotes short enough for tests.
func FastTiming() portal.Timing {
	return portal.Timing{
		Fixed:     5 * time.Millisecond,
		RandomMin: 5 * time.Millisecond,
		RandomMax: 10 * time.Millisecond,
	}
}

// Catalog loads the portal catalog with FastTiming and the fixed clock.
func Catalog(t *testing.T, opts ...portal.Option) *portal.Catalog {
	t.Helper()
	base := []portal.Option{
		portal.WithTiming(FastTiming()),
		portal.WithClock(Clock()),
		portal.WithLogger(Logger(t)),
	}
	catalog, err := portal.LoadCatalog(context.Background(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return catalog
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
