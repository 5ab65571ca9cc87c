package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/pkg/portal"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := config.FromLookup(lookupFrom(nil))
	if err != nil {
		t.Fatalf("from lookup: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(portal.DefaultTiming(), cfg.Timing()); diff != "" {
		t.Fatalf("timing mismatch (-want +got):\n%s", diff)
	}
}

func TestFromLookupOverrides(t *testing.T) {
	cfg, err := config.FromLookup(lookupFrom(map[string]string{
		"FORMFLOW_ADDR":                 "127.0.0.1:9000",
		"FORMFLOW_LOG_LEVEL":            "debug",
		"FORMFLOW_SESSION_TTL":          "2h",
		"FORMFLOW_RANDOM_DELAY_MIN":     "100ms",
		"FORMFLOW_RANDOM_DELAY_MAX":     " 200ms ",
		"FORMFLOW_MAX_ATTACHMENTS":      "3",
		"FORMFLOW_MAX_ATTACHMENT_BYTES": "1024",
		"FORMFLOW_TOAST_DURATION":       "",
	}))
	if err != nil {
		t.Fatalf("from lookup: %v", err)
	}

	want := config.Default()
	want.Addr = "127.0.0.1:9000"
	want.LogLevel = "debug"
	want.SessionTTL = 2 * time.Hour
	want.RandomDelayMin = 100 * time.Millisecond
	want.RandomDelayMax = 200 * time.Millisecond
	want.MaxAttachments = 3
	want.MaxAttachmentBytes = 1024
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(portal.Limits{MaxFiles: 3, MaxBytes: 1024}, cfg.Limits()); diff != "" {
		t.Fatalf("limits mismatch (-want +got):\n%s", diff)
	}
}

func TestFromLookupRejectsInvalidSettings(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad duration", map[string]string{"FORMFLOW_FIXED_DELAY": "soon"}, "FORMFLOW_FIXED_DELAY"},
		{"bad number", map[string]string{"FORMFLOW_MAX_ATTACHMENTS": "many"}, "FORMFLOW_MAX_ATTACHMENTS"},
		{"unknown level", map[string]string{"FORMFLOW_LOG_LEVEL": "loud"}, "FORMFLOW_LOG_LEVEL fails oneof"},
		{"inverted delay bounds", map[string]string{"FORMFLOW_RANDOM_DELAY_MAX": "1s"}, "FORMFLOW_RANDOM_DELAY_MAX fails gtefield"},
		{"short session", map[string]string{"FORMFLOW_SESSION_TTL": "10s"}, "FORMFLOW_SESSION_TTL fails gte=1m"},
		{"too many attachments", map[string]string{"FORMFLOW_MAX_ATTACHMENTS": "50"}, "FORMFLOW_MAX_ATTACHMENTS fails max=20"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.FromLookup(lookupFrom(tc.env))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FORMFLOW_SHUTDOWN_GRACE=9s\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("FORMFLOW_SHUTDOWN_GRACE", "")
	os.Unsetenv("FORMFLOW_SHUTDOWN_GRACE")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ShutdownGrace != 9*time.Second {
		t.Fatalf("shutdown grace = %v", cfg.ShutdownGrace)
	}
}

func TestLoadIgnoresMissingEnvFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "warn"
	logger, err := cfg.Logger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be disabled at warn level")
	}
}
