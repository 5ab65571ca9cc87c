package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	envFile := filepath.Join(t.TempDir(), "missing.env")
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", envFile}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRoutesTable(t *testing.T) {
	out, _, err := run(t, "routes")
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	for _, want := range []string{"/report", "Service Request", "/impact", "dashboard"} {
		if !strings.Contains(out, want) {
			t.Fatalf("routes output missing %q:\n%s", want, out)
		}
	}
}

func TestRoutesJSON(t *testing.T) {
	out, _, err := run(t, "routes", "--json")
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	var routes []struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(out), &routes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(routes) != 8 || routes[0].Path != "/" {
		t.Fatalf("unexpected routes: %+v", routes)
	}
}

func TestFormsTable(t *testing.T) {
	out, _, err := run(t, "forms")
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	for _, want := range []string{"createReport", "createServiceRequest", "createFeedback", "Share Your Feedback"} {
		if !strings.Contains(out, want) {
			t.Fatalf("forms output missing %q:\n%s", want, out)
		}
	}
}

func TestInvalidSettingsAreRejected(t *testing.T) {
	_, _, err := run(t, "--log-level", "loud", "forms")
	if err == nil || !strings.Contains(err.Error(), "FORMFLOW_LOG_LEVEL") {
		t.Fatalf("expected a log level error, got %v", err)
	}
}

func TestLintBuiltInDefinitions(t *testing.T) {
	out, _, err := run(t, "lint")
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if !strings.Contains(out, "no violations") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestLintReportsViolations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking.yaml")
	doc := `openapi: 3.0.3
info: {title: Parking, version: 1.0.0}
paths:
  /api/parking:
    post:
      operationId: createPermit
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                plate:
                  type: string
                  x-formgen-colour: red
      responses:
        '202': {description: ok}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, errOut, err := run(t, "lint", path)
	if err == nil {
		t.Fatalf("expected lint to fail")
	}
	if !strings.Contains(errOut, `unsupported extension key "colour"`) {
		t.Fatalf("violation not printed: %s", errOut)
	}
}

func TestFillRejectsUnknownForm(t *testing.T) {
	if _, _, err := run(t, "fill"); err == nil {
		t.Fatalf("expected an argument error")
	}
}
