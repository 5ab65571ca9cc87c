package uischema_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/uischema"
)

const reportOverlay = `
operations:
  issue:create:
    title: Report an Issue
    summary: Help us maintain a better workspace for everyone
    success: Issue reported successfully!
    order: [issueType, location, priority, files, description]
    fields:
      priority:
        label: Priority Level
        options:
          - { value: low, label: Low Priority }
          - { value: urgent, label: Urgent }
        messages:
          required: Please select a priority level
`

func TestLoadFS_YAML(t *testing.T) {
	store, err := uischema.LoadFS(fstest.MapFS{
		"ui/report.yaml": {Data: []byte(reportOverlay)},
		"ui/README.md":   {Data: []byte("ignored")},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	op, ok := store.Operation("issue:create")
	if !ok {
		t.Fatalf("operation issue:create not found")
	}
	if op.Title != "Report an Issue" || op.Success != "Issue reported successfully!" {
		t.Fatalf("unexpected form copy: %+v", op)
	}
	if diff := cmp.Diff([]string{"issueType", "location", "priority", "files", "description"}, op.Order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	priority := op.Fields["priority"]
	if priority.Label != "Priority Level" {
		t.Fatalf("label mismatch: %q", priority.Label)
	}
	wantOptions := []uischema.OptionConfig{
		{Value: "low", Label: "Low Priority"},
		{Value: "urgent", Label: "Urgent"},
	}
	if diff := cmp.Diff(wantOptions, priority.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if priority.Messages["required"] != "Please select a priority level" {
		t.Fatalf("messages not parsed: %#v", priority.Messages)
	}
	if diff := cmp.Diff([]string{"issue:create"}, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFS_DuplicateOperation(t *testing.T) {
	_, err := uischema.LoadFS(fstest.MapFS{
		"a.yaml": {Data: []byte("operations:\n  feedback:create:\n    title: A\n")},
		"b.yaml": {Data: []byte("operations:\n  feedback:create:\n    title: B\n")},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate operation") {
		t.Fatalf("expected duplicate operation error, got %v", err)
	}
}

func TestLoadFS_DuplicateOrderEntry(t *testing.T) {
	_, err := uischema.LoadFS(fstest.MapFS{
		"a.yml": {Data: []byte("operations:\n  x:\n    order: [a, a]\n")},
	})
	if err == nil || !strings.Contains(err.Error(), "twice") {
		t.Fatalf("expected duplicate order error, got %v", err)
	}
}

func TestLoadFS_NilFS(t *testing.T) {
	store, err := uischema.LoadFS(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !store.Empty() {
		t.Fatalf("expected empty store")
	}
}
