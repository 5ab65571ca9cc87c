package submission_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formflow/pkg/attachments"
	"github.com/goliatone/go-formflow/pkg/formstate"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func reportForm() model.FormModel {
	required := func(msg string) model.ValidationRule {
		return model.ValidationRule{Kind: model.ValidationRuleRequired, Message: msg}
	}
	return model.FormModel{
		OperationID: "issue:create",
		Metadata:    map[string]string{"success": "Issue reported successfully!"},
		Fields: []model.Field{
			{Name: "issueType", Type: model.FieldTypeString, Required: true, Validations: []model.ValidationRule{required("Please select an issue type")}},
			{Name: "location", Type: model.FieldTypeString, Required: true, Validations: []model.ValidationRule{required("Please select a location")}},
			{Name: "priority", Type: model.FieldTypeString, Required: true, Validations: []model.ValidationRule{required("Please select a priority level")}},
			{Name: "description", Type: model.FieldTypeString, Required: true, Validations: []model.ValidationRule{
				required("Description is required"),
				{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "10"}, Message: "Description must be at least 10 characters"},
			}},
		},
	}
}

// gatedRemote blocks every call until release is closed.
type gatedRemote struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
}

func newGatedRemote() *gatedRemote {
	return &gatedRemote{release: make(chan struct{})}
}

func (r *gatedRemote) Submit(ctx context.Context, req submission.Request) (submission.Receipt, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	select {
	case <-ctx.Done():
		return submission.Receipt{}, ctx.Err()
	case <-r.release:
		return submission.Receipt{Reference: "REF", OperationID: req.OperationID, Values: req.Values, Attachments: req.Attachments}, nil
	}
}

func (r *gatedRemote) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type recorder struct {
	mu     sync.Mutex
	states []submission.State
}

func (r *recorder) observe(t submission.Transition) {
	r.mu.Lock()
	r.states = append(r.states, t.To)
	r.mu.Unlock()
}

func (r *recorder) States() []submission.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]submission.State(nil), r.states...)
}

func newController(t *testing.T, remote submission.Remote, opts ...submission.Option) (*submission.Controller, *formstate.Store) {
	t.Helper()
	form := reportForm()
	validator, err := validation.New(form)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	store := formstate.New(form)
	return submission.NewController(store, validator, remote, opts...), store
}

func fillReport(t *testing.T, store *formstate.Store) {
	t.Helper()
	for name, value := range map[string]string{
		"issueType":   "electrical",
		"location":    "Building A - Floor 1",
		"priority":    "medium",
		"description": "Flickering lights in hallway",
	} {
		if err := store.SetField(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
}

func TestSubmitHappyPath(t *testing.T) {
	remote, err := submission.NewSimulated(submission.FixedDelay(20*time.Millisecond), nil)
	if err != nil {
		t.Fatalf("remote: %v", err)
	}
	rec := &recorder{}
	toasts := notify.NewDispatcher()
	intake := attachments.NewIntake()
	intake.AddFiles([]attachments.File{{Name: "leak.png", ContentType: "image/png", Size: 10}})

	ctrl, store := newController(t, remote,
		submission.WithObserver(rec.observe),
		submission.WithNotifier(toasts, "session-1"),
		submission.WithAttachments(intake),
	)
	fillReport(t, store)

	errs, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("expected no field errors, got %v", errs)
	}
	if got := ctrl.State(); got != submission.StateSubmitting {
		t.Fatalf("state = %s, want submitting", got)
	}
	if err := ctrl.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}

	want := []submission.State{submission.StateValidating, submission.StateSubmitting, submission.StateSucceeded}
	if diff := cmp.Diff(want, rec.States()); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
	receipt, ok := ctrl.Receipt()
	if !ok || len(receipt.Reference) < 8 {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if diff := cmp.Diff([]string{"leak.png"}, receipt.Attachments); diff != "" {
		t.Fatalf("attachments mismatch (-want +got):\n%s", diff)
	}
	active := toasts.Active("session-1")
	if len(active) != 1 || active[0].Message != "Issue reported successfully!" {
		t.Fatalf("unexpected toasts: %+v", active)
	}
	if got := store.Value("description"); got != "Flickering lights in hallway" {
		t.Fatalf("values must survive until reset, got %v", got)
	}
}

func TestSubmitInvalidNeverCallsRemote(t *testing.T) {
	remote := newGatedRemote()
	rec := &recorder{}
	toasts := notify.NewDispatcher()
	ctrl, store := newController(t, remote, submission.WithObserver(rec.observe), submission.WithNotifier(toasts, "s"))
	_ = store.SetField("issueType", "plumbing")
	_ = store.SetField("description", "short")

	errs, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := model.FieldErrors{
		"location":    "Please select a location",
		"priority":    "Please select a priority level",
		"description": "Description must be at least 10 characters",
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, store.Errors()); diff != "" {
		t.Fatalf("store errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]submission.State{submission.StateValidating, submission.StateFailed, submission.StateIdle}, rec.States()); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
	if remote.Calls() != 0 {
		t.Fatalf("remote called %d times", remote.Calls())
	}
	if active := toasts.Active("s"); len(active) != 1 || active[0].Message != submission.DefaultFailureMessage {
		t.Fatalf("unexpected toasts: %+v", active)
	}
}

func TestSubmitIsNotReentrant(t *testing.T) {
	remote := newGatedRemote()
	ctrl, store := newController(t, remote)
	fillReport(t, store)

	if _, err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := ctrl.Submit(context.Background()); !errors.Is(err, submission.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := ctrl.Reset(); !errors.Is(err, submission.ErrBusy) {
		t.Fatalf("reset while submitting: expected ErrBusy, got %v", err)
	}

	close(remote.release)
	if err := ctrl.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if _, err := ctrl.Submit(context.Background()); !errors.Is(err, submission.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	if remote.Calls() != 1 {
		t.Fatalf("remote called %d times, want 1", remote.Calls())
	}
}

func TestResetAfterSuccess(t *testing.T) {
	remote := newGatedRemote()
	close(remote.release)
	ctrl, store := newController(t, remote)
	fillReport(t, store)

	if _, err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := ctrl.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if ctrl.Snapshot() == nil {
		t.Fatalf("expected a submitted snapshot")
	}

	if err := ctrl.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ctrl.State() != submission.StateIdle {
		t.Fatalf("state = %s after reset", ctrl.State())
	}
	if ctrl.Snapshot() != nil {
		t.Fatalf("snapshot not discarded")
	}
	if _, ok := ctrl.Receipt(); ok {
		t.Fatalf("receipt not discarded")
	}
	if diff := cmp.Diff(reportForm().Defaults(), store.Snapshot()); diff != "" {
		t.Fatalf("values not reset (-want +got):\n%s", diff)
	}
}

func TestCancelAbortsPendingSubmission(t *testing.T) {
	remote := newGatedRemote()
	rec := &recorder{}
	toasts := notify.NewDispatcher()
	ctrl, store := newController(t, remote, submission.WithObserver(rec.observe), submission.WithNotifier(toasts, "s"))
	fillReport(t, store)

	if _, err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	ctrl.Cancel()
	if err := ctrl.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}

	if ctrl.State() != submission.StateIdle {
		t.Fatalf("state = %s after cancel", ctrl.State())
	}
	want := []submission.State{submission.StateValidating, submission.StateSubmitting, submission.StateIdle}
	if diff := cmp.Diff(want, rec.States()); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
	if len(toasts.Active("s")) != 0 {
		t.Fatalf("cancelled submission must not notify")
	}
	if got := store.Value("issueType"); got != "electrical" {
		t.Fatalf("cancel must keep values, got %v", got)
	}
}

func TestSubmitSurvivesRequestContextCancellation(t *testing.T) {
	remote := newGatedRemote()
	ctrl, store := newController(t, remote)
	fillReport(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := ctrl.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	cancel()
	close(remote.release)
	if err := ctrl.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if ctrl.State() != submission.StateSucceeded {
		t.Fatalf("state = %s, want succeeded", ctrl.State())
	}
}

func TestRandomDelayBounds(t *testing.T) {
	delay := submission.RandomDelay(1500*time.Millisecond, 2500*time.Millisecond)
	for range 100 {
		d := delay()
		if d < 1500*time.Millisecond || d >= 2500*time.Millisecond {
			t.Fatalf("delay %s out of bounds", d)
		}
	}
	if got := submission.RandomDelay(time.Second, time.Second)(); got != time.Second {
		t.Fatalf("degenerate range should be fixed, got %s", got)
	}
}
