package formstate_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/formstate"
	"github.com/goliatone/go-formflow/pkg/model"
)

func feedbackForm() model.FormModel {
	return model.FormModel{
		OperationID: "feedback:create",
		Fields: []model.Field{
			{Name: "rating", Type: model.FieldTypeInteger},
			{Name: "comment", Type: model.FieldTypeString},
			{Name: "isAnonymous", Type: model.FieldTypeBoolean, Clears: []string{"email"}},
			{Name: "email", Type: model.FieldTypeString, Format: "email"},
		},
	}
}

func TestNewSeedsDefaults(t *testing.T) {
	store := formstate.New(feedbackForm())
	want := model.Values{"rating": 0, "comment": "", "isAnonymous": false, "email": ""}
	if diff := cmp.Diff(want, store.Snapshot()); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if len(store.Errors()) != 0 {
		t.Fatalf("expected no errors, got %v", store.Errors())
	}
}

func TestSetFieldClearsOnlyItsError(t *testing.T) {
	store := formstate.New(feedbackForm())
	store.SetErrors(model.FieldErrors{"comment": "too short", "email": "required", "ghost": "dropped"})

	if err := store.SetField("comment", "A much longer comment"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if diff := cmp.Diff(model.FieldErrors{"email": "required"}, store.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if got := store.Value("comment"); got != "A much longer comment" {
		t.Fatalf("value = %v", got)
	}
}

func TestSetFieldIsIdempotent(t *testing.T) {
	store := formstate.New(feedbackForm())
	store.SetErrors(model.FieldErrors{"comment": "too short", "rating": "Please select a rating"})

	if err := store.SetField("rating", "4"); err != nil {
		t.Fatalf("set: %v", err)
	}
	afterFirst := store.Errors()
	if err := store.SetField("rating", "4"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if diff := cmp.Diff(afterFirst, store.Errors()); diff != "" {
		t.Fatalf("second write changed errors (-want +got):\n%s", diff)
	}
	if got := store.Value("rating"); got != 4.0 {
		t.Fatalf("rating coerced to %v (%T)", got, got)
	}
}

func TestSetFieldRejectsUnknownNames(t *testing.T) {
	store := formstate.New(feedbackForm())
	err := store.SetField("phone", "555")
	if !errors.Is(err, formstate.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, ok := store.Snapshot()["phone"]; ok {
		t.Fatalf("unknown field must not be added")
	}
}

func TestAnonymousFlagClearsEmail(t *testing.T) {
	store := formstate.New(feedbackForm())
	if err := store.SetField("email", "jane@example.com"); err != nil {
		t.Fatalf("set: %v", err)
	}
	store.SetErrors(model.FieldErrors{"email": "Please enter a valid email"})

	if err := store.SetField("isAnonymous", "on"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := store.Value("email"); got != "" {
		t.Fatalf("email not cleared: %v", got)
	}
	if _, ok := store.Errors()["email"]; ok {
		t.Fatalf("email error not cleared")
	}

	if err := store.SetField("isAnonymous", false); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := store.Value("email"); got != "" {
		t.Fatalf("turning the flag off must not restore email, got %v", got)
	}
}

func TestSetFieldsFlagWinsOverClearedField(t *testing.T) {
	tests := []struct {
		name   string
		before model.Values
		update map[string]any
		want   model.Values
	}{
		{
			name:   "flag and email in one update",
			before: model.Values{"email": "jo@example.com"},
			update: map[string]any{"rating": "5", "isAnonymous": "true", "email": "jo@example.com"},
			want:   model.Values{"rating": float64(5), "comment": "", "isAnonymous": true, "email": ""},
		},
		{
			name:   "flag already on",
			before: model.Values{"isAnonymous": true},
			update: map[string]any{"email": "jo@example.com", "comment": "Lovely building"},
			want:   model.Values{"rating": 0, "comment": "Lovely building", "isAnonymous": true, "email": ""},
		},
		{
			name:   "flag off keeps email",
			before: model.Values{},
			update: map[string]any{"isAnonymous": false, "email": "jo@example.com"},
			want:   model.Values{"rating": 0, "comment": "", "isAnonymous": false, "email": "jo@example.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := formstate.New(feedbackForm())
			for name, value := range tt.before {
				if err := store.SetField(name, value); err != nil {
					t.Fatalf("seed %s: %v", name, err)
				}
			}
			store.SetErrors(model.FieldErrors{"email": "Please enter a valid email"})
			if err := store.SetFields(tt.update); err != nil {
				t.Fatalf("set fields: %v", err)
			}
			if diff := cmp.Diff(tt.want, store.Snapshot()); diff != "" {
				t.Fatalf("values mismatch (-want +got):\n%s", diff)
			}
			if _, ok := store.Errors()["email"]; ok {
				t.Fatalf("email error should be dropped")
			}
		})
	}
}

func TestSetFieldsRejectsWholeUpdate(t *testing.T) {
	store := formstate.New(feedbackForm())
	before := store.Snapshot()
	err := store.SetFields(map[string]any{"comment": "kept out", "phone": "555"})
	if !errors.Is(err, formstate.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if diff := cmp.Diff(before, store.Snapshot()); diff != "" {
		t.Fatalf("rejected update changed values (-want +got):\n%s", diff)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	store := formstate.New(feedbackForm())
	_ = store.SetField("comment", "something")
	store.SetErrors(model.FieldErrors{"rating": "Please select a rating"})
	store.Reset()
	if diff := cmp.Diff(feedbackForm().Defaults(), store.Snapshot()); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
	if len(store.Errors()) != 0 {
		t.Fatalf("errors not cleared")
	}
}

func TestApplyPatch(t *testing.T) {
	store := formstate.New(feedbackForm())
	_ = store.SetField("email", "jane@example.com")
	store.SetErrors(model.FieldErrors{"comment": "too short", "rating": "Please select a rating"})

	patch := []byte(`[
		{"op": "replace", "path": "/comment", "value": "Patched comment text"},
		{"op": "replace", "path": "/isAnonymous", "value": true},
		{"op": "replace", "path": "/email", "value": "other@example.com"}
	]`)
	if err := store.ApplyPatch(patch); err != nil {
		t.Fatalf("apply: %v", err)
	}

	want := model.Values{"rating": 0, "comment": "Patched comment text", "isAnonymous": true, "email": ""}
	if diff := cmp.Diff(want, store.Snapshot()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.FieldErrors{"rating": "Please select a rating"}, store.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyPatchRejectsUnknownField(t *testing.T) {
	store := formstate.New(feedbackForm())
	before := store.Snapshot()
	err := store.ApplyPatch([]byte(`[{"op": "add", "path": "/phone", "value": "555"}]`))
	if !errors.Is(err, formstate.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if diff := cmp.Diff(before, store.Snapshot()); diff != "" {
		t.Fatalf("rejected patch changed values (-want +got):\n%s", diff)
	}
}
