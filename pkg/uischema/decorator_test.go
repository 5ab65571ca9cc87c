package uischema_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/uischema"
)

func priorityForm() model.FormModel {
	return model.FormModel{
		OperationID: "issue:create",
		Fields: []model.Field{
			{Name: "description", Type: model.FieldTypeString, Validations: []model.ValidationRule{
				{Kind: model.ValidationRuleRequired},
				{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "10"}},
			}},
			{Name: "priority", Type: model.FieldTypeString, Options: []model.Option{
				{Value: "low", Label: "low"},
				{Value: "urgent", Label: "urgent"},
			}, Validations: []model.ValidationRule{{Kind: model.ValidationRuleRequired}}},
		},
	}
}

func TestDecorateAppliesCopyAndOrder(t *testing.T) {
	op := uischema.Operation{
		ID:      "issue:create",
		Title:   "Report an Issue",
		Success: "Issue reported successfully!",
		Order:   []string{"priority"},
		Fields: map[string]uischema.FieldConfig{
			"priority": {
				Label: "Priority Level",
				Options: []uischema.OptionConfig{
					{Value: "low", Label: "Low Priority"},
					{Value: "urgent", Label: "Urgent"},
				},
				Messages: map[string]string{"required": "Please select a priority level"},
			},
			"description": {
				Placeholder: "Describe the issue",
				Messages: map[string]string{
					"required":  "Description is required",
					"minLength": "Description must be at least 10 characters",
				},
			},
		},
	}

	form := priorityForm()
	if err := model.ApplyDecorators(&form, op); err != nil {
		t.Fatalf("decorate: %v", err)
	}

	if form.Title != "Report an Issue" || form.Metadata["success"] != "Issue reported successfully!" {
		t.Fatalf("form copy not applied: %+v", form)
	}
	if form.Fields[0].Name != "priority" || form.Fields[1].Name != "description" {
		t.Fatalf("order not applied: %s, %s", form.Fields[0].Name, form.Fields[1].Name)
	}
	wantOptions := []model.Option{{Value: "low", Label: "Low Priority"}, {Value: "urgent", Label: "Urgent"}}
	if diff := cmp.Diff(wantOptions, form.Fields[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if form.Fields[0].Validations[0].Message != "Please select a priority level" {
		t.Fatalf("message not applied: %+v", form.Fields[0].Validations)
	}
	if got := form.Fields[1].Validations[1].Message; got != "Description must be at least 10 characters" {
		t.Fatalf("minLength message = %q", got)
	}
	if form.Fields[1].Placeholder != "Describe the issue" {
		t.Fatalf("placeholder not applied")
	}
}

func TestDecorateRejectsUnknownEntries(t *testing.T) {
	cases := map[string]uischema.Operation{
		"unknown field": {ID: "issue:create", Fields: map[string]uischema.FieldConfig{"nope": {Label: "x"}}},
		"unknown rule": {ID: "issue:create", Fields: map[string]uischema.FieldConfig{
			"priority": {Messages: map[string]string{"pattern": "x"}},
		}},
		"unknown option": {ID: "issue:create", Fields: map[string]uischema.FieldConfig{
			"priority": {Options: []uischema.OptionConfig{{Value: "medium", Label: "Medium"}}},
		}},
		"unknown order": {ID: "issue:create", Order: []string{"files"}},
	}
	for name, op := range cases {
		t.Run(name, func(t *testing.T) {
			form := priorityForm()
			if err := op.Decorate(&form); err == nil || !strings.HasPrefix(err.Error(), "uischema:") {
				t.Fatalf("expected uischema error, got %v", err)
			}
		})
	}
}

func TestStoreDecoratorSkipsUnknownForms(t *testing.T) {
	store, err := uischema.LoadFS(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	form := priorityForm()
	before := priorityForm()
	if err := store.Decorator().Decorate(&form); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if diff := cmp.Diff(before, form); diff != "" {
		t.Fatalf("form changed without overlay (-want +got):\n%s", diff)
	}
}
