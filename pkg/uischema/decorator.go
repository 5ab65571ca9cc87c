package uischema

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Decorator returns a model.Decorator that applies the overlay registered for
// the form's operation id. Forms without an overlay pass through untouched.
func (s *Store) Decorator() model.Decorator {
	return model.DecoratorFunc(func(form *model.FormModel) error {
		op, ok := s.Operation(form.OperationID)
		if !ok {
			return nil
		}
		return op.Decorate(form)
	})
}

// Decorate applies the overlay to form. Overlay entries that do not match a
// declared field, option or rule are reported as errors so typos surface at
// start-up instead of silently falling back to generated copy.
func (op Operation) Decorate(form *model.FormModel) error {
	if form == nil {
		return fmt.Errorf("uischema: operation %q: form is nil", op.ID)
	}
	if op.Title != "" {
		form.Title = op.Title
	}
	if op.Summary != "" {
		form.Summary = op.Summary
	}
	if op.Success != "" {
		if form.Metadata == nil {
			form.Metadata = make(map[string]string)
		}
		form.Metadata["success"] = op.Success
	}

	index := make(map[string]int, len(form.Fields))
	for i, field := range form.Fields {
		index[field.Name] = i
	}

	for name, cfg := range op.Fields {
		i, ok := index[name]
		if !ok {
			return fmt.Errorf("uischema: operation %q (file %s) configures unknown field %q", op.ID, op.Source, name)
		}
		if err := applyFieldConfig(&form.Fields[i], cfg); err != nil {
			return fmt.Errorf("uischema: operation %q (file %s): %w", op.ID, op.Source, err)
		}
	}

	if len(op.Order) > 0 {
		ordered, err := reorder(form.Fields, op.Order)
		if err != nil {
			return fmt.Errorf("uischema: operation %q (file %s): %w", op.ID, op.Source, err)
		}
		form.Fields = ordered
	}
	return nil
}

func applyFieldConfig(field *model.Field, cfg FieldConfig) error {
	if label := strings.TrimSpace(cfg.Label); label != "" {
		field.Label = label
	}
	if placeholder := strings.TrimSpace(cfg.Placeholder); placeholder != "" {
		field.Placeholder = placeholder
	}
	if help := strings.TrimSpace(cfg.Help); help != "" {
		field.Description = help
	}
	if widget := strings.TrimSpace(cfg.Widget); widget != "" {
		if field.Metadata == nil {
			field.Metadata = make(map[string]string)
		}
		field.Metadata["widget"] = widget
	}

	if len(cfg.Options) > 0 {
		if len(field.Options) == 0 {
			return fmt.Errorf("field %q labels options but declares no enum", field.Name)
		}
		labelled := make([]model.Option, 0, len(cfg.Options))
		for _, opt := range cfg.Options {
			value, ok := matchOption(field.Options, opt.Value)
			if !ok {
				return fmt.Errorf("field %q labels unknown option %v", field.Name, opt.Value)
			}
			labelled = append(labelled, model.Option{Value: value, Label: strings.TrimSpace(opt.Label)})
		}
		if len(labelled) != len(field.Options) {
			return fmt.Errorf("field %q labels %d of %d options", field.Name, len(labelled), len(field.Options))
		}
		field.Options = labelled
	}

	for kind, message := range cfg.Messages {
		applied := false
		for i := range field.Validations {
			if field.Validations[i].Kind == kind {
				field.Validations[i].Message = strings.TrimSpace(message)
				applied = true
			}
		}
		if !applied {
			return fmt.Errorf("field %q has a %q message but no such rule", field.Name, kind)
		}
	}
	return nil
}

// matchOption compares by string form so YAML ints line up with the float64
// values kin-openapi decodes from enums.
func matchOption(options []model.Option, value any) (any, bool) {
	key := fmt.Sprint(value)
	for _, opt := range options {
		if fmt.Sprint(opt.Value) == key {
			return opt.Value, true
		}
	}
	return nil, false
}

func reorder(fields []model.Field, order []string) ([]model.Field, error) {
	byName := make(map[string]model.Field, len(fields))
	for _, field := range fields {
		byName[field.Name] = field
	}
	out := make([]model.Field, 0, len(fields))
	placed := make(map[string]struct{}, len(order))
	for _, name := range order {
		field, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("order lists unknown field %q", name)
		}
		out = append(out, field)
		placed[name] = struct{}{}
	}
	for _, field := range fields {
		if _, ok := placed[field.Name]; !ok {
			out = append(out, field)
		}
	}
	return out, nil
}
