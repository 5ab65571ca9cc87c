// Package visibility decides which fields a form shows for its current values.
//
// A boolean field that declares x-formgen-clears hides the listed fields
// while it is on. The field store already empties them, so renderers skip
// them instead of drawing blank controls.
package visibility

import "github.com/goliatone/go-formflow/pkg/model"

// Hidden returns the names of every field cleared by a flag that is on.
func Hidden(form model.FormModel, values model.Values) map[string]bool {
	out := map[string]bool{}
	for _, field := range form.Fields {
		if len(field.Clears) == 0 || values[field.Name] != true {
			continue
		}
		for _, name := range field.Clears {
			out[name] = true
		}
	}
	return out
}

// IsHidden reports whether name is cleared by an enabled flag.
func IsHidden(form model.FormModel, values model.Values, name string) bool {
	return Hidden(form, values)[name]
}

// Visible returns the form fields that are not hidden, in declaration order.
func Visible(form model.FormModel, values model.Values) []model.Field {
	hidden := Hidden(form, values)
	out := make([]model.Field, 0, len(form.Fields))
	for _, field := range form.Fields {
		if !hidden[field.Name] {
			out = append(out, field)
		}
	}
	return out
}
