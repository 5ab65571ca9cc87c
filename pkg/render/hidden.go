package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden input emitted alongside the visible fields.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs the hidden field carrying a session's form token.
func CSRFToken(token string) HiddenField {
	return Hidden(CSRFFieldName, token)
}

// CSRFFieldName is the input name form posts carry their token under.
const CSRFFieldName = "_csrf"

// SortedHiddenFields drops unnamed entries, lets later fields win on name
// collisions and sorts the result by name.
func SortedHiddenFields(fields ...HiddenField) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	clean := make(map[string]string, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		clean[name] = field.Value
	}
	if len(clean) == 0 {
		return nil
	}

	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}
