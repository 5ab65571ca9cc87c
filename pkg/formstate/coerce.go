package formstate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Coerce converts raw input (usually strings from an HTML form or a terminal
// prompt) into the representation the field stores. Values that cannot be
// converted are kept as given so the validator reports them.
func Coerce(field model.Field, value any) (any, error) {
	raw, isString := value.(string)
	switch field.Type {
	case model.FieldTypeBoolean:
		if !isString {
			return value, nil
		}
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "", "false", "off", "0", "no":
			return false, nil
		case "true", "on", "1", "yes":
			return true, nil
		}
		return nil, fmt.Errorf("formstate: field %q: %q is not a boolean", field.Name, raw)
	case model.FieldTypeInteger, model.FieldTypeNumber:
		if !isString {
			return value, nil
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return field.ZeroValue(), nil
		}
		if number, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return number, nil
		}
		return raw, nil
	case model.FieldTypeArray:
		switch typed := value.(type) {
		case []string:
			out := make([]any, len(typed))
			for i, item := range typed {
				out[i] = item
			}
			return out, nil
		case string:
			if strings.TrimSpace(typed) == "" {
				return []any{}, nil
			}
			return []any{typed}, nil
		}
		return value, nil
	default:
		if value == nil {
			return "", nil
		}
		return value, nil
	}
}
