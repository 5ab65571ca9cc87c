package model

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
)

const (
	ValidationRuleRequired       = "required"
	ValidationRuleRequiredUnless = "requiredUnless"
	ValidationRuleMinLength      = "minLength"
	ValidationRuleMaxLength      = "maxLength"
	ValidationRulePattern        = "pattern"
	ValidationRuleFormat         = "format"
	ValidationRuleMin            = "min"
	ValidationRuleMax            = "max"
	ValidationRuleMinDate        = "minDate"
	ValidationRuleOneOf          = "oneOf"
)

// ValidationRule represents a single constraint applied to a field. Rules are
// evaluated in slice order and the first failing rule wins. Numeric bounds and
// length limits encode their threshold in Params["value"], pattern rules keep
// the expression in Params["pattern"], format rules name the format in
// Params["format"], minDate stores a day offset from today in Params["days"],
// and requiredUnless names the boolean flag field in Params["field"].
type ValidationRule struct {
	Kind    string            `json:"kind"`
	Params  map[string]string `json:"params,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Option is a selectable value with its display label.
type Option struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// Field models an individual input inside a form.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Format      string            `json:"format,omitempty"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     any               `json:"default,omitempty"`
	Options     []Option          `json:"options,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Clears      []string          `json:"clears,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ZeroValue returns the value a field holds before the user touches it.
func (f Field) ZeroValue() any {
	if f.Default != nil {
		return f.Default
	}
	switch f.Type {
	case FieldTypeBoolean:
		return false
	case FieldTypeInteger, FieldTypeNumber:
		return 0
	case FieldTypeArray:
		return []any{}
	default:
		return ""
	}
}

// OptionLabel resolves the display label for a stored value, falling back to
// the value itself.
func (f Field) OptionLabel(value any) string {
	key := toString(value)
	for _, opt := range f.Options {
		if toString(opt.Value) == key {
			return opt.Label
		}
	}
	return key
}

// FormModel is the top-level representation the portal renders and validates.
type FormModel struct {
	OperationID string            `json:"operationId"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Title       string            `json:"title,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Field looks up a declared field by name.
func (f FormModel) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Defaults returns a fresh value map holding one entry per declared field.
func (f FormModel) Defaults() Values {
	out := make(Values, len(f.Fields))
	for _, field := range f.Fields {
		out[field.Name] = cloneValue(field.ZeroValue())
	}
	return out
}

// Values maps field names to their current values. Values are strings,
// booleans, numbers or lists.
type Values map[string]any

// Clone returns a shallow copy with list values duplicated.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = cloneValue(value)
	}
	return out
}

// FieldErrors maps field names to the active validation message. A missing key
// means the field is valid or has not been checked yet.
type FieldErrors map[string]string

// Clone copies the error map.
func (e FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for key, value := range e {
		out[key] = value
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case []any:
		return append([]any{}, typed...)
	case []string:
		return append([]string{}, typed...)
	default:
		return value
	}
}
