package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
)

const (
	extensionPrefix         = "x-formgen-"
	requiredUnlessExtension = extensionPrefix + ExtensionRequiredUnless
	clearsExtension         = extensionPrefix + ExtensionClears
	minDateExtension        = extensionPrefix + ExtensionMinDate
)

// Options configures a Builder. The zero value labels fields with
// DefaultLabeler.
type Options struct {
	Labeler func(string) string
}

// Builder converts OpenAPI operations into form models.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	if options.Labeler == nil {
		options.Labeler = DefaultLabeler
	}
	return &Builder{opts: options}
}

// Build transforms an OpenAPI operation into a FormModel. Only flat object
// request bodies are supported: every property becomes one field.
func (b *Builder) Build(op pkgopenapi.Operation) (FormModel, error) {
	if err := validateOperation(op); err != nil {
		return FormModel{}, err
	}

	form := FormModel{
		OperationID: op.ID,
		Endpoint:    op.Path,
		Method:      strings.ToUpper(op.Method),
		Title:       op.Summary,
		Summary:     op.Summary,
		Description: op.Description,
		Metadata:    metadataFromExtensions(op.Extensions),
	}

	body := op.RequestBody
	requiredSet := make(map[string]struct{}, len(body.Required))
	for _, name := range body.Required {
		requiredSet[name] = struct{}{}
	}

	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		_, required := requiredSet[name]
		field, err := b.fieldFromSchema(name, body.Properties[name], required)
		if err != nil {
			return FormModel{}, err
		}
		form.Fields = append(form.Fields, field)
	}

	if err := checkCrossReferences(form); err != nil {
		return FormModel{}, err
	}
	return form, nil
}

func (b *Builder) fieldFromSchema(name string, schema pkgopenapi.Schema, required bool) (Field, error) {
	fieldType := mapType(schema.Type)
	if fieldType == "" {
		return Field{}, fmt.Errorf("model builder: field %q has unsupported type %q", name, schema.Type)
	}
	if fieldType == FieldTypeArray && schema.Items == nil {
		return Field{}, fmt.Errorf("model builder: array field %q missing items", name)
	}

	field := Field{
		Name:        name,
		Type:        fieldType,
		Format:      schema.Format,
		Required:    required,
		Label:       b.opts.Labeler(name),
		Description: schema.Description,
		Default:     schema.Default,
		Metadata:    metadataFromExtensions(schema.Extensions),
	}
	for _, value := range schema.Enum {
		field.Options = append(field.Options, Option{Value: value, Label: toString(value)})
	}
	if clears, ok := stringList(schema.Extensions[clearsExtension]); ok {
		if fieldType != FieldTypeBoolean {
			return Field{}, fmt.Errorf("model builder: field %q declares %s but is not boolean", name, clearsExtension)
		}
		field.Clears = clears
	}

	rules, err := rulesFromSchema(field, schema)
	if err != nil {
		return Field{}, err
	}
	field.Validations = rules
	return field, nil
}

// rulesFromSchema produces the ordered rule list. Presence rules come first so
// an empty required value reports "required" rather than a length error.
func rulesFromSchema(field Field, schema pkgopenapi.Schema) ([]ValidationRule, error) {
	var rules []ValidationRule

	if field.Required {
		rules = append(rules, ValidationRule{Kind: ValidationRuleRequired})
	}
	if raw, ok := schema.Extensions[requiredUnlessExtension]; ok {
		flag := strings.TrimSpace(toString(raw))
		if flag == "" {
			return nil, fmt.Errorf("model builder: field %q has an empty %s", field.Name, requiredUnlessExtension)
		}
		rules = append(rules, ValidationRule{
			Kind:   ValidationRuleRequiredUnless,
			Params: map[string]string{"field": flag},
		})
	}
	if schema.MinLength != nil {
		rules = append(rules, ValidationRule{
			Kind:   ValidationRuleMinLength,
			Params: map[string]string{"value": strconv.Itoa(*schema.MinLength)},
		})
	}
	if schema.MaxLength != nil {
		rules = append(rules, ValidationRule{
			Kind:   ValidationRuleMaxLength,
			Params: map[string]string{"value": strconv.Itoa(*schema.MaxLength)},
		})
	}
	if schema.Pattern != "" {
		rules = append(rules, ValidationRule{
			Kind:   ValidationRulePattern,
			Params: map[string]string{"pattern": schema.Pattern},
		})
	}
	switch schema.Format {
	case "email", "date":
		rules = append(rules, ValidationRule{
			Kind:   ValidationRuleFormat,
			Params: map[string]string{"format": schema.Format},
		})
	}
	if schema.Minimum != nil {
		params := map[string]string{"value": formatFloat(*schema.Minimum)}
		if schema.ExclusiveMinimum {
			params["exclusive"] = "true"
		}
		rules = append(rules, ValidationRule{Kind: ValidationRuleMin, Params: params})
	}
	if schema.Maximum != nil {
		params := map[string]string{"value": formatFloat(*schema.Maximum)}
		if schema.ExclusiveMaximum {
			params["exclusive"] = "true"
		}
		rules = append(rules, ValidationRule{Kind: ValidationRuleMax, Params: params})
	}
	if raw, ok := schema.Extensions[minDateExtension]; ok {
		days, err := strconv.Atoi(strings.TrimSpace(toString(raw)))
		if err != nil {
			return nil, fmt.Errorf("model builder: field %q has invalid %s: %w", field.Name, minDateExtension, err)
		}
		rules = append(rules, ValidationRule{
			Kind:   ValidationRuleMinDate,
			Params: map[string]string{"days": strconv.Itoa(days)},
		})
	}
	if len(field.Options) > 0 {
		rules = append(rules, ValidationRule{Kind: ValidationRuleOneOf})
	}

	if len(rules) == 0 {
		return nil, nil
	}
	return rules, nil
}

func checkCrossReferences(form FormModel) error {
	for _, field := range form.Fields {
		for _, target := range field.Clears {
			if _, ok := form.Field(target); !ok {
				return fmt.Errorf("model builder: field %q clears unknown field %q", field.Name, target)
			}
		}
		for _, rule := range field.Validations {
			if rule.Kind != ValidationRuleRequiredUnless {
				continue
			}
			flag, ok := form.Field(rule.Params["field"])
			if !ok {
				return fmt.Errorf("model builder: field %q depends on unknown field %q", field.Name, rule.Params["field"])
			}
			if flag.Type != FieldTypeBoolean {
				return fmt.Errorf("model builder: field %q depends on non-boolean field %q", field.Name, flag.Name)
			}
		}
	}
	return nil
}

func mapType(schemaType string) FieldType {
	switch schemaType {
	case "string", "":
		return FieldTypeString
	case "integer":
		return FieldTypeInteger
	case "number":
		return FieldTypeNumber
	case "boolean":
		return FieldTypeBoolean
	case "array":
		return FieldTypeArray
	default:
		return ""
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// metadataFromExtensions flattens scalar x-formgen-* extensions into string
// metadata keyed by the suffix (x-formgen-widget -> widget).
func metadataFromExtensions(ext map[string]any) map[string]string {
	if len(ext) == 0 {
		return nil
	}
	out := make(map[string]string)
	for key, value := range ext {
		if !strings.HasPrefix(key, extensionPrefix) {
			continue
		}
		switch key {
		case requiredUnlessExtension, clearsExtension, minDateExtension:
			continue
		}
		if str, ok := toStringValue(value); ok {
			out[strings.TrimPrefix(key, extensionPrefix)] = str
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringList(value any) ([]string, bool) {
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...), len(typed) > 0
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if str, ok := toStringValue(item); ok {
				out = append(out, str)
			}
		}
		return out, len(out) > 0
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil, false
		}
		return []string{strings.TrimSpace(typed)}, true
	default:
		return nil, false
	}
}

func toStringValue(value any) (string, bool) {
	if value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case float64:
		return formatFloat(v), true
	case fmt.Stringer:
		return v.String(), true
	case []any, map[string]any:
		return "", false
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func toString(value any) string {
	str, ok := toStringValue(value)
	if !ok {
		return ""
	}
	return str
}
