package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formflow/pkg/model"
)

// DateLayout is the wire format of date fields.
const DateLayout = "2006-01-02"

// Custom tags registered on every Validator's engine.
const (
	tagMinDate = "mindate"
	tagPattern = "pattern"
	tagOption  = "option"
)

// Validator checks a set of values against the rules declared on a form.
// Each rule is compiled into one validator/v10 tag; the ordering, the
// first-failure short circuit and the messages stay here. It holds no
// per-call state and is safe for concurrent use.
type Validator struct {
	form     model.FormModel
	now      func() time.Time
	engine   *validator.Validate
	patterns []*regexp.Regexp
	rules    map[string][]compiledRule
}

// compiledRule is a rule with its validator tag and the value shape the tag
// expects. An empty tag always passes.
type compiledRule struct {
	model.ValidationRule
	tag     string
	prepare func(any) (any, bool)
}

// Option customises a Validator.
type Option func(*Validator)

// WithNow overrides the clock used for relative date rules.
func WithNow(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// New prepares a Validator for form. Rules are compiled up front so a
// malformed pattern fails here rather than on every keystroke.
func New(form model.FormModel, opts ...Option) (*Validator, error) {
	v := &Validator{
		form:   form,
		now:    time.Now,
		engine: validator.New(),
		rules:  make(map[string][]compiledRule, len(form.Fields)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	custom := map[string]validator.Func{
		tagMinDate: v.onOrAfter,
		tagPattern: v.matches,
		tagOption:  v.isOption,
	}
	for tag, fn := range custom {
		if err := v.engine.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("validation: register %s: %w", tag, err)
		}
	}
	for _, field := range form.Fields {
		compiled := make([]compiledRule, 0, len(field.Validations))
		for _, rule := range field.Validations {
			c, err := v.compile(field, rule)
			if err != nil {
				return nil, fmt.Errorf("validation: field %q: %w", field.Name, err)
			}
			compiled = append(compiled, c)
		}
		v.rules[field.Name] = compiled
	}
	return v, nil
}

// compile maps one rule onto a validator tag. Rules whose parameters do not
// parse compile to an empty tag and never fail.
func (v *Validator) compile(field model.Field, rule model.ValidationRule) (compiledRule, error) {
	c := compiledRule{ValidationRule: rule, prepare: asText}
	switch rule.Kind {
	case model.ValidationRuleMinLength, model.ValidationRuleMaxLength:
		if _, err := strconv.Atoi(rule.Params["value"]); err != nil {
			return c, nil
		}
		op := "min"
		if rule.Kind == model.ValidationRuleMaxLength {
			op = "max"
		}
		c.tag = op + "=" + rule.Params["value"]
		c.prepare = asSized
	case model.ValidationRuleMin, model.ValidationRuleMax:
		if _, err := strconv.ParseFloat(rule.Params["value"], 64); err != nil {
			return c, nil
		}
		op := "gte"
		if rule.Kind == model.ValidationRuleMax {
			op = "lte"
		}
		if rule.Params["exclusive"] == "true" {
			op = strings.TrimSuffix(op, "e")
		}
		c.tag = op + "=" + rule.Params["value"]
		c.prepare = asNumber
	case model.ValidationRuleFormat:
		switch rule.Params["format"] {
		case "email":
			c.tag = "email"
		case "date":
			c.tag = "datetime=" + DateLayout
		}
	case model.ValidationRulePattern:
		re, err := regexp.Compile(rule.Params["pattern"])
		if err != nil {
			return c, fmt.Errorf("compile pattern: %w", err)
		}
		v.patterns = append(v.patterns, re)
		c.tag = tagPattern + "=" + strconv.Itoa(len(v.patterns)-1)
		c.prepare = asRaw
	case model.ValidationRuleMinDate:
		if _, err := strconv.Atoi(rule.Params["days"]); err != nil {
			return c, nil
		}
		c.tag = tagMinDate + "=" + rule.Params["days"]
	case model.ValidationRuleOneOf:
		c.tag = tagOption + "=" + field.Name
		c.prepare = asRaw
	}
	return c, nil
}

// Form returns the form the validator was built for.
func (v *Validator) Form() model.FormModel {
	return v.form
}

// Validate evaluates every field independently and returns one message per
// failing field. The input is never modified. An empty map means the values
// are valid.
func (v *Validator) Validate(values model.Values) model.FieldErrors {
	errs := make(model.FieldErrors)
	for _, field := range v.form.Fields {
		if msg, failed := v.check(field, values); failed {
			errs[field.Name] = msg
		}
	}
	return errs
}

// ValidateField evaluates a single field. It reports false for undeclared
// names.
func (v *Validator) ValidateField(name string, values model.Values) (string, bool) {
	field, ok := v.form.Field(name)
	if !ok {
		return "", false
	}
	return v.check(field, values)
}

func (v *Validator) check(field model.Field, values model.Values) (string, bool) {
	value, present := values[field.Name]
	if !present {
		value = field.ZeroValue()
	}
	empty := isEmpty(field, value)

	for _, rule := range v.rules[field.Name] {
		switch rule.Kind {
		case model.ValidationRuleRequired:
			if empty {
				return messageFor(field, rule.ValidationRule), true
			}
			continue
		case model.ValidationRuleRequiredUnless:
			if empty && !truthy(values[rule.Params["field"]]) {
				return messageFor(field, rule.ValidationRule), true
			}
			continue
		}
		if empty || rule.tag == "" {
			continue
		}
		if !v.passes(rule, value) {
			return messageFor(field, rule.ValidationRule), true
		}
	}
	return "", false
}

func (v *Validator) passes(rule compiledRule, value any) bool {
	prepared, ok := rule.prepare(value)
	if !ok {
		return false
	}
	return v.engine.Var(prepared, rule.tag) == nil
}

// onOrAfter backs the mindate tag: the date must fall on or after today
// plus the tag's day offset, in the clock's location.
func (v *Validator) onOrAfter(fl validator.FieldLevel) bool {
	days, err := strconv.Atoi(fl.Param())
	if err != nil {
		return true
	}
	now := v.now()
	date, err := time.ParseInLocation(DateLayout, fl.Field().String(), now.Location())
	if err != nil {
		return false
	}
	earliest := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, days)
	return !date.Before(earliest)
}

// matches backs the pattern tag; the param indexes the compiled patterns.
func (v *Validator) matches(fl validator.FieldLevel) bool {
	index, err := strconv.Atoi(fl.Param())
	if err != nil || index < 0 || index >= len(v.patterns) {
		return true
	}
	return v.patterns[index].MatchString(fl.Field().String())
}

// isOption backs the option tag: the value must equal one of the named
// field's option values.
func (v *Validator) isOption(fl validator.FieldLevel) bool {
	field, ok := v.form.Field(fl.Param())
	if !ok {
		return true
	}
	key := fl.Field().String()
	for _, opt := range field.Options {
		if stringValue(opt.Value) == key {
			return true
		}
	}
	return false
}

func asText(value any) (any, bool) {
	return strings.TrimSpace(stringValue(value)), true
}

func asRaw(value any) (any, bool) {
	return stringValue(value), true
}

// asSized keeps lists as lists so length rules count items.
func asSized(value any) (any, bool) {
	switch typed := value.(type) {
	case []any, []string:
		return typed, true
	}
	return asText(value)
}

func asNumber(value any) (any, bool) {
	number, ok := toFloat(value)
	return number, ok
}

func messageFor(field model.Field, rule model.ValidationRule) string {
	if rule.Message != "" {
		return rule.Message
	}
	label := field.Label
	if label == "" {
		label = model.DefaultLabeler(field.Name)
	}
	switch rule.Kind {
	case model.ValidationRuleRequired, model.ValidationRuleRequiredUnless:
		return label + " is required"
	case model.ValidationRuleMinLength:
		return fmt.Sprintf("%s must be at least %s characters", label, rule.Params["value"])
	case model.ValidationRuleMaxLength:
		return fmt.Sprintf("%s must be at most %s characters", label, rule.Params["value"])
	case model.ValidationRulePattern:
		return label + " has an invalid format"
	case model.ValidationRuleFormat:
		if rule.Params["format"] == "email" {
			return "Please enter a valid email address"
		}
		return "Please enter a valid date"
	case model.ValidationRuleMin:
		return fmt.Sprintf("%s must be at least %s", label, rule.Params["value"])
	case model.ValidationRuleMax:
		return fmt.Sprintf("%s must be at most %s", label, rule.Params["value"])
	case model.ValidationRuleMinDate:
		return label + " is too early"
	case model.ValidationRuleOneOf:
		return "Please select a valid " + strings.ToLower(label)
	default:
		return label + " is invalid"
	}
}

// isEmpty reports whether a value counts as missing. A number field with a
// fixed option set is empty while it holds a value outside that set, which is
// how an unselected rating looks.
func isEmpty(field model.Field, value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	}
	if field.Type == model.FieldTypeInteger || field.Type == model.FieldTypeNumber {
		number, ok := toFloat(value)
		if !ok {
			return false
		}
		if number == 0 && len(field.Options) > 0 {
			for _, opt := range field.Options {
				if candidate, ok := toFloat(opt.Value); ok && candidate == 0 {
					return false
				}
			}
			return true
		}
	}
	return false
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		return err == nil && parsed || strings.EqualFold(strings.TrimSpace(typed), "on")
	default:
		return false
	}
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		if f, ok := toFloat(value); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return fmt.Sprint(value)
	}
}
