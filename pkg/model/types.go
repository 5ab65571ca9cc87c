package model

import internalmodel "github.com/goliatone/go-formflow/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeString  = internalmodel.FieldTypeString
	FieldTypeInteger = internalmodel.FieldTypeInteger
	FieldTypeNumber  = internalmodel.FieldTypeNumber
	FieldTypeBoolean = internalmodel.FieldTypeBoolean
	FieldTypeArray   = internalmodel.FieldTypeArray
)

const (
	ValidationRuleRequired       = internalmodel.ValidationRuleRequired
	ValidationRuleRequiredUnless = internalmodel.ValidationRuleRequiredUnless
	ValidationRuleMinLength      = internalmodel.ValidationRuleMinLength
	ValidationRuleMaxLength      = internalmodel.ValidationRuleMaxLength
	ValidationRulePattern        = internalmodel.ValidationRulePattern
	ValidationRuleFormat         = internalmodel.ValidationRuleFormat
	ValidationRuleMin            = internalmodel.ValidationRuleMin
	ValidationRuleMax            = internalmodel.ValidationRuleMax
	ValidationRuleMinDate        = internalmodel.ValidationRuleMinDate
	ValidationRuleOneOf          = internalmodel.ValidationRuleOneOf
)

type ValidationRule = internalmodel.ValidationRule
type Option = internalmodel.Option
type Field = internalmodel.Field
type FormModel = internalmodel.FormModel
type Values = internalmodel.Values
type FieldErrors = internalmodel.FieldErrors

// DefaultLabeler exposes the label generator used by the builder.
func DefaultLabeler(name string) string {
	return internalmodel.DefaultLabeler(name)
}
