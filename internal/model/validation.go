package model

import (
	"errors"
	"fmt"

	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
)

var (
	errOperationIDMissing     = errors.New("model builder: operation id is required")
	errOperationPathMissing   = errors.New("model builder: operation path is required")
	errOperationMethodMissing = errors.New("model builder: operation method is required")
)

func validateOperation(op pkgopenapi.Operation) error {
	if op.ID == "" {
		return errOperationIDMissing
	}
	if op.Path == "" {
		return errOperationPathMissing
	}
	if op.Method == "" {
		return errOperationMethodMissing
	}
	if err := validateBody(op.RequestBody); err != nil {
		return fmt.Errorf("model builder: invalid request body: %w", err)
	}
	return nil
}

func validateBody(schema pkgopenapi.Schema) error {
	if schema.Type != "" && schema.Type != "object" {
		return fmt.Errorf("request body must be an object, got %q", schema.Type)
	}
	if len(schema.Properties) == 0 {
		return errors.New("request body declares no properties")
	}
	for name, property := range schema.Properties {
		if property.Type == "object" {
			return fmt.Errorf("nested object field %q is not supported", name)
		}
		if property.Type == "array" && property.Items == nil {
			return fmt.Errorf("array field %q requires items", name)
		}
	}
	return nil
}
