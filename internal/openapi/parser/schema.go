package parser

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
)

const extensionNamespace = "x-formgen"

func convertSchema(ref *openapi3.SchemaRef) pkgopenapi.Schema {
	return convertSchemaSeen(ref, make(map[*openapi3.Schema]struct{}))
}

func convertSchemaSeen(ref *openapi3.SchemaRef, seen map[*openapi3.Schema]struct{}) pkgopenapi.Schema {
	if ref == nil {
		return pkgopenapi.Schema{}
	}
	if ref.Value == nil {
		return pkgopenapi.Schema{Ref: ref.Ref}
	}
	src := ref.Value
	if _, ok := seen[src]; ok {
		// Cycle: keep the reference and stop descending.
		return pkgopenapi.Schema{Ref: ref.Ref, Type: firstSchemaType(src.Type)}
	}
	seen[src] = struct{}{}
	defer delete(seen, src)

	schema := pkgopenapi.Schema{
		Ref:              ref.Ref,
		Type:             firstSchemaType(src.Type),
		Format:           src.Format,
		Description:      src.Description,
		Default:          src.Default,
		Pattern:          src.Pattern,
		ExclusiveMinimum: src.ExclusiveMin,
		ExclusiveMaximum: src.ExclusiveMax,
		Extensions:       extractExtensions(src.Extensions),
	}

	if len(src.Required) > 0 {
		schema.Required = append([]string(nil), src.Required...)
	}
	if len(src.Enum) > 0 {
		schema.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Properties) > 0 {
		schema.Properties = make(map[string]pkgopenapi.Schema, len(src.Properties))
		for name, property := range src.Properties {
			schema.Properties[name] = convertSchemaSeen(property, seen)
		}
	}
	if src.Items != nil {
		items := convertSchemaSeen(src.Items, seen)
		schema.Items = &items
	}
	if src.Min != nil {
		value := *src.Min
		schema.Minimum = &value
	}
	if src.Max != nil {
		value := *src.Max
		schema.Maximum = &value
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		schema.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		schema.MaxLength = &value
	}
	return schema
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values, ",")
	}
}

// extractExtensions keeps only the x-formgen namespace; everything else in the
// document is irrelevant to form building.
func extractExtensions(raw map[string]any) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	result := make(map[string]any)
	for key, value := range raw {
		if key == extensionNamespace || strings.HasPrefix(key, extensionNamespace+"-") {
			result[key] = value
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
