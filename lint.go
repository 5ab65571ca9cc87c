package formflow

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	internalmodel "github.com/goliatone/go-formflow/internal/model"
	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
)

const extensionNamespace = "x-formgen"

// Violation is one problem found in a form definition.
type Violation struct {
	File     string
	Location string
	Message  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s -> %s", v.File, v.Location, v.Message)
}

// Lint checks the x-formgen extensions of every operation in doc and then
// compiles the forms so builder errors and overlay mismatches surface too.
// uiFS may be nil when there are no overlays. Violations are sorted.
func Lint(ctx context.Context, doc pkgopenapi.Document, uiFS fs.FS) ([]Violation, error) {
	parser := NewParser()
	operations, err := parser.Operations(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("lint: parse operations: %w", err)
	}

	file := doc.Location()
	var result []Violation
	for id, op := range operations {
		base := []string{"operation", id}
		result = append(result, lintExtensions(file, base, op.Extensions)...)
		result = append(result, lintSchema(file, append(base, "requestBody"), op.RequestBody)...)
	}

	if len(result) == 0 {
		opts := []orchestrator.Option{orchestrator.WithParser(parser)}
		if uiFS != nil {
			opts = append(opts, orchestrator.WithUISchemaFS(uiFS))
		}
		if _, err := orchestrator.New(opts...).Compile(ctx, orchestrator.Request{Document: &doc}); err != nil {
			result = append(result, Violation{File: file, Location: "document", Message: err.Error()})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].File == result[j].File {
			if result[i].Location == result[j].Location {
				return result[i].Message < result[j].Message
			}
			return result[i].Location < result[j].Location
		}
		return result[i].File < result[j].File
	})
	return result, nil
}

func lintSchema(file string, path []string, schema pkgopenapi.Schema) []Violation {
	var result []Violation
	if len(schema.Extensions) > 0 {
		result = append(result, lintExtensions(file, path, schema.Extensions)...)
	}

	keys := make([]string, 0, len(schema.Properties))
	for key := range schema.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		result = append(result, lintSchema(file, appendPath(path, "properties."+key), schema.Properties[key])...)
	}

	if schema.Items != nil {
		result = append(result, lintSchema(file, appendPath(path, "items"), *schema.Items)...)
	}
	return result
}

func lintExtensions(file string, path []string, extensions map[string]any) []Violation {
	keys := make([]string, 0, len(extensions))
	for key := range extensions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var result []Violation
	for _, key := range keys {
		switch {
		case key == extensionNamespace:
			result = append(result, Violation{
				File:     file,
				Location: formatLocation(path),
				Message:  fmt.Sprintf("use %s-<key> extensions instead of a %s object", extensionNamespace, extensionNamespace),
			})
		case strings.HasPrefix(key, extensionNamespace+"-"):
			trimmed := strings.TrimPrefix(key, extensionNamespace+"-")
			result = append(result, validateExtension(file, path, trimmed, extensions[key])...)
		}
	}
	return result
}

func validateExtension(file string, path []string, key string, value any) []Violation {
	location := formatLocation(path)
	if !internalmodel.IsKnownExtension(key) {
		return []Violation{{
			File:     file,
			Location: location,
			Message:  fmt.Sprintf("unsupported extension key %q (supported: %s)", key, strings.Join(internalmodel.ExtensionKeys(), ", ")),
		}}
	}
	if msg := internalmodel.CheckExtensionValue(key, value); msg != "" {
		return []Violation{{
			File:     file,
			Location: location,
			Message:  fmt.Sprintf("%s-%s %s", extensionNamespace, key, msg),
		}}
	}
	return nil
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	return append(next, segment)
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
