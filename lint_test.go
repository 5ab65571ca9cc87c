package formflow_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow"
	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/portal"
)

func TestLintPortalDefinitionsAreClean(t *testing.T) {
	doc, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFS(portal.DocumentName), portal.OpenAPIDocument())
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	violations, err := formflow.Lint(context.Background(), doc, portal.UISchemaFS())
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}

const brokenDefinition = `openapi: 3.0.3
info:
  title: Parking
  version: 1.0.0
paths:
  /api/parking:
    post:
      operationId: createPermit
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                plate:
                  type: string
                  x-formgen-colour: red
                start:
                  type: string
                  format: date
                  x-formgen-min-date: soon
      responses:
        '202':
          description: ok
`

func TestLintReportsUnknownAndMalformedExtensions(t *testing.T) {
	doc, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFile("parking.yaml"), []byte(brokenDefinition))
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	violations, err := formflow.Lint(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}

	var got []string
	for _, v := range violations {
		got = append(got, v.Location+": "+v.Message)
	}
	want := []string{
		`operation > createPermit > requestBody > properties.plate: unsupported extension key "colour" (supported: clears, min-date, required-unless, widget)`,
		`operation > createPermit > requestBody > properties.start: x-formgen-min-date must be a whole number of days`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}
