package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
)

const contactDocument = `
openapi: 3.0.3
info:
  title: Contact
  version: 1.0.0
paths:
  /api/contact:
    get:
      operationId: contact:show
      responses:
        "200":
          description: ok
    post:
      operationId: contact:create
      summary: Send a message
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [email, message]
              properties:
                email:
                  type: string
                  format: email
                message:
                  type: string
                  minLength: 10
                  maxLength: 500
                stars:
                  type: integer
                  minimum: 1
                  maximum: 5
                  x-formgen-widget: rating
      responses:
        "202":
          description: accepted
`

func TestOperationsExtractsRequestBodies(t *testing.T) {
	doc := pkgopenapi.MustNewDocument(pkgopenapi.SourceFromFS("contact.yaml"), []byte(contactDocument))

	ops, err := New(pkgopenapi.NewParserOptions()).Operations(context.Background(), doc)
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected only the POST operation, got %d", len(ops))
	}

	op, ok := ops["contact:create"]
	if !ok {
		t.Fatalf("contact:create not extracted")
	}
	if op.Method != "POST" || op.Path != "/api/contact" || op.Summary != "Send a message" {
		t.Fatalf("unexpected operation metadata: %+v", op)
	}

	body := op.RequestBody
	if diff := cmp.Diff([]string{"email", "message"}, body.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	message := body.Properties["message"]
	if message.MinLength == nil || *message.MinLength != 10 {
		t.Fatalf("expected minLength 10, got %v", message.MinLength)
	}
	if message.MaxLength == nil || *message.MaxLength != 500 {
		t.Fatalf("expected maxLength 500, got %v", message.MaxLength)
	}
	stars := body.Properties["stars"]
	if stars.Minimum == nil || *stars.Minimum != 1 || stars.Maximum == nil || *stars.Maximum != 5 {
		t.Fatalf("unexpected numeric bounds: %+v", stars)
	}
	if stars.Extensions["x-formgen-widget"] != "rating" {
		t.Fatalf("expected x-formgen extension to survive, got %v", stars.Extensions)
	}
	if body.Properties["email"].Format != "email" {
		t.Fatalf("expected email format")
	}
}

func TestOperationsRejectsEmptyDocuments(t *testing.T) {
	doc := pkgopenapi.MustNewDocument(pkgopenapi.SourceFromFS("empty.yaml"), []byte("openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n"))

	_, err := New(pkgopenapi.NewParserOptions()).Operations(context.Background(), doc)
	if err == nil || !strings.Contains(err.Error(), "does not contain any paths") {
		t.Fatalf("expected empty paths error, got %v", err)
	}
}

func TestConvertSchemaHandlesRecursiveReferences(t *testing.T) {
	const document = `{
  "openapi": "3.0.0",
  "info": { "title": "Cycle", "version": "1.0.0" },
  "paths": {},
  "components": {
    "schemas": {
      "Building": {
        "type": "object",
        "properties": {
          "floor": { "$ref": "#/components/schemas/Floor" }
        }
      },
      "Floor": {
        "type": "object",
        "properties": {
          "building": { "$ref": "#/components/schemas/Building" }
        }
      }
    }
  }
}`

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(document))
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}

	converted := convertSchema(doc.Components.Schemas["Building"])
	floor, ok := converted.Properties["floor"]
	if !ok {
		t.Fatalf("expected floor property on Building schema")
	}
	back, ok := floor.Properties["building"]
	if !ok {
		t.Fatalf("expected building property on Floor schema")
	}
	if back.Ref == "" || len(back.Properties) != 0 {
		t.Fatalf("expected cycle to stop at a reference, got %+v", back)
	}
}
