package portal

import (
	"embed"
	"io/fs"
)

//go:embed definitions/portal.yaml definitions/ui/*.yaml
var definitions embed.FS

// DocumentName is the path of the OpenAPI document inside DefinitionsFS.
const DocumentName = "portal.yaml"

// DefinitionsFS exposes the embedded OpenAPI document and UI overlays rooted
// at the definitions directory.
func DefinitionsFS() fs.FS {
	sub, err := fs.Sub(definitions, "definitions")
	if err != nil {
		panic(err)
	}
	return sub
}

// UISchemaFS exposes only the UI overlays.
func UISchemaFS() fs.FS {
	sub, err := fs.Sub(definitions, "definitions/ui")
	if err != nil {
		panic(err)
	}
	return sub
}

// OpenAPIDocument returns the raw embedded OpenAPI document.
func OpenAPIDocument() []byte {
	data, err := definitions.ReadFile("definitions/" + DocumentName)
	if err != nil {
		panic(err)
	}
	return data
}
