// Package openapi exposes the public contracts for parsing the portal's form
// definitions. Forms are described as request bodies of POST operations in an
// OpenAPI 3 document; the kin-openapi backed implementation lives under
// internal/openapi so consumers never touch kin-openapi types directly.
package openapi
