// Package fieldoptions serves the choices of a form field as JSON so
// browsers can filter long option lists while the user types.
//
// The handler responds to GET and HEAD requests and supports query and limit
// parameters. Choices come from a Source, usually the compiled form model.
package fieldoptions
