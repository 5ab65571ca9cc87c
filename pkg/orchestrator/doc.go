// Package orchestrator wires the loader → parser → model builder → decorator
// pipeline that turns the portal's OpenAPI definitions into form models.
package orchestrator
