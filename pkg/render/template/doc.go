// Package template defines the engine-agnostic template contract. The pongo
// subpackage provides the pongo2 implementation used by the portal.
package template
