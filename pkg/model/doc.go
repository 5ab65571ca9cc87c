// Package model defines the typed form model shared by the validator, the
// field store, the submission controller and the renderers. Builders reside
// in internal/model but return the types defined here.
//
// Validation rules carry canonical kinds (required, requiredUnless,
// minLength/maxLength, pattern, format, min/max, minDate, oneOf) with string
// parameters so they survive JSON snapshots unchanged. A field's rules are
// ordered; validators stop at the first failure.
package model
