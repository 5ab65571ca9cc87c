// Package uischema loads YAML (or JSON) overlays that add presentation and
// copy to form definitions: titles, field order, labels, placeholders, help
// text, option labels and the message shown for each validation rule. The
// OpenAPI document says what a form accepts; the overlay says how it reads.
package uischema
