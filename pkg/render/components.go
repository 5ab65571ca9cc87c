package render

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Canonical component names.
const (
	ComponentInput    = "input"
	ComponentTextarea = "textarea"
	ComponentSelect   = "select"
	ComponentRadio    = "radio"
	ComponentRating   = "rating"
	ComponentToggle   = "toggle"
)

// Components maps component names to the template that draws them.
type Components struct {
	mu        sync.RWMutex
	templates map[string]string
}

// NewComponents creates an empty registry.
func NewComponents() *Components {
	return &Components{templates: make(map[string]string)}
}

// DefaultComponents returns a registry holding the built-in field templates.
func DefaultComponents() *Components {
	c := NewComponents()
	for _, name := range []string{ComponentInput, ComponentTextarea, ComponentSelect, ComponentRadio, ComponentRating, ComponentToggle} {
		c.MustRegister(name, "components/"+name+".tmpl")
	}
	return c
}

// Register binds name to a template path. Existing entries are replaced.
func (c *Components) Register(name, template string) error {
	name = normalize(name)
	if name == "" {
		return fmt.Errorf("render: component name is required")
	}
	if strings.TrimSpace(template) == "" {
		return fmt.Errorf("render: template for component %q is required", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates[name] = strings.TrimSpace(template)
	return nil
}

// MustRegister mirrors Register but panics on error.
func (c *Components) MustRegister(name, template string) {
	if err := c.Register(name, template); err != nil {
		panic(err)
	}
}

// Template returns the template registered for name.
func (c *Components) Template(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tpl, ok := c.templates[normalize(name)]
	return tpl, ok
}

// Names returns the registered component names in sorted order.
func (c *Components) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// resolveComponent picks the component and HTML input type for a field. An
// explicit widget hint wins; otherwise the field's type and options decide.
func resolveComponent(field model.Field) (component, inputType string) {
	switch widget := normalize(field.Metadata["widget"]); widget {
	case ComponentTextarea, ComponentRadio, ComponentRating, ComponentToggle, ComponentSelect:
		return widget, ""
	case "email", "tel", "date", "number", "url":
		return ComponentInput, widget
	}

	switch {
	case field.Type == model.FieldTypeBoolean:
		return ComponentToggle, ""
	case len(field.Options) > 0:
		return ComponentSelect, ""
	case field.Format == "date":
		return ComponentInput, "date"
	case field.Format == "email":
		return ComponentInput, "email"
	case field.Type == model.FieldTypeInteger || field.Type == model.FieldTypeNumber:
		return ComponentInput, "number"
	}
	return ComponentInput, "text"
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
