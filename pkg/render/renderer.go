package render

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/goliatone/go-formflow/pkg/render/template"
	"github.com/goliatone/go-formflow/pkg/render/template/pongo"
)

// SiteName is the brand shown in every page header.
const SiteName = "Facility Services Portal"

// Template names of the built-in pages.
const (
	PageHome      = "home"
	PageForm      = "form"
	PageChat      = "chat"
	PageRewards   = "rewards"
	PageDashboard = "dashboard"
	PageImpact    = "impact"
	PageNotFound  = "not_found"
)

// Option customises a Renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
	templates  template.Renderer
	components *Components
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template engine.
func WithTemplateRenderer(renderer template.Renderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templates = renderer
		}
	}
}

// WithComponents replaces the field component registry.
func WithComponents(components *Components) Option {
	return func(cfg *config) {
		if components != nil {
			cfg.components = components
		}
	}
}

// NavLink is one header navigation entry.
type NavLink struct {
	Path   string `json:"path"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Chrome carries the per-page header data.
type Chrome struct {
	Title string    `json:"title"`
	Path  string    `json:"path"`
	Nav   []NavLink `json:"nav"`
	// Refresh asks the browser to reload after this many seconds.
	Refresh int `json:"refresh,omitempty"`
}

// Renderer draws portal pages as HTML.
type Renderer struct {
	templates  template.Renderer
	components *Components
}

// New constructs a Renderer over the embedded templates unless options say
// otherwise.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.components == nil {
		cfg.components = DefaultComponents()
	}

	renderer := cfg.templates
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
			pongo.WithGlobalData(map[string]any{
				"site": map[string]any{"name": SiteName},
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("render: configure template renderer: %w", err)
		}
		renderer = engine
	}
	return &Renderer{templates: renderer, components: cfg.components}, nil
}

// ContentType is the media type of everything the renderer writes.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Page renders a named page template with arbitrary data exposed as "data".
func (r *Renderer) Page(w io.Writer, name string, chrome Chrome, data any) error {
	if _, err := r.templates.RenderTemplate(name, map[string]any{
		"page": chrome,
		"data": data,
	}, w); err != nil {
		return fmt.Errorf("render: page %q: %w", name, err)
	}
	return nil
}

// Form renders a form page.
func (r *Renderer) Form(w io.Writer, chrome Chrome, state FormState) error {
	view, err := r.FormView(state)
	if err != nil {
		return err
	}
	if view.Busy && chrome.Refresh == 0 {
		chrome.Refresh = 1
	}
	if _, err := r.templates.RenderTemplate(PageForm, map[string]any{
		"page": chrome,
		"form": view,
	}, w); err != nil {
		return fmt.Errorf("render: form %q: %w", state.Form.OperationID, err)
	}
	return nil
}

// FormView builds the view and resolves each field's component template.
func (r *Renderer) FormView(state FormState) (FormView, error) {
	view := NewFormView(state)
	for i := range view.Fields {
		tpl, ok := r.components.Template(view.Fields[i].Component)
		if !ok {
			return FormView{}, fmt.Errorf("render: component %q not registered for field %q", view.Fields[i].Component, view.Fields[i].Name)
		}
		view.Fields[i].Template = tpl
	}
	return view, nil
}
