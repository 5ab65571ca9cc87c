package template

import (
	"io"
)

// Renderer is the template engine contract page renderers depend on.
// Implementations return the rendered output and also stream it to any
// writers supplied.
type Renderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}
