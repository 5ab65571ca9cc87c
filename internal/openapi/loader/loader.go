package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
)

// Loader reads form definition documents from disk or from an fs.FS such as
// the embedded portal definitions.
type Loader struct {
	fs fs.FS
}

var _ pkgopenapi.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options pkgopenapi.LoaderOptions) pkgopenapi.Loader {
	return &Loader{fs: options.FileSystem}
}

// Load reads the source and wraps it in a Document. Empty documents are
// rejected before parsing so the error names the file.
func (l *Loader) Load(ctx context.Context, src pkgopenapi.Source) (pkgopenapi.Document, error) {
	if src == nil {
		return pkgopenapi.Document{}, errors.New("openapi loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return pkgopenapi.Document{}, err
	}
	name := src.Location()
	if name == "" {
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: %s source has no location", src.Kind())
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case pkgopenapi.SourceKindFile:
		data, err = os.ReadFile(name)
	case pkgopenapi.SourceKindFS:
		if l.fs == nil {
			return pkgopenapi.Document{}, errors.New("openapi loader: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, strings.TrimPrefix(name, "/"))
	default:
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: %s is empty", name)
	}
	return pkgopenapi.NewDocument(src, data)
}
