package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"go.uber.org/zap"

	internalLoader "github.com/goliatone/go-formflow/internal/openapi/loader"
	internalParser "github.com/goliatone/go-formflow/internal/openapi/parser"
	"github.com/goliatone/go-formflow/pkg/model"
	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/uischema"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom OpenAPI loader.
func WithLoader(loader pkgopenapi.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithParser injects a custom OpenAPI parser.
func WithParser(parser pkgopenapi.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithModelBuilder injects a custom form model builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithUIDecorators registers decorators that run after the UI schema overlay.
func WithUIDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithUISchemaFS supplies an fs.FS holding UI schema overlays.
func WithUISchemaFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.uiSchemaFS = fsys
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates loading, parsing, building and decorating forms.
type Orchestrator struct {
	loader        pkgopenapi.Loader
	parser        pkgopenapi.Parser
	builder       model.Builder
	decorators    []model.Decorator
	uiSchemaFS    fs.FS
	overlays      *uischema.Store
	logger        *zap.Logger
	initialiseErr error
}

// New constructs an Orchestrator. Missing dependencies fall back to the
// built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request selects the document to compile. Document takes precedence over
// Source when both are set.
type Request struct {
	Source   pkgopenapi.Source
	Document *pkgopenapi.Document
}

// Compile loads the document and returns one decorated form model per
// operation with a request body, keyed by operation id.
func (o *Orchestrator) Compile(ctx context.Context, req Request) (map[string]model.FormModel, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o.initialiseErr != nil {
		return nil, o.initialiseErr
	}

	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}
	operations, err := o.parser.Operations(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse operations: %w", err)
	}

	ids := make([]string, 0, len(operations))
	for id := range operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	forms := make(map[string]model.FormModel, len(ids))
	for _, id := range ids {
		form, err := o.builder.Build(operations[id])
		if err != nil {
			return nil, fmt.Errorf("orchestrator: build form model %q: %w", id, err)
		}
		if err := model.ApplyDecorators(&form, o.decorators...); err != nil {
			return nil, fmt.Errorf("orchestrator: decorate form %q: %w", id, err)
		}
		forms[id] = form
		o.logger.Debug("form compiled",
			zap.String("operation", id),
			zap.String("endpoint", form.Endpoint),
			zap.Int("fields", len(form.Fields)),
		)
	}
	for _, id := range o.overlays.IDs() {
		if _, ok := forms[id]; !ok {
			return nil, fmt.Errorf("orchestrator: ui schema targets unknown operation %q", id)
		}
	}
	return forms, nil
}

// CompileOne compiles the document and returns the form for operationID.
func (o *Orchestrator) CompileOne(ctx context.Context, req Request, operationID string) (model.FormModel, error) {
	if operationID == "" {
		return model.FormModel{}, errors.New("orchestrator: operation id is required")
	}
	forms, err := o.Compile(ctx, req)
	if err != nil {
		return model.FormModel{}, err
	}
	form, ok := forms[operationID]
	if !ok {
		return model.FormModel{}, fmt.Errorf("orchestrator: operation %q not found", operationID)
	}
	return form, nil
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (pkgopenapi.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return pkgopenapi.Document{}, errors.New("orchestrator: source or document is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = internalLoader.New(pkgopenapi.NewLoaderOptions())
	}
	if o.parser == nil {
		o.parser = internalParser.New(pkgopenapi.NewParserOptions())
	}
	if o.builder == nil {
		o.builder = model.NewBuilder()
	}
	if o.uiSchemaFS == nil {
		return
	}

	store, err := uischema.LoadFS(o.uiSchemaFS)
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: load ui schema: %w", err)
		return
	}
	if store.Empty() {
		return
	}
	o.overlays = store
	o.decorators = append([]model.Decorator{store.Decorator()}, o.decorators...)
}
