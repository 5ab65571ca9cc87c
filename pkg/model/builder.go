package model

import (
	"github.com/goliatone/go-formflow/internal/model"
	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
)

// Builder turns a parsed operation into a FormModel.
type Builder interface {
	Build(op pkgopenapi.Operation) (FormModel, error)
}

// BuilderOption configures NewBuilder.
type BuilderOption func(*model.Options)

// WithLabeler replaces DefaultLabeler for fields no overlay labels.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *model.Options) {
		opts.Labeler = labeler
	}
}

// NewBuilder returns the builder the orchestrator uses by default.
func NewBuilder(options ...BuilderOption) Builder {
	var opts model.Options
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	return model.New(opts)
}
