package model

import "fmt"

// Decorator enriches a form model after the OpenAPI-derived structure has been
// built, e.g. the UI schema overlay that supplies labels and messages.
type Decorator interface {
	Decorate(*FormModel) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormModel) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *FormModel) error {
	return fn(form)
}

// ApplyDecorators runs each decorator in order, stopping at the first error.
func ApplyDecorators(form *FormModel, decorators ...Decorator) error {
	for idx, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("model: decorator %d: %w", idx, err)
		}
	}
	return nil
}
