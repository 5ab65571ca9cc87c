package formstate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-formflow/pkg/model"
)

// ErrUnknownField is returned when a write targets a field the form does not
// declare.
var ErrUnknownField = errors.New("formstate: unknown field")

// Store is the live value map for one form instance together with its active
// field errors.
type Store struct {
	mu     sync.RWMutex
	form   model.FormModel
	values model.Values
	errs   model.FieldErrors
}

// New seeds a store with the form's defaults.
func New(form model.FormModel) *Store {
	return &Store{
		form:   form,
		values: form.Defaults(),
		errs:   make(model.FieldErrors),
	}
}

// Form returns the form the store was created for.
func (s *Store) Form() model.FormModel {
	return s.form
}

// SetField overwrites one value and drops that field's error without
// re-validating. Setting a boolean field that declares Clears to true also
// resets each cleared field to its default and drops its error.
func (s *Store) SetField(name string, value any) error {
	field, ok := s.form.Field(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	value, err := Coerce(field, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(field, value)
	return nil
}

// SetFields writes several values as one update. Every name is checked and
// coerced before anything is written. Flags that clear other fields are
// applied after the rest, and fields cleared by an enabled flag end the update
// empty, so a posted form carrying the flag and a cleared field keeps the
// flag's effect whatever the input order.
func (s *Store) SetFields(values map[string]any) error {
	pending := make(map[string]any, len(values))
	for name, value := range values {
		field, ok := s.form.Field(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		coerced, err := Coerce(field, value)
		if err != nil {
			return err
		}
		pending[name] = coerced
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(pending)
	return nil
}

// applyLocked writes pending in declared order with clearing flags last, then
// re-applies every enabled flag.
func (s *Store) applyLocked(pending map[string]any) {
	var flags []model.Field
	for _, field := range s.form.Fields {
		value, ok := pending[field.Name]
		if !ok {
			continue
		}
		if len(field.Clears) > 0 {
			flags = append(flags, field)
			continue
		}
		s.setLocked(field, value)
	}
	for _, field := range flags {
		s.setLocked(field, pending[field.Name])
	}
	for _, field := range s.form.Fields {
		if on, _ := s.values[field.Name].(bool); on {
			s.clearLocked(field)
		}
	}
}

func (s *Store) setLocked(field model.Field, value any) {
	s.values[field.Name] = value
	delete(s.errs, field.Name)

	if on, _ := value.(bool); on {
		s.clearLocked(field)
	}
}

// clearLocked resets the fields flag clears and drops their errors.
func (s *Store) clearLocked(flag model.Field) {
	for _, target := range flag.Clears {
		cleared, ok := s.form.Field(target)
		if !ok {
			continue
		}
		s.values[target] = cleared.ZeroValue()
		delete(s.errs, target)
	}
}

// Value returns the current value of name, or the declared default when the
// field has not been written. Undeclared names yield nil.
func (s *Store) Value(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if value, ok := s.values[name]; ok {
		return value
	}
	if field, ok := s.form.Field(name); ok {
		return field.ZeroValue()
	}
	return nil
}

// Snapshot returns a copy of the current values.
func (s *Store) Snapshot() model.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Clone()
}

// Errors returns a copy of the active field errors.
func (s *Store) Errors() model.FieldErrors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs.Clone()
}

// SetErrors replaces the active field errors. Entries for undeclared fields are
// dropped.
func (s *Store) SetErrors(errs model.FieldErrors) {
	next := make(model.FieldErrors, len(errs))
	for name, msg := range errs {
		if _, ok := s.form.Field(name); ok && msg != "" {
			next[name] = msg
		}
	}
	s.mu.Lock()
	s.errs = next
	s.mu.Unlock()
}

// Reset restores every field to its default and clears all errors.
func (s *Store) Reset() {
	s.mu.Lock()
	s.values = s.form.Defaults()
	s.errs = make(model.FieldErrors)
	s.mu.Unlock()
}
