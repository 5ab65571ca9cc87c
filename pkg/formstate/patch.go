package formstate

import (
	"encoding/json"
	"fmt"
	"reflect"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyPatch applies an RFC 6902 patch to the current values. Changed keys are
// written with the same ordering as SetFields, so a clearing flag wins. The
// patch is rejected as a whole when it touches an undeclared field.
func (s *Store) ApplyPatch(patchJSON []byte) error {
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return fmt.Errorf("formstate: decode patch: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	currentJSON, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("formstate: marshal values: %w", err)
	}
	modifiedJSON, err := patch.Apply(currentJSON)
	if err != nil {
		return fmt.Errorf("formstate: apply patch: %w", err)
	}

	var next map[string]any
	if err := json.Unmarshal(modifiedJSON, &next); err != nil {
		return fmt.Errorf("formstate: patch result is not an object: %w", err)
	}

	pending := make(map[string]any)
	for name, value := range next {
		field, ok := s.form.Field(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		if reflect.DeepEqual(jsonShape(s.values[name]), value) {
			continue
		}
		coerced, err := Coerce(field, value)
		if err != nil {
			return err
		}
		pending[name] = coerced
	}
	for _, field := range s.form.Fields {
		if _, kept := next[field.Name]; !kept {
			pending[field.Name] = field.ZeroValue()
		}
	}
	s.applyLocked(pending)
	return nil
}

// jsonShape maps a stored value onto the shape encoding/json decodes it into
// so unchanged keys are recognised.
func jsonShape(value any) any {
	data, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return value
	}
	return out
}
