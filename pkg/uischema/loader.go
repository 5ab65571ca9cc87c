package uischema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFS walks the provided filesystem and parses JSON/YAML UI schema files.
// When fsys is nil or no schema files are present, the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{operations: make(map[string]Operation)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for opID, raw := range doc.Operations {
			id := strings.TrimSpace(opID)
			if id == "" {
				return fmt.Errorf("uischema: file %s defines an empty operation id", path)
			}
			if _, exists := store.operations[id]; exists {
				return fmt.Errorf("uischema: duplicate operation %q (file %s)", id, path)
			}
			op, err := normaliseOperation(raw, id, path)
			if err != nil {
				return err
			}
			store.operations[id] = op
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Operation returns the configuration for the supplied operation id.
func (s *Store) Operation(id string) (Operation, bool) {
	if s == nil {
		return Operation{}, false
	}
	op, ok := s.operations[id]
	return op, ok
}

// IDs lists the operations in the store in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.operations))
	for id := range s.operations {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the store holds any operations.
func (s *Store) Empty() bool {
	return s == nil || len(s.operations) == 0
}

type documentFile struct {
	Operations map[string]operationFile `json:"operations" yaml:"operations"`
}

type operationFile struct {
	Title   string                 `json:"title" yaml:"title"`
	Summary string                 `json:"summary" yaml:"summary"`
	Success string                 `json:"success" yaml:"success"`
	Order   []string               `json:"order" yaml:"order"`
	Fields  map[string]FieldConfig `json:"fields" yaml:"fields"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("uischema: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("uischema: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("uischema: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseOperation(raw operationFile, id, source string) (Operation, error) {
	op := Operation{
		ID:      id,
		Source:  source,
		Title:   strings.TrimSpace(raw.Title),
		Summary: strings.TrimSpace(raw.Summary),
		Success: strings.TrimSpace(raw.Success),
		Fields:  make(map[string]FieldConfig, len(raw.Fields)),
	}

	seen := make(map[string]struct{}, len(raw.Order))
	for idx, name := range raw.Order {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return Operation{}, fmt.Errorf("uischema: operation %q (file %s) has an empty order entry at index %d", id, source, idx)
		}
		if _, dup := seen[trimmed]; dup {
			return Operation{}, fmt.Errorf("uischema: operation %q (file %s) lists %q twice in order", id, source, trimmed)
		}
		seen[trimmed] = struct{}{}
		op.Order = append(op.Order, trimmed)
	}

	for key, cfg := range raw.Fields {
		name := strings.TrimSpace(key)
		if name == "" {
			return Operation{}, fmt.Errorf("uischema: operation %q (file %s) has an empty field key", id, source)
		}
		op.Fields[name] = cloneFieldConfig(cfg)
	}

	return op, nil
}

func cloneFieldConfig(cfg FieldConfig) FieldConfig {
	out := cfg
	if len(cfg.Options) > 0 {
		out.Options = append([]OptionConfig(nil), cfg.Options...)
	}
	if len(cfg.Messages) > 0 {
		out.Messages = make(map[string]string, len(cfg.Messages))
		for k, v := range cfg.Messages {
			out.Messages[k] = v
		}
	}
	return out
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
