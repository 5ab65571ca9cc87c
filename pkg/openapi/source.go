package openapi

import (
	"path/filepath"
	"strings"
)

type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }

func (s source) Location() string { return s.location }

func (s source) String() string { return string(s.kind) + ":" + s.location }

// SourceFromFile points at a definition document on disk.
func SourceFromFile(path string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS names a document inside the loader's fs.FS. Leading slashes
// are dropped since fs.FS paths are always relative.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: strings.TrimLeft(name, "/")}
}
