package attachments

import (
	"sync"

	"github.com/google/uuid"
)

// Previews maps transient display handles to accepted files. Handles live in
// memory only and disappear when the file is removed or its intake released.
type Previews struct {
	mu      sync.RWMutex
	entries map[string]File
}

// NewPreviews returns an empty registry.
func NewPreviews() *Previews {
	return &Previews{entries: make(map[string]File)}
}

func (p *Previews) register(file File) string {
	handle := uuid.NewString()
	file.Preview = handle
	p.mu.Lock()
	p.entries[handle] = file
	p.mu.Unlock()
	return handle
}

// Lookup resolves a handle.
func (p *Previews) Lookup(handle string) (File, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	file, ok := p.entries[handle]
	return file, ok
}

// Revoke invalidates a handle.
func (p *Previews) Revoke(handle string) {
	p.mu.Lock()
	delete(p.entries, handle)
	p.mu.Unlock()
}

// Len reports the number of live handles.
func (p *Previews) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
