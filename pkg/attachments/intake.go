package attachments

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

const (
	DefaultMaxFiles = 5
	DefaultMaxBytes = 5 << 20
)

// DefaultAllowedTypes lists the image types accepted out of the box.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ErrIndexOutOfRange is returned by RemoveFile for an index outside the list.
var ErrIndexOutOfRange = errors.New("attachments: index out of range")

// File is one candidate or accepted attachment.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
	Preview     string `json:"preview,omitempty"`
}

// Reason explains why a candidate was not accepted.
type Reason string

const (
	ReasonType    Reason = "type"
	ReasonSize    Reason = "size"
	ReasonOverCap Reason = "over-cap"
)

// Rejection records a dropped candidate.
type Rejection struct {
	Name   string `json:"name"`
	Reason Reason `json:"reason"`
}

// Intake keeps the ordered list of accepted attachments for one form instance.
type Intake struct {
	mu       sync.Mutex
	maxFiles int
	maxBytes int64
	allowed  map[string]struct{}
	previews *Previews
	files    []File
}

// Option customises an Intake.
type Option func(*Intake)

// WithMaxFiles caps the list length.
func WithMaxFiles(n int) Option {
	return func(in *Intake) {
		if n > 0 {
			in.maxFiles = n
		}
	}
}

// WithMaxBytes sets the per-file size ceiling.
func WithMaxBytes(n int64) Option {
	return func(in *Intake) {
		if n > 0 {
			in.maxBytes = n
		}
	}
}

// WithAllowedTypes replaces the content-type allow-list.
func WithAllowedTypes(types ...string) Option {
	return func(in *Intake) {
		if len(types) == 0 {
			return
		}
		in.allowed = make(map[string]struct{}, len(types))
		for _, t := range types {
			in.allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
		}
	}
}

// WithPreviews registers a preview handle for every accepted file.
func WithPreviews(previews *Previews) Option {
	return func(in *Intake) {
		in.previews = previews
	}
}

// NewIntake returns an empty intake.
func NewIntake(opts ...Option) *Intake {
	in := &Intake{
		maxFiles: DefaultMaxFiles,
		maxBytes: DefaultMaxBytes,
	}
	WithAllowedTypes(DefaultAllowedTypes...)(in)
	for _, opt := range opts {
		if opt != nil {
			opt(in)
		}
	}
	return in
}

// AddFiles filters candidates by type and size, appends the survivors and
// truncates the list to the cap, keeping the earliest entries. Dropped
// candidates are returned in offered order.
func (in *Intake) AddFiles(candidates []File) []Rejection {
	in.mu.Lock()
	defer in.mu.Unlock()

	var rejected []Rejection
	for _, candidate := range candidates {
		file := normalise(candidate)
		if _, ok := in.allowed[file.ContentType]; !ok {
			rejected = append(rejected, Rejection{Name: file.Name, Reason: ReasonType})
			continue
		}
		if file.Size > in.maxBytes {
			rejected = append(rejected, Rejection{Name: file.Name, Reason: ReasonSize})
			continue
		}
		if len(in.files) >= in.maxFiles {
			rejected = append(rejected, Rejection{Name: file.Name, Reason: ReasonOverCap})
			continue
		}
		if in.previews != nil {
			file.Preview = in.previews.register(file)
		}
		in.files = append(in.files, file)
	}
	return rejected
}

// RemoveFile deletes the entry at index and revokes its preview handle.
func (in *Intake) RemoveFile(index int) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if index < 0 || index >= len(in.files) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(in.files))
	}
	in.revoke(in.files[index])
	in.files = append(in.files[:index], in.files[index+1:]...)
	return nil
}

// Files returns a copy of the accepted list.
func (in *Intake) Files() []File {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]File, len(in.files))
	copy(out, in.files)
	return out
}

// Len reports how many files are accepted.
func (in *Intake) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.files)
}

// MaxFiles reports the list cap.
func (in *Intake) MaxFiles() int {
	return in.maxFiles
}

// Reset empties the list and revokes every preview handle.
func (in *Intake) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, file := range in.files {
		in.revoke(file)
	}
	in.files = nil
}

// Release is called when the owning form instance is discarded.
func (in *Intake) Release() {
	in.Reset()
}

func (in *Intake) revoke(file File) {
	if in.previews != nil && file.Preview != "" {
		in.previews.Revoke(file.Preview)
	}
}

func normalise(file File) File {
	if file.Size == 0 {
		file.Size = int64(len(file.Data))
	}
	contentType := strings.TrimSpace(file.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		if len(file.Data) > 0 {
			contentType = http.DetectContentType(file.Data)
		}
	}
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	file.ContentType = strings.ToLower(strings.TrimSpace(contentType))
	file.Preview = ""
	return file
}
