package fieldoptions

import "net/http"

type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none"
	EmptySearchAll  EmptySearchMode = "all"
)

// Choice is one selectable value with its display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Source resolves the choices for a request, typically from path values.
// Returning a StatusError controls the response code.
type Source func(r *http.Request) ([]Choice, error)

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath       string
	SearchParam     string
	LimitParam      string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc
	Source          Source
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       "/api/options/{form}/{field}",
		SearchParam:     "q",
		LimitParam:      "limit",
		DefaultLimit:    25,
		MaxLimit:        100,
		EmptySearchMode: EmptySearchAll,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 25
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = EmptySearchAll
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/options/{form}/{field}"
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		o.RoutePath = path
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		o.SearchParam = name
	}
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) {
		o.LimitParam = name
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		o.MaxLimit = limit
	}
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) {
		o.EmptySearchMode = mode
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		o.Guard = guard
	}
}

// WithSource sets where choices come from.
func WithSource(source Source) OptionFn {
	return func(o *Options) {
		o.Source = source
	}
}

// WithChoices serves a fixed list regardless of the request.
func WithChoices(choices []Choice) OptionFn {
	fixed := append([]Choice{}, choices...)
	return WithSource(func(*http.Request) ([]Choice, error) {
		return fixed, nil
	})
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
