package unminify

import (
	"strings"
)

// FormatFunc turns compacted source into its readable form.
type FormatFunc func(code string) (string, error)

// Result is the outcome of a successful Unminify call.
type Result struct {
	Format Format
	Output string
	Cached bool
}

// Unminifier dispatches code to the formatter for its declared or detected format.
type Unminifier struct {
	formatters map[Format]FormatFunc
	cache      *Cache
}

// Option configures an Unminifier.
type Option func(*Unminifier)

// WithCache enables result caching.
func WithCache(c *Cache) Option {
	return func(u *Unminifier) { u.cache = c }
}

// WithFormatter replaces the formatter used for f.
func WithFormatter(f Format, fn FormatFunc) Option {
	return func(u *Unminifier) { u.formatters[f] = fn }
}

// New returns an Unminifier with the built-in formatters.
func New(opts ...Option) *Unminifier {
	u := &Unminifier{
		formatters: map[Format]FormatFunc{
			FormatJS:   formatJS,
			FormatCSS:  formatCSS,
			FormatHTML: formatHTML,
			FormatJSON: formatJSON,
			FormatXML:  formatXML,
		},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Unminify formats code. declared may be empty, in which case the format is detected.
// Whitespace-only code is rejected with ErrNoCode before any formatter runs, and an unknown
// declared format yields ErrUnsupportedFormat.
func (u *Unminifier) Unminify(code, declared string) (*Result, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrNoCode
	}

	format, err := ParseFormat(declared)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = Detect(code)
	}

	if u.cache != nil {
		if out, ok := u.cache.Get(format, code); ok {
			return &Result{Format: format, Output: out, Cached: true}, nil
		}
	}

	fn, ok := u.formatters[format]
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	out, err := fn(code)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		u.cache.Set(format, code, out)
	}
	return &Result{Format: format, Output: out}, nil
}
