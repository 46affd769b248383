// Package unminify reformats compacted source text into indented, human-readable form.
//
// Five formats are supported: js, css, html, json and xml. When the caller does not declare a
// format, Detect guesses one from the text.
package unminify

import (
	"errors"
	"strings"
)

// Format identifies a source language.
type Format string

const (
	FormatJS   Format = "js"
	FormatCSS  Format = "css"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// Formats lists every supported format.
var Formats = []Format{FormatJS, FormatCSS, FormatHTML, FormatJSON, FormatXML}

var (
	ErrNoCode            = errors.New("no code provided")
	ErrUnsupportedFormat = errors.New("unsupported type")
)

// ParseFormat normalizes a declared format tag. An empty tag returns ("", nil),
// meaning the format should be detected.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, f := range Formats {
		if Format(s) == f {
			return f, nil
		}
	}
	return "", ErrUnsupportedFormat
}

func (f Format) String() string {
	return string(f)
}
