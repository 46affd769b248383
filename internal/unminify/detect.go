package unminify

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

// cssRulePattern matches a rule opening such as ".nav {", "#main{" or "body {".
var cssRulePattern = regexp.MustCompile(`[.#]?[\w-]+\s*\{`)

type detectionRule struct {
	format Format
	match  func(trimmed string) bool
}

// detectionRules are evaluated in order; the first match wins. JSON and XML come first because
// they have a strict grammar, HTML and CSS are recognized by cheap textual signatures.
var detectionRules = []detectionRule{
	{format: FormatJSON, match: isJSON},
	{format: FormatXML, match: isXML},
	{format: FormatHTML, match: hasHTMLTag},
	{format: FormatCSS, match: cssRulePattern.MatchString},
}

// Detect guesses the format of code. Anything unrecognized is treated as JavaScript.
func Detect(code string) Format {
	trimmed := strings.TrimSpace(code)
	for _, rule := range detectionRules {
		if rule.match(trimmed) {
			return rule.format
		}
	}
	return FormatJS
}

func isJSON(s string) bool {
	return s != "" && json.Valid([]byte(s))
}

func newXMLDecoder(s string) *xml.Decoder {
	dec := xml.NewDecoder(strings.NewReader(s))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

// isXML reports whether s is a well-formed XML document with a single root element.
// Documents rooted at <html> are left to the HTML rule.
func isXML(s string) bool {
	dec := newXMLDecoder(s)
	depth, roots := 0, 0
	var root string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				root = t.Name.Local
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return false
			}
		}
	}
	return roots == 1 && depth == 0 && !strings.EqualFold(root, "html")
}

func hasHTMLTag(s string) bool {
	return strings.Contains(strings.ToLower(s), "<html")
}
