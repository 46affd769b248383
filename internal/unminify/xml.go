package unminify

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// formatXML pretty-prints an XML document with two-space indentation. The XML declaration is
// dropped along with whitespace-only text and blank lines.
func formatXML(code string) (string, error) {
	dec := newXMLDecoder(strings.TrimSpace(code))

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" {
				continue
			}
		case xml.CharData:
			text := bytes.TrimSpace(t)
			if len(text) == 0 {
				continue
			}
			tok = xml.CharData(text)
		case xml.StartElement:
			tok = qualifiedStart(t)
		case xml.EndElement:
			tok = xml.EndElement{Name: qualifiedName(t.Name)}
		}

		if err := enc.EncodeToken(tok); err != nil {
			return "", fmt.Errorf("invalid XML: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("invalid XML: %w", err)
	}

	lines := strings.Split(buf.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}

// The raw tokenizer leaves namespace prefixes in Name.Space; fold them back into the local name so
// the encoder writes them verbatim instead of inventing xmlns attributes.
func qualifiedName(n xml.Name) xml.Name {
	if n.Space == "" {
		return n
	}
	return xml.Name{Local: n.Space + ":" + n.Local}
}

func qualifiedStart(t xml.StartElement) xml.StartElement {
	out := xml.StartElement{Name: qualifiedName(t.Name)}
	for _, a := range t.Attr {
		out.Attr = append(out.Attr, xml.Attr{Name: qualifiedName(a.Name), Value: a.Value})
	}
	return out
}
