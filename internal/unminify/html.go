package unminify

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidElements never have children or a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

// verbatimElements keep their content exactly as written.
var verbatimElements = map[string]bool{
	"script": true, "style": true, "pre": true, "textarea": true,
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
)

// isHTMLSpace matches the ASCII whitespace HTML collapses. U+00A0 from &nbsp; is content.
func isHTMLSpace(r rune) bool {
	return strings.ContainsRune(" \t\n\f\r", r)
}

// formatHTML parses code and prints one node per line, children indented by two spaces. Inputs
// that look like a whole document are parsed as one; anything else is treated as a body fragment
// so no <html>/<head>/<body> wrapper is invented.
func formatHTML(code string) (string, error) {
	var nodes []*html.Node
	if looksLikeDocument(code) {
		doc, err := html.Parse(strings.NewReader(code))
		if err != nil {
			return "", fmt.Errorf("invalid HTML: %w", err)
		}
		nodes = []*html.Node{doc}
	} else {
		body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		var err error
		nodes, err = html.ParseFragment(strings.NewReader(code), body)
		if err != nil {
			return "", fmt.Errorf("invalid HTML: %w", err)
		}
	}

	p := &htmlPrinter{}
	for _, n := range nodes {
		p.print(n, 0)
	}
	return p.buf.String(), nil
}

func looksLikeDocument(code string) bool {
	lower := strings.ToLower(code)
	for _, marker := range []string{"<!doctype", "<html", "<head", "<body"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

type htmlPrinter struct {
	buf bytes.Buffer
}

func (p *htmlPrinter) line(depth int, s string) {
	p.buf.WriteString(strings.Repeat("  ", depth))
	p.buf.WriteString(s)
	p.buf.WriteByte('\n')
}

func (p *htmlPrinter) print(n *html.Node, depth int) {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.print(c, depth)
		}
	case html.DoctypeNode:
		p.line(depth, "<!DOCTYPE "+n.Data+">")
	case html.CommentNode:
		p.line(depth, "<!--"+n.Data+"-->")
	case html.TextNode:
		if n.Parent != nil && n.Parent.Type == html.ElementNode && verbatimElements[n.Parent.Data] {
			if text := strings.Trim(n.Data, "\r\n"); strings.TrimSpace(text) != "" {
				p.line(depth, text)
			}
			return
		}
		if text := strings.Join(strings.FieldsFunc(n.Data, isHTMLSpace), " "); text != "" {
			p.line(depth, textEscaper.Replace(text))
		}
	case html.ElementNode:
		open := startTag(n)
		if voidElements[n.Data] {
			p.line(depth, open)
			return
		}
		if n.FirstChild == nil {
			p.line(depth, open+"</"+n.Data+">")
			return
		}
		if n.Data == "pre" || n.Data == "textarea" {
			var inner bytes.Buffer
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				_ = html.Render(&inner, c)
			}
			p.line(depth, open+inner.String()+"</"+n.Data+">")
			return
		}
		p.line(depth, open)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.print(c, depth+1)
		}
		p.line(depth, "</"+n.Data+">")
	}
}

func startTag(n *html.Node) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(n.Data)
	for _, a := range n.Attr {
		b.WriteByte(' ')
		if a.Namespace != "" {
			b.WriteString(a.Namespace)
			b.WriteByte(':')
		}
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return b.String()
}
