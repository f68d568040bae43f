// Package article turns stored item bodies (HTML fragments) into plain
// wrapped text lines for the terminal reader view.
package article

import (
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
)

// ContentLines renders an HTML fragment into lines wrapped to width.
// Paragraphs and preformatted blocks become blank-line separated blocks,
// <br> becomes a line break, inline code is bracketed. Input that is not
// parseable HTML is wrapped as-is.
func ContentLines(raw string, width int) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if width < 1 {
		width = 1
	}
	doc, err := nethtml.Parse(strings.NewReader("<html><body>" + raw + "</body></html>"))
	if err != nil {
		return wrapText(html.UnescapeString(raw), width)
	}
	body := findBody(doc)
	if body == nil {
		return wrapText(html.UnescapeString(raw), width)
	}
	var b strings.Builder
	flatten(body, &b)
	return wrapLines(b.String(), width)
}

// Text renders an HTML fragment to plain unwrapped text.
func Text(raw string) string {
	lines := ContentLines(raw, 1<<20)
	return strings.Join(lines, "\n")
}

func findBody(n *nethtml.Node) *nethtml.Node {
	if n.Type == nethtml.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

func flatten(n *nethtml.Node, b *strings.Builder) {
	switch n.Type {
	case nethtml.TextNode:
		b.WriteString(n.Data)
		return
	case nethtml.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br":
			b.WriteString("\n")
			return
		case "p", "pre", "div", "blockquote", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n")
			defer b.WriteString("\n")
		case "li":
			b.WriteString("\n- ")
		case "code":
			b.WriteString("[")
			defer b.WriteString("]")
		case "img":
			if alt := attr(n, "alt"); alt != "" {
				b.WriteString("[image: " + alt + "]")
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flatten(c, b)
	}
}

func attr(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// wrapLines wraps each logical line of text separately, collapsing runs
// of more than one blank line.
func wrapLines(text string, width int) []string {
	var out []string
	blanks := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 1 || len(out) == 0 {
				continue
			}
			out = append(out, "")
			continue
		}
		blanks = 0
		out = append(out, wrapText(strings.TrimSpace(line), width)...)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// wrapText greedily wraps a single line at word boundaries. Words longer
// than the width are hard-split.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var out []string
	var line strings.Builder
	for _, word := range words {
		for len(word) > width {
			if line.Len() > 0 {
				out = append(out, line.String())
				line.Reset()
			}
			out = append(out, word[:width])
			word = word[width:]
		}
		if word == "" {
			continue
		}
		if line.Len() == 0 {
			line.WriteString(word)
		} else if line.Len()+1+len(word) <= width {
			line.WriteString(" ")
			line.WriteString(word)
		} else {
			out = append(out, line.String())
			line.Reset()
			line.WriteString(word)
		}
	}
	if line.Len() > 0 {
		out = append(out, line.String())
	}
	return out
}
