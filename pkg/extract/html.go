package extract

import (
	"context"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docuchat/pkg/types"
	"docuchat/pkg/utils"
)

// HTMLExtractor handles HTML files, dropping script/style content and
// preserving block-element boundaries as newlines.
type HTMLExtractor struct{}

var _ Extractor = (*HTMLExtractor)(nil)

// NewHTMLExtractor creates a new HTML extractor.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract extracts readable text from an HTML file as a single page.
func (e *HTMLExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewIOError("failed to read file", err)
	}

	doc, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, utils.NewConversionError("failed to parse HTML", err)
	}

	var b strings.Builder
	walkHTMLNode(doc, &b)
	text := cleanupWhitespace(b.String())

	return &Result{Pages: singlePage(text), Method: types.MethodDirect}, nil
}

// Supports reports whether the extractor handles this extension.
func (e *HTMLExtractor) Supports(ext string) bool {
	return ext == "html" || ext == "htm"
}

// Name returns the extractor name.
func (e *HTMLExtractor) Name() string {
	return "html"
}

// walkHTMLNode recursively extracts text from HTML nodes.
func walkHTMLNode(node *html.Node, b *strings.Builder) {
	if node.Type == html.ElementNode {
		if node.DataAtom == atom.Script || node.DataAtom == atom.Style {
			return
		}
		if isBlockElement(node.DataAtom) {
			b.WriteString("\n")
		}
	}

	if node.Type == html.TextNode {
		text := strings.TrimSpace(node.Data)
		if text != "" {
			b.WriteString(text)
			b.WriteString(" ")
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walkHTMLNode(child, b)
	}
}

// isBlockElement reports whether the element starts on its own line.
func isBlockElement(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Li, atom.Ul, atom.Ol, atom.Table, atom.Tr, atom.Blockquote, atom.Pre, atom.Section, atom.Article:
		return true
	}
	return false
}

var multiNewline = regexp.MustCompile(`\n{3,}`)

// cleanupWhitespace collapses runs of blank lines and trims edges.
func cleanupWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
