// Package mdscan finds math markup embedded in Markdown documents.
package mdscan

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// DefaultLanguages are the fence info strings treated as math blocks.
var DefaultLanguages = []string{"math", "latex", "tex"}

// Snippet is one piece of math found in a document.
type Snippet struct {
	Source  string `json:"source"`
	Display bool   `json:"display"`
	Line    int    `json:"line"`
}

// Scanner extracts math snippets from fenced code blocks whose language is
// one of its languages and from code spans wrapped in dollar signs.
type Scanner struct {
	parser    goldmark.Markdown
	languages map[string]bool
}

// New creates a Scanner. With no languages it uses DefaultLanguages.
func New(languages ...string) *Scanner {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}

	set := make(map[string]bool, len(languages))
	for _, lang := range languages {
		set[strings.ToLower(strings.TrimSpace(lang))] = true
	}

	return &Scanner{
		parser:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		languages: set,
	}
}

// Scan uses a default Scanner.
func Scan(source []byte) ([]Snippet, error) {
	return New().Scan(source)
}

// Scan returns the snippets of source in document order.
func (s *Scanner) Scan(source []byte) ([]Snippet, error) {
	root := s.parser.Parser().Parse(text.NewReader(source))

	var snippets []Snippet
	err := ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch typed := node.(type) {
		case *ast.FencedCodeBlock:
			if snippet, ok := s.fencedSnippet(typed, source); ok {
				snippets = append(snippets, snippet)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			if snippet, ok := codeSpanSnippet(typed, source); ok {
				snippets = append(snippets, snippet)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan markdown: %w", err)
	}

	return snippets, nil
}

func (s *Scanner) fencedSnippet(node *ast.FencedCodeBlock, source []byte) (Snippet, bool) {
	language := strings.ToLower(strings.TrimSpace(string(node.Language(source))))
	if !s.languages[language] {
		return Snippet{}, false
	}

	lines := node.Lines()
	if lines.Len() == 0 {
		return Snippet{}, false
	}

	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	value := strings.TrimSpace(buf.String())
	if value == "" {
		return Snippet{}, false
	}

	return Snippet{
		Source:  value,
		Display: true,
		Line:    lineAt(source, lines.At(0).Start),
	}, true
}

func codeSpanSnippet(node *ast.CodeSpan, source []byte) (Snippet, bool) {
	var buf bytes.Buffer
	start := -1
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		textNode, ok := child.(*ast.Text)
		if !ok {
			continue
		}
		if start < 0 {
			start = textNode.Segment.Start
		}
		buf.Write(textNode.Segment.Value(source))
	}

	raw := strings.TrimSpace(buf.String())
	display := false
	switch {
	case len(raw) > 4 && strings.HasPrefix(raw, "$$") && strings.HasSuffix(raw, "$$"):
		raw = raw[2 : len(raw)-2]
		display = true
	case len(raw) > 2 && strings.HasPrefix(raw, "$") && strings.HasSuffix(raw, "$"):
		raw = raw[1 : len(raw)-1]
	default:
		return Snippet{}, false
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return Snippet{}, false
	}

	return Snippet{
		Source:  value,
		Display: display,
		Line:    lineAt(source, start),
	}, true
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(source []byte, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}
