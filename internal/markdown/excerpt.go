// Package markdown renders codex entry bodies into plain-text excerpts.
package markdown

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExcerptRunes is the excerpt length used for entry descriptions.
const ExcerptRunes = 200

const ellipsis = "..."

var parser = goldmark.New().Parser()

// PlainText strips markdown syntax, keeping the readable text of every
// inline node. Code blocks are dropped and whitespace is collapsed.
func PlainText(src string) string {
	source := []byte(src)
	doc := parser.Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(source))
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}

// Excerpt returns the plain text of src cut to at most max runes. Cut text
// ends with "...".
func Excerpt(src string, max int) string {
	plain := PlainText(src)
	if utf8.RuneCountInString(plain) <= max {
		return plain
	}

	runes := []rune(plain)
	return strings.TrimRight(string(runes[:max]), " ") + ellipsis
}
