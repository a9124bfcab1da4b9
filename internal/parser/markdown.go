package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Markup is dropped;
// each heading, paragraph and code block becomes one text block.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string, _ Options) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var blocks []string
	var current strings.Builder
	flush := func() {
		blocks = append(blocks, current.String())
		current.Reset()
	}

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			if !entering {
				flush()
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := node.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					current.Write(seg.Value(src))
				}
				flush()
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			if entering {
				current.Write(node.URL(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.String:
			if entering {
				current.Write(node.Value)
			}
		case *ast.Text:
			if entering {
				current.Write(node.Segment.Value(src))
				if node.HardLineBreak() || node.SoftLineBreak() {
					current.WriteByte('\n')
				}
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("walk markdown %s: %w", filename, err)
	}
	flush()

	return joinBlocks(blocks), nil
}
