package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingsAndParagraphs(t *testing.T) {
	input := `# Title

Intro text with **bold** and *emphasis*.

## Section A

Section A content.
`
	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader(input), "doc.md", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Title\n\nIntro text with bold and emphasis.\n\nSection A\n\nSection A content."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownParser_CodeBlocksAndLists(t *testing.T) {
	input := "## Endpoints\n\n- list users\n- create user\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"

	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader(input), "api.md", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Endpoints", "list users", "create user", "GET /api/users\nPOST /api/users", "More text after code."} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
	if strings.Contains(got, "```") || strings.Contains(got, "##") {
		t.Errorf("expected markup to be dropped, got %q", got)
	}
}

func TestMarkdownParser_LinksKeepLabel(t *testing.T) {
	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader("See [the docs](https://example.com/docs) or <https://example.org>."), "links.md", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "See the docs or https://example.org." {
		t.Errorf("unexpected text %q", got)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader(""), "empty.md", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}
