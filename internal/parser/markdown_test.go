package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_BlocksBecomeParagraphs(t *testing.T) {
	input := `# Climate

Intro text.

## Emissions

Scope 1 emissions were **12,000** tCO2e.

- Scope 2: 3,000
- Scope 3: 90,000
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
	text := doc.Text()
	for _, want := range []string{"Climate", "Intro text.", "Emissions", "Scope 1 emissions were 12,000 tCO2e.", "Scope 2: 3,000\nScope 3: 90,000"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected text to contain %q, got %q", want, text)
		}
	}
	if strings.Contains(text, "**") || strings.Contains(text, "# ") {
		t.Errorf("expected markup stripped, got %q", text)
	}
	if strings.Count(text, "Intro text.") != 1 {
		t.Errorf("expected paragraph text once, got %q", text)
	}
}

func TestMarkdownParser_CodeBlocks(t *testing.T) {
	input := "Data:\n\n```\nscope_1 12000\nscope_2 3000\n```\n\nMore text after code.\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "data.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := doc.Text()
	if !strings.Contains(text, "scope_1 12000\nscope_2 3000") {
		t.Errorf("expected code block content, got %q", text)
	}
	if !strings.Contains(text, "More text after code.") {
		t.Errorf("expected post-code text, got %q", text)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("expected 0 pages for empty input, got %d", len(doc.Pages))
	}
}
