package parser

import (
	"strings"
	"testing"
)

func TestTextParser_SinglePage(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Source != "notes.txt" {
		t.Errorf("expected source %q, got %q", "notes.txt", doc.Source)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
	if doc.Text() != input {
		t.Errorf("expected text unchanged, got %q", doc.Text())
	}
}

func TestTextParser_FormFeedPages(t *testing.T) {
	input := "Page one.\fPage two.\fPage three.\f"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "report.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Page one.", "Page two.", "Page three."}
	if len(doc.Pages) != len(want) {
		t.Fatalf("expected %d pages, got %d", len(want), len(doc.Pages))
	}
	for i, w := range want {
		if doc.Pages[i] != w {
			t.Errorf("page %d: expected %q, got %q", i+1, w, doc.Pages[i])
		}
	}
	if doc.Text() != "Page one.Page two.Page three." {
		t.Errorf("expected pages joined with no separator, got %q", doc.Text())
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("expected 0 pages for empty input, got %d", len(doc.Pages))
	}
}

func TestTextParser_PreservesWhitespace(t *testing.T) {
	input := "  Scope 1:   12,000 tCO2e  \n\n\n"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Text() != input {
		t.Errorf("expected no normalization, got %q", doc.Text())
	}
}
