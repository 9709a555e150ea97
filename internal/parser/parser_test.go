package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/susdigest/internal/document"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"report.pdf", false},
		{"REPORT.PDF", false},
		{"notes.txt", false},
		{"readme.md", false},
		{"page.htm", false},
		{"table.csv", false},
		{"memo.docx", false},
		{"image.png", true},
		{"noext", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			_, err := ForFile(tt.filename, Options{})
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupported) {
					t.Errorf("expected ErrUnsupported, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_EmptyDocument(t *testing.T) {
	_, err := Load(strings.NewReader(""), "empty.txt", Options{})
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("empty document must be distinguishable from unavailable source")
	}
}

func TestLoad_WhitespaceOnly(t *testing.T) {
	_, err := Load(strings.NewReader("   \n\n  \f \t\n"), "blank.txt", Options{})
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestCheckText(t *testing.T) {
	tests := []struct {
		name    string
		doc     document.Document
		wantErr bool
		wantMsg string
	}{
		{"no pages", document.Document{Source: "a.pdf"}, true, "no pages"},
		{"blank pages", document.Document{Source: "a.txt", Pages: []string{"", " ", "\n"}}, true, "only whitespace"},
		{"scanned pdf", document.Document{Source: "scan.pdf", Pages: []string{"", "", ""}, PageCount: 3}, true, "3 declared pages"},
		{"text on one page", document.Document{Source: "a.pdf", Pages: []string{"", "Scope 1"}, PageCount: 2}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckText(&tt.doc)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrEmptyDocument) {
				t.Fatalf("expected ErrEmptyDocument, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected %q in %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestLoad_CorruptPDF(t *testing.T) {
	_, err := Load(strings.NewReader("this is not a pdf"), "broken.pdf", Options{})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "google-2023.txt")
	if err := os.WriteFile(path, []byte("Scope 1: 91,200 tCO2e"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := LoadFile(path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Source != "google-2023.txt" || doc.Text() != "Scope 1: 91,200 tCO2e" {
		t.Errorf("unexpected document %+v", doc)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.pdf"), Options{}); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable for missing file, got %v", err)
	}
}

func TestHTMLParser(t *testing.T) {
	input := `<html><head><title>Report</title><style>p{}</style></head><body>
<nav>Home | About</nav>
<h1>Environmental Report</h1>
<p>Our   scope 1 emissions
fell.</p>
<table><tr><th>Metric</th><th>2023</th></tr><tr><td>Scope 1</td><td>12,000</td></tr></table>
<script>var x = 1;</script>
</body></html>`
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "r.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := doc.Text()
	want := "Environmental Report\n\nOur scope 1 emissions fell.\n\nMetric | 2023\n\nScope 1 | 12,000"
	if text != want {
		t.Errorf("expected %q, got %q", want, text)
	}
}

func TestCSVParser(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("metric,value\n")
	for i := 0; i < 25; i++ {
		sb.WriteString("scope_1,100\n")
	}
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(sb.String()), "data.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages of rows, got %d", len(doc.Pages))
	}
	if !strings.Contains(doc.Pages[0], "metric: scope_1, value: 100") {
		t.Errorf("expected labelled cells, got %q", doc.Pages[0])
	}
}
