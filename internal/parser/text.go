package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/susdigest/internal/document"
)

// TextParser handles plain text files. Form feeds separate pages, which is
// what pdftotext and many report exports emit.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := &document.Document{Source: filename}
	if len(data) == 0 {
		return doc, nil
	}
	doc.Pages = splitPages(string(data))
	return doc, nil
}

// splitPages splits on form feeds. A trailing form feed does not start a new
// page.
func splitPages(text string) []string {
	text = strings.TrimSuffix(text, "\f")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\f")
}
