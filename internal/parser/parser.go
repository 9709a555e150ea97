package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/susdigest/internal/document"
)

var (
	// ErrSourceUnavailable means the document could not be opened or read.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrEmptyDocument means the document has no pages or no text on them.
	ErrEmptyDocument = errors.New("document has no text")
	ErrUnsupported   = errors.New("unsupported file extension")
)

// Parser converts raw document bytes into page text.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// Options tune parser selection.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Load parses r with the parser for filename and rejects empty documents.
// Read and decode failures are wrapped in ErrSourceUnavailable.
func Load(r io.Reader, filename string, opts Options) (*document.Document, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrEmptyDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, filepath.Base(filename), err)
	}
	if err := CheckText(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CheckText returns ErrEmptyDocument when doc has no pages or only
// whitespace. A declared page count is included in the error, which is how
// image-only PDFs show up.
func CheckText(doc *document.Document) error {
	name := filepath.Base(doc.Source)
	if len(doc.Pages) == 0 {
		return fmt.Errorf("%w: %s: no pages", ErrEmptyDocument, name)
	}
	if strings.TrimSpace(doc.Text()) != "" {
		return nil
	}
	if doc.PageCount > 0 {
		return fmt.Errorf("%w: %s: %d declared pages but no extractable text", ErrEmptyDocument, name, doc.PageCount)
	}
	return fmt.Errorf("%w: %s: only whitespace", ErrEmptyDocument, name)
}

// LoadFile opens path and calls Load.
func LoadFile(path string, opts Options) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer f.Close()
	return Load(f, filepath.Base(path), opts)
}

// blocks accumulates paragraph-level text separated by blank lines.
type blocks struct {
	sb strings.Builder
}

func (b *blocks) add(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if b.sb.Len() > 0 {
		b.sb.WriteString("\n\n")
	}
	b.sb.WriteString(s)
}

// pages returns the collected text as a single page, or none.
func (b *blocks) pages() []string {
	if b.sb.Len() == 0 {
		return nil
	}
	return []string{b.sb.String()}
}
