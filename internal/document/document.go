package document

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Document is the extracted text of one input file, page by page.
type Document struct {
	Source    string   // Original filename
	Pages     []string // Plain text per page, in page order
	PageCount int      // Page count declared by the container (0 if N/A)
}

// Text concatenates page text in page order. No separator is inserted and
// nothing is normalized.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, p := range d.Pages {
		sb.WriteString(p)
	}
	return sb.String()
}

// Len is the document length in runes.
func (d *Document) Len() int {
	n := 0
	for _, p := range d.Pages {
		n += utf8.RuneCountInString(p)
	}
	return n
}

// PageStarts returns the rune offset at which each page begins in Text().
func (d *Document) PageStarts() []int {
	starts := make([]int, len(d.Pages))
	off := 0
	for i, p := range d.Pages {
		starts[i] = off
		off += utf8.RuneCountInString(p)
	}
	return starts
}

// PageAt maps a rune offset in Text() to a 1-based page number.
// Returns 0 when the document has no pages or the offset is negative.
func (d *Document) PageAt(offset int) int {
	if len(d.Pages) == 0 || offset < 0 {
		return 0
	}
	starts := d.PageStarts()
	// Last page whose start is <= offset. Empty pages share a start with the
	// following page, so skip forward past them.
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
	if i == 0 {
		return 1
	}
	return i
}
