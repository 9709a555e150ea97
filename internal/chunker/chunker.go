package chunker

import (
	"errors"
	"fmt"
	"strings"
)

// Config controls chunking behavior. Lengths are in characters (runes).
type Config struct {
	Size    int // Maximum chunk length.
	Overlap int // Characters shared between consecutive chunks.
}

// DefaultConfig returns the standard 4000/200 window.
func DefaultConfig() Config {
	return Config{
		Size:    4000,
		Overlap: 200,
	}
}

// ErrInvalidConfig is returned when Size <= Overlap or Overlap < 0.
var ErrInvalidConfig = errors.New("chunker: invalid config")

// Validate checks Size > Overlap >= 0.
func (c Config) Validate() error {
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap %d is negative", ErrInvalidConfig, c.Overlap)
	}
	if c.Size <= c.Overlap {
		return fmt.Errorf("%w: size %d must exceed overlap %d", ErrInvalidConfig, c.Size, c.Overlap)
	}
	return nil
}

// Chunk is a window over the source text.
type Chunk struct {
	Index   int    // Sequence number within the document
	Text    string // Chunk text, including the leading overlap
	Offset  int    // Rune offset of Text within the source
	Overlap int    // Leading runes shared with the previous chunk
}

// Len is the chunk length in runes.
func (c Chunk) Len() int {
	return len([]rune(c.Text))
}

// separators in priority order. Alternatives on the same level compete on
// position; the latest cut wins.
var separators = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? "},
	{" "},
}

// Split breaks text into overlapping windows. Each chunk after the first
// begins with exactly cfg.Overlap runes copied from the end of its
// predecessor, so Join reverses Split.
func Split(text string, cfg Config) ([]Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rs := []rune(text)
	n := len(rs)
	if n == 0 {
		return nil, nil
	}
	if n <= cfg.Size {
		return []Chunk{{Index: 0, Text: text}}, nil
	}

	var chunks []Chunk
	start := 0 // first rune not yet covered by a chunk
	for start < n {
		first := len(chunks) == 0
		window := cfg.Size
		minCut := window / 2
		if first {
			// The first chunk must be long enough to donate a full overlap.
			minCut = max(minCut, cfg.Overlap)
		} else {
			window = cfg.Size - cfg.Overlap
			minCut = window / 2
		}
		minCut = max(minCut, 1)

		end := n
		if start+window < n {
			end = start + cutPoint(rs[start:start+window], minCut, separators)
		}

		from, ov := start, 0
		if !first {
			from, ov = start-cfg.Overlap, cfg.Overlap
		}
		chunks = append(chunks, Chunk{
			Index:   len(chunks),
			Text:    string(rs[from:end]),
			Offset:  from,
			Overlap: ov,
		})
		start = end
	}
	return chunks, nil
}

// cutPoint picks where to end a window. It tries each separator level in
// turn and falls back to a hard cut at the window edge. The returned cut is
// always in [minCut, len(w)].
func cutPoint(w []rune, minCut int, levels [][]string) int {
	if len(levels) == 0 {
		return len(w)
	}
	best := -1
	for _, sep := range levels[0] {
		if c := lastCut(w, []rune(sep)); c > best {
			best = c
		}
	}
	if best >= minCut {
		return best
	}
	return cutPoint(w, minCut, levels[1:])
}

// lastCut returns the position just past the last occurrence of sep in w,
// or -1.
func lastCut(w, sep []rune) int {
	for i := len(w) - len(sep); i >= 0; i-- {
		if runesEqual(w[i:i+len(sep)], sep) {
			return i + len(sep)
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Join reassembles the source text by dropping each chunk's leading overlap.
func Join(chunks []Chunk) string {
	var sb strings.Builder
	for i, c := range chunks {
		if i == 0 {
			sb.WriteString(c.Text)
			continue
		}
		rs := []rune(c.Text)
		sb.WriteString(string(rs[min(c.Overlap, len(rs)):]))
	}
	return sb.String()
}
