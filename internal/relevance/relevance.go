package relevance

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/susdigest/internal/chunker"
)

// DefaultKeywords flag chunks likely to carry reportable metrics.
var DefaultKeywords = []string{
	"emissions",
	"Scope 1",
	"Scope 2",
	"Scope 3",
	"renewable",
	"target",
	"GHG",
	"tCO2",
	"MWh",
	"percent",
	"carbon neutral",
	"net zero",
}

// Scored pairs a chunk with its relevance score.
type Scored struct {
	Chunk chunker.Chunk
	Score int
	Hits  map[string]int // per-keyword counts, only non-zero entries
}

// Count returns the case-insensitive number of occurrences of keyword in
// text. Overlapping matches count separately, so "aa" occurs twice in "aaa".
func Count(text, keyword string) int {
	if keyword == "" {
		return 0
	}
	text = strings.ToLower(text)
	keyword = strings.ToLower(keyword)

	n := 0
	for i := 0; ; {
		j := strings.Index(text[i:], keyword)
		if j < 0 {
			return n
		}
		n++
		// Advance one rune past the match start.
		_, size := utf8.DecodeRuneInString(text[i+j:])
		i += j + size
	}
}

// Score sums Count over all keywords. Keywords that contain one another are
// counted independently.
func Score(text string, keywords []string) int {
	s, _ := score(text, keywords)
	return s
}

func score(text string, keywords []string) (int, map[string]int) {
	total := 0
	hits := make(map[string]int)
	for _, kw := range keywords {
		if c := Count(text, kw); c > 0 {
			hits[kw] += c
			total += c
		}
	}
	return total, hits
}

// Rank scores every chunk and orders them by descending score. Ties keep
// their original order.
func Rank(chunks []chunker.Chunk, keywords []string) []Scored {
	out := make([]Scored, len(chunks))
	for i, c := range chunks {
		s, hits := score(c.Text, keywords)
		out[i] = Scored{Chunk: c, Score: s, Hits: hits}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Select keeps the first n ranked chunks.
func Select(ranked []Scored, n int) []Scored {
	if n <= 0 {
		return nil
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
