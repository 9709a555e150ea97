package chunker

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
)

func TestSplit_ShortTextIsOneChunk(t *testing.T) {
	text := strings.Repeat("word ", 200)
	chunks, err := Split(text, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("expected chunk to equal input")
	}
	if chunks[0].Overlap != 0 || chunks[0].Offset != 0 {
		t.Errorf("expected no overlap/offset, got overlap=%d offset=%d", chunks[0].Overlap, chunks[0].Offset)
	}
}

func TestSplit_ExactlySizeIsOneChunk(t *testing.T) {
	text := strings.Repeat("a", 4000)
	chunks, err := Split(text, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestSplit_EmptyText(t *testing.T) {
	chunks, err := Split("", DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected 0 chunks, got %d", len(chunks))
	}
}

func TestSplit_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"size equals overlap", Config{Size: 200, Overlap: 200}},
		{"size below overlap", Config{Size: 100, Overlap: 200}},
		{"negative overlap", Config{Size: 100, Overlap: -1}},
		{"zero size", Config{Size: 0, Overlap: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text", tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSplit_NineThousandCharsNoBoundaries(t *testing.T) {
	text := strings.Repeat("x", 9000)
	chunks, err := Split(text, Config{Size: 4000, Overlap: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantLens := []int{4000, 4000, 1400}
	for i, c := range chunks {
		if c.Len() != wantLens[i] {
			t.Errorf("chunk %d: expected len %d, got %d", i, wantLens[i], c.Len())
		}
	}
	if Join(chunks) != text {
		t.Errorf("round trip mismatch")
	}
}

func TestSplit_NineThousandCharsOfProse(t *testing.T) {
	sentence := "Scope 1 emissions fell by four percent this year. " // 50 chars
	text := strings.Repeat(sentence, 180)                           // 9000 chars
	chunks, err := Split(text, Config{Size: 4000, Overlap: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks[:2] {
		if c.Len() > 4000 || c.Len() < 3900 {
			t.Errorf("chunk %d: expected len close to 4000, got %d", i, c.Len())
		}
	}
	last := chunks[2].Len()
	if last < 1000 || last > 4000 {
		t.Errorf("last chunk: expected len in [1000, 4000], got %d", last)
	}
	assertOverlaps(t, chunks, 200)
	// Snapped to sentence boundaries, so every chunk but the last ends a sentence.
	for i, c := range chunks[:2] {
		if !strings.HasSuffix(c.Text, ". ") {
			t.Errorf("chunk %d: expected to end at a sentence boundary, ends %q", i, tail(c.Text, 10))
		}
	}
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	para := strings.Repeat("The company reported progress. ", 20) // 620 chars
	text := strings.Join([]string{para, para, para, para}, "\n\n")
	chunks, err := Split(text, Config{Size: 1000, Overlap: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, "\n\n") {
		t.Errorf("expected first chunk to end at paragraph break, ends %q", tail(chunks[0].Text, 10))
	}
	if Join(chunks) != text {
		t.Errorf("round trip mismatch")
	}
}

func TestSplit_FallsBackToWordBreak(t *testing.T) {
	text := strings.Repeat("tCO2e ", 500) // no sentence or line breaks
	chunks, err := Split(text, Config{Size: 400, Overlap: 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c.Text, " ") {
			t.Errorf("chunk %d: expected word boundary, ends %q", i, tail(c.Text, 8))
		}
	}
}

func TestSplit_RoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	alphabet := []string{"a", "b", "c", " ", " ", ". ", "\n", "\n\n", "é", "₂", "%", "1", "0"}

	configs := []Config{
		{Size: 50, Overlap: 0},
		{Size: 50, Overlap: 10},
		{Size: 50, Overlap: 49},
		{Size: 200, Overlap: 100},
		{Size: 4000, Overlap: 200},
	}

	for trial := 0; trial < 200; trial++ {
		var sb strings.Builder
		n := rng.IntN(12000)
		for i := 0; i < n; i++ {
			sb.WriteString(alphabet[rng.IntN(len(alphabet))])
		}
		text := sb.String()
		cfg := configs[trial%len(configs)]

		chunks, err := Split(text, cfg)
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}
		if got := Join(chunks); got != text {
			t.Fatalf("trial %d (cfg %+v): round trip mismatch, len in=%d out=%d", trial, cfg, len(text), len(got))
		}
		for i, c := range chunks {
			if c.Len() > cfg.Size {
				t.Fatalf("trial %d: chunk %d len %d exceeds size %d", trial, i, c.Len(), cfg.Size)
			}
			if c.Index != i {
				t.Fatalf("trial %d: chunk %d has index %d", trial, i, c.Index)
			}
		}
		if len(chunks) > 1 {
			assertOverlaps(t, chunks, cfg.Overlap)
		}
	}
}

func TestSplit_OffsetsPointIntoSource(t *testing.T) {
	text := strings.Repeat("Renewable energy reached 64 percent. ", 300)
	chunks, err := Split(text, Config{Size: 1000, Overlap: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rs := []rune(text)
	for i, c := range chunks {
		got := string(rs[c.Offset : c.Offset+c.Len()])
		if got != c.Text {
			t.Errorf("chunk %d: offset %d does not locate chunk text", i, c.Offset)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Errorf("expected 0 for empty text")
	}
	if got := EstimateTokens("x"); got != 1 {
		t.Errorf("expected 1 for single char, got %d", got)
	}
	// 100 words of prose: words dominate.
	if got := EstimateTokens(strings.Repeat("net zero ", 50)); got != 133 {
		t.Errorf("expected 133, got %d", got)
	}
}

func assertOverlaps(t *testing.T, chunks []Chunk, overlap int) {
	t.Helper()
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		cur := []rune(chunks[i].Text)
		if chunks[i].Overlap != overlap {
			t.Errorf("chunk %d: expected overlap %d, got %d", i, overlap, chunks[i].Overlap)
			continue
		}
		if len(prev) < overlap || len(cur) < overlap {
			t.Errorf("chunk %d: too short for overlap %d", i, overlap)
			continue
		}
		if string(prev[len(prev)-overlap:]) != string(cur[:overlap]) {
			t.Errorf("chunk %d: leading overlap does not match predecessor tail", i)
		}
	}
}

func tail(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[len(rs)-n:])
}
