package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/susdigest/internal/chunker"
	"github.com/dgallion1/susdigest/internal/document"
	"github.com/dgallion1/susdigest/internal/extract"
	"github.com/dgallion1/susdigest/internal/merge"
	"github.com/dgallion1/susdigest/internal/parser"
	"github.com/dgallion1/susdigest/internal/relevance"
	"github.com/dgallion1/susdigest/internal/report"
)

// Extractor turns one chunk into a record for subject.
type Extractor interface {
	Extract(ctx context.Context, chunkText, subject string) (report.Record, error)
	Model() string
}

// Options tune a pipeline run.
type Options struct {
	Chunk       chunker.Config
	TopN        int
	Keywords    []string
	Delay       time.Duration // pause between extract calls
	MergePolicy merge.Policy
	Parser      parser.Options
}

// DefaultOptions returns 4000/200 chunks, the top 5 chunks, the default
// keywords, a 500ms delay and first-non-null merging.
func DefaultOptions() Options {
	return Options{
		Chunk:       chunker.DefaultConfig(),
		TopN:        5,
		Keywords:    relevance.DefaultKeywords,
		Delay:       500 * time.Millisecond,
		MergePolicy: merge.FirstNonNull,
	}
}

// Hooks report progress. Either may be nil.
type Hooks struct {
	Selected  func(total, selected int)
	ChunkDone func(index int, err error)
}

// Input names one document. Exactly one of Document, Reader or Filename
// supplies the content; Filename is also used for subject inference and
// format detection.
type Input struct {
	Subject  string
	Filename string
	Reader   io.Reader
	Document *document.Document
	Hooks    Hooks
}

// ChunkFailure is a chunk whose extraction was skipped.
type ChunkFailure struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

const (
	StageSubject = "subject"
	StageLoad    = "load"
	StageChunk   = "chunk"
)

// StageError aborts a document before extraction.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// ErrNoSubject means no subject was given and the filename names none.
var ErrNoSubject = errors.New("subject could not be inferred from filename")

// Result is the outcome of one document. Record is always usable as a table
// row: on failure or no data it is a placeholder carrying only the subject.
type Result struct {
	Subject     string         `json:"subject"`
	Source      string         `json:"source"`
	Record      report.Record  `json:"record"`
	Attempted   int            `json:"attempted"`
	Succeeded   int            `json:"succeeded"`
	Failures    []ChunkFailure `json:"failures,omitempty"`
	Conflicts   []string       `json:"conflicts,omitempty"`
	Interrupted bool           `json:"interrupted"`
	NoData      bool           `json:"no_data"`
	Err         error          `json:"-"`
	ContentHash string         `json:"content_hash,omitempty"`
	Duration    time.Duration  `json:"duration"`
}

// Pipeline runs load, chunk, rank, extract and merge for one document at a
// time. Extract calls within a run are sequential.
type Pipeline struct {
	ext     Extractor
	opts    Options
	log     *slog.Logger
	limiter *extract.RateLimiter // set by Build
}

// New validates opts and fills in default keywords and merge policy.
func New(ext Extractor, opts Options, log *slog.Logger) (*Pipeline, error) {
	if err := opts.Chunk.Validate(); err != nil {
		return nil, err
	}
	if opts.Keywords == nil {
		opts.Keywords = relevance.DefaultKeywords
	}
	if opts.MergePolicy == "" {
		opts.MergePolicy = merge.FirstNonNull
	}
	return &Pipeline{ext: ext, opts: opts, log: log}, nil
}

// Model names the LLM model behind the extractor.
func (p *Pipeline) Model() string { return p.ext.Model() }

// RateLimit reports the shared LLM rate limiter. It is zero when no limit is
// configured.
func (p *Pipeline) RateLimit() extract.RateLimiterStatus { return p.limiter.Status() }

// Run processes one document. It returns a Result even when ctx is cancelled
// mid-run; records gathered before cancellation are merged.
func (p *Pipeline) Run(ctx context.Context, in Input) (res Result) {
	start := time.Now()
	res.Source = in.Filename
	defer func() { res.Duration = time.Since(start) }()

	subject, ok := report.ResolveSubject(in.Subject, in.Filename)
	if !ok {
		res.Err = &StageError{Stage: StageSubject, Err: fmt.Errorf("%w: %q", ErrNoSubject, in.Filename)}
		p.log.Error("subject unresolved", "source", in.Filename)
		return res
	}
	res.Subject = subject
	res.Record = report.Placeholder(subject)
	log := p.log.With("subject", subject, "source", in.Filename)

	doc, err := p.load(in)
	if err != nil {
		res.Err = &StageError{Stage: StageLoad, Err: err}
		log.Error("load failed", "error", err)
		return res
	}
	if doc.PageCount > 0 && doc.PageCount != len(doc.Pages) {
		log.Warn("page count mismatch", "declared", doc.PageCount, "extracted", len(doc.Pages))
	}
	text := doc.Text()
	res.ContentHash = ContentHashHex([]byte(text))

	chunks, err := chunker.Split(text, p.opts.Chunk)
	if err != nil {
		res.Err = &StageError{Stage: StageChunk, Err: err}
		log.Error("chunk failed", "error", err)
		return res
	}
	selected := relevance.Select(relevance.Rank(chunks, p.opts.Keywords), p.opts.TopN)
	log.Info("chunks selected", "pages", len(doc.Pages), "runes", doc.Len(), "chunks", len(chunks), "selected", len(selected))
	for rank, s := range selected {
		log.Debug("chunk", "rank", rank+1, "index", s.Chunk.Index, "score", s.Score,
			"page", doc.PageAt(s.Chunk.Offset), "hits", s.Hits)
	}
	if in.Hooks.Selected != nil {
		in.Hooks.Selected(len(chunks), len(selected))
	}

	records := p.extractAll(ctx, log, subject, selected, in.Hooks, &res)

	if len(records) == 0 {
		res.NoData = true
		log.Warn("no data", "attempted", res.Attempted, "interrupted", res.Interrupted)
		return res
	}
	cands := merge.Collect(records)
	if conflicts := cands.Conflicts(); len(conflicts) > 0 {
		res.Conflicts = conflicts
		log.Info("conflicting values", "fields", conflicts, "policy", p.opts.MergePolicy)
	}
	merged, err := merge.MergeWith(records, p.opts.MergePolicy)
	if err != nil {
		// Unreachable with a non-empty input; keep the placeholder.
		res.NoData = true
		return res
	}
	// Rows are keyed by subject, whatever name the report gives itself.
	if merged.CompanyName != subject {
		log.Info("company name replaced by subject", "reported", merged.CompanyName)
		merged.CompanyName = subject
	}
	res.Record = merged
	log.Info("merged", "records", len(records), "fields_filled", merged.Filled(),
		"failed", len(res.Failures), "interrupted", res.Interrupted)
	return res
}

func (p *Pipeline) load(in Input) (*document.Document, error) {
	switch {
	case in.Document != nil:
		if err := parser.CheckText(in.Document); err != nil {
			return nil, err
		}
		return in.Document, nil
	case in.Reader != nil:
		return parser.Load(in.Reader, in.Filename, p.opts.Parser)
	default:
		return parser.LoadFile(in.Filename, p.opts.Parser)
	}
}

// extractAll calls the extractor once per selected chunk, in rank order.
// Per-chunk failures are recorded and skipped. Cancellation stops the loop.
func (p *Pipeline) extractAll(ctx context.Context, log *slog.Logger, subject string, selected []relevance.Scored, hooks Hooks, res *Result) []report.Record {
	var records []report.Record
	for n, s := range selected {
		if n > 0 && !p.pause(ctx) {
			res.Interrupted = true
			break
		}
		if ctx.Err() != nil {
			res.Interrupted = true
			break
		}

		res.Attempted++
		rec, err := p.ext.Extract(ctx, s.Chunk.Text, subject)
		if err != nil && ctx.Err() != nil {
			res.Attempted--
			res.Interrupted = true
			log.Info("extraction interrupted", "chunk", s.Chunk.Index, "gathered", len(records))
			break
		}
		if hooks.ChunkDone != nil {
			hooks.ChunkDone(s.Chunk.Index, err)
		}
		if err != nil {
			res.Failures = append(res.Failures, ChunkFailure{
				Index: s.Chunk.Index,
				Kind:  extract.Outcome(err),
				Error: extract.DescribeError(err),
			})
			log.Warn("chunk extraction failed", "chunk", s.Chunk.Index, "kind", extract.Outcome(err),
				"error", extract.DescribeError(err))
			continue
		}
		res.Succeeded++
		records = append(records, rec)
	}
	return records
}

// pause waits the courtesy delay. It reports false if ctx ended first.
func (p *Pipeline) pause(ctx context.Context) bool {
	if p.opts.Delay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(p.opts.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
