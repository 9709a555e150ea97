package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/susdigest/internal/report"
)

// BatchSummary describes a multi-document run.
type BatchSummary struct {
	Model       string    `json:"model"`
	Documents   int       `json:"documents"`
	Extracted   int       `json:"extracted"`
	NoData      int       `json:"no_data"`
	Failed      int       `json:"failed"`
	Interrupted bool      `json:"interrupted"`
	FinishedAt  time.Time `json:"finished_at"`
}

// RunBatch runs one pipeline per input with at most concurrency documents
// in flight. Results are in input order and every input yields a row, so a
// failed document still appears as a placeholder.
func (p *Pipeline) RunBatch(ctx context.Context, inputs []Input, concurrency int) ([]Result, BatchSummary) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]Result, len(inputs))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = p.Run(ctx, in)
			return nil
		})
	}
	_ = g.Wait()

	sum := Summarize(p.Model(), results)
	p.log.Info("batch complete", "model", sum.Model, "documents", sum.Documents,
		"extracted", sum.Extracted, "no_data", sum.NoData, "failed", sum.Failed,
		"interrupted", sum.Interrupted)
	return results, sum
}

// Summarize counts extracted, no-data and failed documents.
func Summarize(model string, results []Result) BatchSummary {
	s := BatchSummary{Model: model, Documents: len(results), FinishedAt: time.Now().UTC()}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.NoData:
			s.NoData++
		default:
			s.Extracted++
		}
		if r.Interrupted {
			s.Interrupted = true
		}
	}
	return s
}

// Records returns a table row per result. Results without a subject are
// skipped since they cannot be keyed.
func Records(results []Result) []report.Record {
	out := make([]report.Record, 0, len(results))
	for _, r := range results {
		if r.Subject == "" {
			continue
		}
		out = append(out, r.Record)
	}
	return out
}
