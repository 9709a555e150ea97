package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/susdigest/internal/parser"
	"github.com/dgallion1/susdigest/internal/report"
	"github.com/dgallion1/susdigest/internal/store"
)

// Worker processes a single extraction job.
type Worker struct {
	pipe  *Pipeline
	store store.Store
	log   *slog.Logger
}

// NewWorker creates a worker that saves results to st.
func NewWorker(pipe *Pipeline, st store.Store, log *slog.Logger) *Worker {
	return &Worker{pipe: pipe, store: st, log: log}
}

// Process runs parse, dedup, extract and store for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	subject, ok := report.ResolveSubject(job.Subject, job.Filename)
	if !ok {
		log.Error("subject unresolved")
		job.AddError(fmt.Sprintf("subject: %s", ErrNoSubject))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetSubject(subject)
	log = log.With("subject", subject)

	doc, err := parser.Load(bytes.NewReader(job.FileData()), job.Filename, w.pipe.opts.Parser)
	job.releaseFile()
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	hash := ContentHashHex([]byte(doc.Text()))
	job.SetContentHash(hash)

	// Phase 1.5: Dedup check
	if !job.Force {
		existing, err := w.store.FindByHash(ctx, hash)
		switch {
		case err == nil:
			log.Info("duplicate document, skipping", "existing_subject", existing.Subject)
			job.SetRecord(existing.Record)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("dedup check failed, proceeding", "error", err)
		}
	}

	// Phase 2: Extract
	job.SetStatus(StatusExtracting, "extracting")
	res := w.pipe.Run(ctx, Input{
		Subject:  subject,
		Filename: job.Filename,
		Document: doc,
		Hooks: Hooks{
			Selected:  job.SetSelected,
			ChunkDone: func(_ int, err error) { job.ChunkDone(err != nil) },
		},
	})
	for _, f := range res.Failures {
		job.AddError(fmt.Sprintf("chunk %d: %s: %s", f.Index, f.Kind, f.Error))
	}
	if res.Err != nil {
		job.AddError(res.Err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetRecord(res.Record)
	if res.NoData {
		job.SetStatus(StatusNoData, "done")
		return
	}

	// Phase 3: Store. The job context may already be cancelled on shutdown;
	// partial results are still saved.
	job.SetStatus(StatusStoring, "storing")
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	err = w.store.Put(storeCtx, store.Entry{
		Subject:     subject,
		Record:      res.Record,
		Source:      job.Filename,
		ContentHash: res.ContentHash,
		Model:       w.pipe.Model(),
		Conflicts:   res.Conflicts,
		Failures:    len(res.Failures),
	})
	if err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	if len(res.Failures) > 0 || res.Interrupted {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("job done", "fields_filled", res.Record.Filled(), "failed_chunks", len(res.Failures),
		"interrupted", res.Interrupted, "duration", res.Duration)
}
