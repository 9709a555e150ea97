package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/susdigest/internal/config"
	"github.com/dgallion1/susdigest/internal/extract"
	"github.com/dgallion1/susdigest/internal/store"
)

// Orchestrator runs queued extraction jobs on a fixed worker pool. Workers
// share one Pipeline, so the LLM rate limiter is shared too.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	pipe  *Pipeline
	store store.Store
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, pipe *Pipeline, st store.Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		pipe:  pipe,
		store: st,
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.pipe, o.store, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop cancels in-flight jobs and waits for workers to exit.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// BatchJobs returns the jobs of a batch.
func (o *Orchestrator) BatchJobs(batchID string) []*Job {
	return o.jobs.Batch(batchID)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Store returns the result store for direct use by API handlers.
func (o *Orchestrator) Store() store.Store {
	return o.store
}

// Model reports the LLM model the pipeline uses.
func (o *Orchestrator) Model() string {
	return o.pipe.Model()
}

// RateLimit reports the LLM rate limiter shared by the workers.
func (o *Orchestrator) RateLimit() extract.RateLimiterStatus {
	return o.pipe.RateLimit()
}
