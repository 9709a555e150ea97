package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dgallion1/susdigest/internal/chunker"
	"github.com/dgallion1/susdigest/internal/report"
)

// Options tune an Extractor.
type Options struct {
	Timeout    time.Duration // per LLM call
	MaxRetries int
	RetryDelay time.Duration
	Strict     bool // reject unknown response keys instead of dropping them
	Limiter    *RateLimiter
	Stats      *LLMStats
}

// Extractor turns one chunk of text into a partial Record via an LLM.
type Extractor struct {
	llm    Completer
	opts   Options
	schema *jsonschema.Schema
	log    *slog.Logger
}

// NewExtractor compiles the record schema. Zero timeout and retry delay
// fall back to 120s and 1s.
func NewExtractor(llm Completer, opts Options, log *slog.Logger) (*Extractor, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	schema, err := compileSchema(opts.Strict)
	if err != nil {
		return nil, err
	}
	return &Extractor{llm: llm, opts: opts, schema: schema, log: log}, nil
}

// Model reports the underlying LLM model name.
func (e *Extractor) Model() string { return e.llm.Model() }

// Extract asks the LLM for every record field found in chunkText. A missing
// company name defaults to subject. Failures are *Error values, except when
// ctx itself is cancelled, in which case the context error is returned.
func (e *Extractor) Extract(ctx context.Context, chunkText, subject string) (report.Record, error) {
	start := time.Now()
	rec, err := e.extract(ctx, chunkText, subject)
	if e.opts.Stats != nil {
		e.opts.Stats.RecordResult(time.Since(start).Milliseconds(), err)
	}
	return rec, err
}

func (e *Extractor) extract(ctx context.Context, chunkText, subject string) (report.Record, error) {
	rid := uuid.NewString()
	log := e.log.With("req_id", rid, "subject", subject)

	req := Request{
		System:      SystemPrompt,
		Prompt:      BuildPrompt(subject, chunkText),
		JSONObject:  true,
		Temperature: 0,
	}
	log.Debug("llm request", "model", e.llm.Model(), "prompt_tokens_est", chunker.EstimateTokens(req.Prompt))

	start := time.Now()
	raw, err := e.complete(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return report.Record{}, fmt.Errorf("extract: %w", ctx.Err())
		}
		return report.Record{}, err
	}

	text := stripCodeBlock(raw)
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return report.Record{}, newError(ErrUnparseable, fmt.Errorf("%w (raw: %s)", err, truncate(text, 200)))
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return report.Record{}, newError(ErrUnparseable, fmt.Errorf("expected JSON object, got %T", v))
	}

	if dropped := sanitize(obj, e.opts.Strict); len(dropped) > 0 {
		log.Debug("dropped unknown fields", "fields", dropped)
	}
	if name, _ := obj["company_name"].(string); name == "" {
		obj["company_name"] = subject
	}

	rec, err := decodeRecord(e.schema, obj)
	if err != nil {
		return report.Record{}, err
	}
	log.Debug("llm extraction ok", "filled", rec.Filled(), "ms", time.Since(start).Milliseconds())
	return rec, nil
}

// complete runs one LLM call with rate limiting, a per-attempt deadline and
// retries for transient errors, then classifies what failed.
func (e *Extractor) complete(ctx context.Context, req Request) (string, error) {
	var out string
	var timedOut bool
	err := withRetry(ctx, e.opts.MaxRetries, e.opts.RetryDelay, func() error {
		if err := e.opts.Limiter.Wait(ctx); err != nil {
			return err
		}
		callCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()

		resp, err := e.llm.Complete(callCtx, req)
		if err != nil {
			timedOut = errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
			return err
		}
		timedOut = false
		out = resp
		return nil
	})
	switch {
	case err == nil:
		return out, nil
	case ctx.Err() != nil:
		return "", ctx.Err()
	case timedOut:
		return "", newError(ErrTimeout, err)
	default:
		return "", newError(ErrUnavailable, err)
	}
}

// DescribeError gives a short excerpt of err for logs.
func DescribeError(err error) string {
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	return truncate(msg, 200)
}
