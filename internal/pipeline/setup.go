package pipeline

import (
	"context"
	"io"
	"log/slog"

	"github.com/dgallion1/susdigest/internal/chunker"
	"github.com/dgallion1/susdigest/internal/config"
	"github.com/dgallion1/susdigest/internal/extract"
	"github.com/dgallion1/susdigest/internal/merge"
	"github.com/dgallion1/susdigest/internal/parser"
)

// OptionsFrom maps configuration onto pipeline options.
func OptionsFrom(cfg config.Config) (Options, error) {
	policy, err := merge.ParsePolicy(cfg.MergePolicy)
	if err != nil {
		return Options{}, err
	}
	opts := DefaultOptions()
	opts.Chunk = chunker.Config{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}
	opts.TopN = cfg.TopChunks
	opts.Delay = cfg.ExtractDelay
	opts.MergePolicy = policy
	opts.Parser = parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}
	if len(cfg.Keywords) > 0 {
		opts.Keywords = cfg.Keywords
	}
	return opts, nil
}

// Build wires an LLM client, extractor and pipeline from configuration.
// The returned close func releases the LLM client.
func Build(ctx context.Context, cfg config.Config, stats *extract.LLMStats, log *slog.Logger) (*Pipeline, func() error, error) {
	llm, err := extract.NewCompleter(ctx, extract.ProviderConfig{
		Provider:        cfg.LLMProvider,
		BaseURL:         cfg.LLMBaseURL,
		APIKey:          cfg.LLMAPIKey,
		Model:           cfg.LLMModel,
		DisableThinking: cfg.LLMDisableThinking,
	})
	if err != nil {
		return nil, nil, err
	}
	closeLLM := func() error {
		if c, ok := llm.(io.Closer); ok {
			return c.Close()
		}
		return nil
	}

	limiter := extract.NewRateLimiter(cfg.LLMRequestsPerMinute)
	ext, err := extract.NewExtractor(llm, extract.Options{
		Timeout:    cfg.LLMTimeout,
		MaxRetries: cfg.LLMMaxRetries,
		Strict:     cfg.StrictFields,
		Limiter:    limiter,
		Stats:      stats,
	}, log)
	if err != nil {
		closeLLM()
		return nil, nil, err
	}

	opts, err := OptionsFrom(cfg)
	if err != nil {
		closeLLM()
		return nil, nil, err
	}
	p, err := New(ext, opts, log)
	if err != nil {
		closeLLM()
		return nil, nil, err
	}
	p.limiter = limiter
	log.Info("pipeline ready", "provider", cfg.LLMProvider, "model", llm.Model(),
		"top_chunks", opts.TopN, "chunk_size", opts.Chunk.Size, "merge_policy", opts.MergePolicy)
	return p, closeLLM, nil
}
