package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/susdigest/internal/config"
	"github.com/dgallion1/susdigest/internal/export"
	"github.com/dgallion1/susdigest/internal/pipeline"
	"github.com/dgallion1/susdigest/internal/report"
	"github.com/dgallion1/susdigest/internal/store"
)

// writeTable writes records to path in the format named by its extension.
// The file is replaced atomically.
func writeTable(path string, records []report.Record) error {
	format, err := export.ParseFormat(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, records); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// readTable loads an existing CSV or JSON table. A missing file is empty.
func readTable(path string) ([]report.Record, error) {
	format, err := export.ParseFormat(path)
	if err != nil {
		return nil, err
	}
	if format == export.XLSX {
		return nil, fmt.Errorf("%s: only csv and json tables can be read", path)
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return export.Read(f, format)
}

// mergeInto replaces or appends rec's row in the table at path.
func mergeInto(path string, rec report.Record) error {
	existing, err := readTable(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return writeTable(path, export.Upsert(existing, rec))
}

// openStore returns the configured result store, or nil when neither
// Postgres nor Redis is configured.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" && cfg.RedisURL == "" {
		return nil, nil
	}
	return store.Open(ctx, cfg.DatabaseURL, cfg.RedisURL, cfg.ResultTTL, log)
}

// persist saves a result that produced data.
func persist(ctx context.Context, st store.Store, model string, res pipeline.Result, log *slog.Logger) {
	if st == nil || res.Err != nil || res.NoData {
		return
	}
	err := st.Put(context.WithoutCancel(ctx), store.Entry{
		Subject:     res.Subject,
		Record:      res.Record,
		Source:      filepath.Base(res.Source),
		ContentHash: res.ContentHash,
		Model:       model,
		Conflicts:   res.Conflicts,
		Failures:    len(res.Failures),
	})
	if err != nil {
		log.Error("store failed", "subject", res.Subject, "error", err)
	}
}
