// Package store persists merged records per subject so results survive
// restarts and repeated uploads can be skipped.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/susdigest/internal/report"
)

// ErrNotFound is returned when no entry matches.
var ErrNotFound = errors.New("not found")

// Entry is the stored outcome for one subject.
type Entry struct {
	Subject     string        `json:"subject"`
	Record      report.Record `json:"record"`
	Source      string        `json:"source"`
	ContentHash string        `json:"content_hash"`
	Model       string        `json:"model,omitempty"`
	NoData      bool          `json:"no_data"`
	Conflicts   []string      `json:"conflicts,omitempty"`
	Failures    int           `json:"failures"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Store keeps one Entry per subject. Subjects compare case-insensitively.
type Store interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, subject string) (Entry, error)
	// FindByHash returns the entry last produced from a document with the
	// given content hash.
	FindByHash(ctx context.Context, hash string) (Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, subject string) error
	Close() error
}

func key(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}

func sortEntries(es []Entry) {
	sort.Slice(es, func(i, j int) bool { return key(es[i].Subject) < key(es[j].Subject) })
}

// Records extracts the records of entries in order.
func Records(es []Entry) []report.Record {
	out := make([]report.Record, len(es))
	for i, e := range es {
		out[i] = e.Record
	}
	return out
}

// Open picks a backend: Postgres when databaseURL is set, else Redis when
// redisURL is set, else memory.
func Open(ctx context.Context, databaseURL, redisURL string, ttl time.Duration, log *slog.Logger) (Store, error) {
	switch {
	case databaseURL != "":
		s, err := NewPostgresStore(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		log.Info("result store", "backend", "postgres")
		return s, nil
	case redisURL != "":
		s, err := NewRedisStoreFromURL(ctx, redisURL, ttl, log)
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		log.Info("result store", "backend", "redis", "ttl", ttl)
		return s, nil
	default:
		log.Info("result store", "backend", "memory")
		return NewMemoryStore(), nil
	}
}
