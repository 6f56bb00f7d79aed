package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// generationPrefix namespaces history records. Keys embed the creation
// timestamp so a reverse iteration yields newest-first.
const generationPrefix = "gen:"

// keyTimeLayout is fixed width; RFC3339Nano trims trailing zeros, which
// would break the lexicographic ordering the keys rely on.
const keyTimeLayout = "2006-01-02T15:04:05.000000000Z"

// Generation is one recorded query generation.
type Generation struct {
	ID        string    `json:"id"`
	Round     int       `json:"round"`
	Pattern   string    `json:"pattern"`
	Backend   string    `json:"backend"`
	Query     string    `json:"query"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func generationKey(g *Generation) []byte {
	ts := g.CreatedAt.UTC().Format(keyTimeLayout)
	return []byte(generationPrefix + ts + ":" + g.ID)
}

// PutGeneration records a generation. CreatedAt is stamped if unset.
func (s *Store) PutGeneration(ctx context.Context, g *Generation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal generation: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(generationKey(g), data)
	})
	if err != nil {
		return fmt.Errorf("store generation %s: %w", g.ID, err)
	}

	s.logger.Debug("generation recorded", "id", g.ID, "query", g.Query)
	return nil
}

// ListGenerations returns up to limit records, newest first.
func (s *Store) ListGenerations(ctx context.Context, limit int) ([]Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	prefix := []byte(generationPrefix)
	out := make([]Generation, 0, limit)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the end of the prefix range, then walk backwards.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var g Generation
				if err := json.Unmarshal(val, &g); err != nil {
					return fmt.Errorf("unmarshal generation: %w", err)
				}
				out = append(out, g)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
