// Package bbolt provides a BoltDB-backed persistence gateway. Snapshots
// are stored as JSON payloads in a single bucket keyed by shop id, which is
// exactly the opaque key-value contract the gateway promises.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/store"
)

const configBucket = "shopconfig"

// Store provides a BoltDB-backed configuration gateway.
type Store struct {
	db *bbolt.DB
}

var _ store.Gateway = (*Store)(nil)

// Open opens a BoltDB-backed store at the provided path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureBucket() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(configBucket))
		return err
	})
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save persists a configuration snapshot, replacing any prior one for the
// same shop wholesale.
func (s *Store) Save(ctx context.Context, snap draft.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(snap.ShopID) == "" {
		return fmt.Errorf("shop id is required")
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal shop config: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(configBucket))
		if bucket == nil {
			return fmt.Errorf("shopconfig bucket is missing")
		}
		return bucket.Put([]byte(snap.ShopID), payload)
	})
}

// Load fetches the saved configuration snapshot for a shop.
func (s *Store) Load(ctx context.Context, shopID string) (draft.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return draft.Snapshot{}, err
	}
	if strings.TrimSpace(shopID) == "" {
		return draft.Snapshot{}, fmt.Errorf("shop id is required")
	}

	var snap draft.Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(configBucket))
		if bucket == nil {
			return fmt.Errorf("shopconfig bucket is missing")
		}

		payload := bucket.Get([]byte(shopID))
		if payload == nil {
			return store.ErrNotFound
		}

		return json.Unmarshal(payload, &snap)
	})
	if err != nil {
		return draft.Snapshot{}, err
	}

	return snap, nil
}
