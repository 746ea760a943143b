package cache

import (
	"sync"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const BUCKET_NAME = "responses"

// Cache stores response bodies keyed by URL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Contains(key string) bool
	Len() int
	// Clear removes every entry.
	Clear() error
}

// BoltCache is a persistent cache that uses BoltDB as the backend.
type BoltCache struct {
	db *bolt.DB
}

// NewBoltCache creates a new BoltCache instance with the given path.
// It is up to the caller to close the database when it is no longer needed.
func NewBoltCache(path string) (*BoltCache, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open cache %s", path)
	}

	// Create the bucket if it doesn't exist
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BUCKET_NAME))
		return err
	})

	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create default bucket")
	}

	return &BoltCache{
		db: db,
	}, nil
}

func (c *BoltCache) Get(key string) (value []byte, exists bool) {
	c.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket([]byte(BUCKET_NAME)).Get([]byte(key))
		if val != nil {
			// Bolt values are only valid for the life of the transaction.
			value = append([]byte(nil), val...)
			exists = true
		}

		return nil
	})

	return
}

func (c *BoltCache) Put(key string, value []byte) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BUCKET_NAME)).Put([]byte(key), value)
	})
}

func (c *BoltCache) Contains(key string) bool {
	_, exists := c.Get(key)
	return exists
}

func (c *BoltCache) Len() int {
	var count int
	c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_NAME))
		count = b.Stats().KeyN
		return nil
	})

	return count
}

// Clear drops and recreates the bucket.
func (c *BoltCache) Clear() error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(BUCKET_NAME)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(BUCKET_NAME))
		return err
	})

	return errors.Wrap(err, "failed to clear cache")
}

// Close closes the database.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

// MemoryCache is an in-process cache, used for tests and cache-less runs.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *MemoryCache) Put(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *MemoryCache) Contains(key string) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	return nil
}
