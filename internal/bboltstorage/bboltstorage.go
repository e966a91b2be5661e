package bboltstorage

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/bxcodec/httpcache/cache"
	"go.etcd.io/bbolt"
)

var bucketName = []byte("rfc")

var errNotFound = errors.New("not found")

type Storage struct {
	db *bbolt.DB
}

func New(db *bbolt.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Set(key string, value cache.CachedResponse) error {
	buf := bytes.NewBuffer(nil)
	if err := gob.NewEncoder(buf).Encode(value); err != nil {
		return fmt.Errorf("bboltstorage.Set: %w", err)
	}

	if err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}

		return b.Put([]byte(key), buf.Bytes())
	}); err != nil {
		return fmt.Errorf("bboltstorage.Set: %w: %s", cache.ErrFailedToSaveToCache, err)
	}

	return nil
}

func (s *Storage) Get(key string) (cache.CachedResponse, error) {
	var res cache.CachedResponse

	if err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return errNotFound
		}

		d := b.Get([]byte(key))
		if d == nil {
			return errNotFound
		}

		return gob.NewDecoder(bytes.NewReader(d)).Decode(&res)
	}); err != nil {
		if errors.Is(err, errNotFound) {
			return cache.CachedResponse{}, cache.ErrCacheMissed
		}

		return cache.CachedResponse{}, fmt.Errorf("bboltstorage.Get: %w", err)
	}

	return res, nil
}

func (s *Storage) Delete(key string) error {
	if err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}

		return b.Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("bboltstorage.Delete: %w", err)
	}

	return nil
}

// Flush drops every cached response.
func (s *Storage) Flush() error {
	if err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketName) == nil {
			return nil
		}

		return tx.DeleteBucket(bucketName)
	}); err != nil {
		return fmt.Errorf("bboltstorage.Flush: %w", err)
	}

	return nil
}

func (s *Storage) Origin() string {
	return "bbolt"
}
