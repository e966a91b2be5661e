package bboltstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bxcodec/httpcache/cache"
	"github.com/stretchr/testify/assert"
	"go.etcd.io/bbolt"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()

	db, err := bbolt.Open(filepath.Join(t.TempDir(), "cache.db"), 0600, nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { db.Close() })

	return New(db)
}

func TestStorage(t *testing.T) {
	a := assert.New(t)

	s := newStorage(t)

	a.Equal("bbolt", s.Origin())

	_, err := s.Get("missing")
	a.ErrorIs(err, cache.ErrCacheMissed)

	value := cache.CachedResponse{
		DumpedResponse: []byte("HTTP/1.1 200 OK\r\n\r\nhello"),
		RequestURI:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		RequestMethod:  "GET",
		CachedTime:     time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	}

	a.NoError(s.Set("key", value))

	got, err := s.Get("key")
	if a.NoError(err) {
		a.Equal(value.DumpedResponse, got.DumpedResponse)
		a.Equal(value.RequestURI, got.RequestURI)
		a.Equal(value.RequestMethod, got.RequestMethod)
		a.True(value.CachedTime.Equal(got.CachedTime))
	}

	a.NoError(s.Delete("key"))

	_, err = s.Get("key")
	a.ErrorIs(err, cache.ErrCacheMissed)
}

func TestStorageFlush(t *testing.T) {
	a := assert.New(t)

	s := newStorage(t)

	a.NoError(s.Flush())
	a.NoError(s.Delete("nothing"))

	a.NoError(s.Set("a", cache.CachedResponse{RequestURI: "a"}))
	a.NoError(s.Set("b", cache.CachedResponse{RequestURI: "b"}))

	a.NoError(s.Flush())

	_, err := s.Get("a")
	a.ErrorIs(err, cache.ErrCacheMissed)
	_, err = s.Get("b")
	a.ErrorIs(err, cache.ErrCacheMissed)
}
