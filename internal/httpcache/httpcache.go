package httpcache

import (
	"bytes"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	rfccache "github.com/bxcodec/httpcache"
	"go.etcd.io/bbolt"

	"fknsrs.biz/p/ytreport/internal/bboltstorage"
	"fknsrs.biz/p/ytreport/internal/ctxclock"
)

const DefaultMaxAge = time.Hour * 24

type CachedResponse struct {
	UpdatedAt  time.Time
	URL        string
	Status     string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *CachedResponse) makeResponse(req *http.Request) *http.Response {
	return &http.Response{
		Status:        r.Status,
		StatusCode:    r.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        r.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Request:       req,
	}
}

// Storage persists responses for Transport.
type Storage interface {
	Fetch(u *url.URL) (*CachedResponse, error)
	Save(u *url.URL, res *http.Response, at time.Time) (*CachedResponse, error)
}

var bboltBucketName = []byte("responses")

// BBoltStorage keeps whole response bodies keyed by host and URL hash.
type BBoltStorage struct {
	db *bbolt.DB
}

func NewBBoltStorage(db *bbolt.DB) *BBoltStorage {
	return &BBoltStorage{db: db}
}

func makeBBoltKey(u *url.URL) []byte {
	h := sha1.New()
	io.WriteString(h, u.String())
	return []byte(path.Join(u.Host, hex.EncodeToString(h.Sum(nil))))
}

func (s *BBoltStorage) Fetch(u *url.URL) (*CachedResponse, error) {
	var d []byte

	if err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bboltBucketName)
		if b == nil {
			return nil
		}

		// values are only valid for the life of the transaction
		if v := b.Get(makeBBoltKey(u)); v != nil {
			d = append([]byte(nil), v...)
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("httpcache.BBoltStorage.Fetch: %w", err)
	}

	if d == nil {
		return nil, nil
	}

	var r CachedResponse
	if err := gob.NewDecoder(bytes.NewReader(d)).Decode(&r); err != nil {
		return nil, fmt.Errorf("httpcache.BBoltStorage.Fetch: %w", err)
	}

	return &r, nil
}

func (s *BBoltStorage) Save(u *url.URL, res *http.Response, at time.Time) (*CachedResponse, error) {
	d, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("httpcache.BBoltStorage.Save: %w", err)
	}

	r := CachedResponse{
		UpdatedAt:  at,
		URL:        u.String(),
		Status:     res.Status,
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       d,
	}

	buf := bytes.NewBuffer(nil)
	if err := gob.NewEncoder(buf).Encode(r); err != nil {
		return nil, fmt.Errorf("httpcache.BBoltStorage.Save: %w", err)
	}

	if err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bboltBucketName)
		if err != nil {
			return err
		}

		return b.Put(makeBBoltKey(u), buf.Bytes())
	}); err != nil {
		return nil, fmt.Errorf("httpcache.BBoltStorage.Save: %w", err)
	}

	return &r, nil
}

// Transport serves GET responses from storage until they are older than
// maxAge, ignoring whatever caching headers the server sent. Ages are
// measured with the clock in the request context when there is one.
type Transport struct {
	transport http.RoundTripper
	storage   Storage
	maxAge    time.Duration
}

func NewTransport(transport http.RoundTripper, storage Storage, maxAge time.Duration) *Transport {
	if transport == nil {
		transport = http.DefaultTransport
	}

	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}

	return &Transport{
		transport: transport,
		storage:   storage,
		maxAge:    maxAge,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.transport.RoundTrip(req)
	}

	now := ctxclock.NowOrReal(req.Context())

	if cr, err := t.storage.Fetch(req.URL); err == nil && cr != nil && now.Sub(cr.UpdatedAt) < t.maxAge {
		return cr.makeResponse(req), nil
	}

	res, err := t.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return res, nil
	}

	defer res.Body.Close()

	cr, err := t.storage.Save(req.URL, res, now)
	if err != nil {
		return nil, fmt.Errorf("httpcache.Transport.RoundTrip: %w", err)
	}

	return cr.makeResponse(req), nil
}

type Options struct {
	// MaxAge applies to the plain mode only.
	MaxAge time.Duration
	// RFC switches to a cache that honours Cache-Control and friends.
	RFC     bool
	Timeout time.Duration
}

// NewClient builds an http client whose responses are cached in db.
func NewClient(db *bbolt.DB, opts Options) (*http.Client, error) {
	c := &http.Client{Timeout: opts.Timeout}

	if opts.RFC {
		if _, err := rfccache.NewWithCustomStorageCache(c, true, bboltstorage.New(db)); err != nil {
			return nil, fmt.Errorf("httpcache.NewClient: %w", err)
		}

		return c, nil
	}

	c.Transport = NewTransport(nil, NewBBoltStorage(db), opts.MaxAge)

	return c, nil
}
