package schemacache

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"avro-projector/internal/errs"
	"avro-projector/internal/schema"
)

const (
	// DefaultSize bounds the number of cached schemas.
	DefaultSize = 512
	// maxPlainKey is the longest key stored verbatim; longer keys (inline
	// schema texts, mostly) are stored by digest.
	maxPlainKey = 256
)

// Entry is a resolved schema. Entries are shared between callers and never
// modified; decoding state such as seed objects belongs to the caller.
type Entry struct {
	Schema *schema.Schema
}

// NewEntry builds the entry for s.
func NewEntry(s *schema.Schema) *Entry {
	return &Entry{Schema: s}
}

// Config controls a Cache.
type Config struct {
	// Disabled resolves every key anew.
	Disabled bool
	// Size bounds the number of entries; zero means DefaultSize.
	Size int
	// StrictOnce resolves each key at most once even under concurrent misses.
	StrictOnce bool
	// KeyIsPath makes keys schema file paths instead of schema texts.
	KeyIsPath bool
}

// Cache maps schema keys to entries. It is safe for concurrent use.
type Cache struct {
	cfg     Config
	fs      afero.Fs
	def     *Entry
	entries *lru.Cache[string, *Entry]
	group   singleflight.Group
	logger  log.Logger
	metrics *metrics
}

// New creates a cache reading schema files from fs. def, when not nil, is
// used for empty keys and keys that fail to resolve. A nil logger discards
// logs and a nil registerer leaves the metrics unregistered.
func New(fs afero.Fs, cfg Config, def *schema.Schema, logger log.Logger, reg prometheus.Registerer) (*Cache, error) {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}

	if logger == nil {
		logger = log.NewNopLogger()
	}

	entries, err := lru.New[string, *Entry](cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema cache: %w", err)
	}

	c := &Cache{
		cfg:     cfg,
		fs:      fs,
		entries: entries,
		logger:  logger,
		metrics: newMetrics(reg),
	}

	if def != nil {
		c.def = NewEntry(def)
	}

	return c, nil
}

// Default returns the default entry, if one is configured.
func (c *Cache) Default() (*Entry, bool) {
	return c.def, c.def != nil
}

// GetOrResolve returns the entry for key, resolving and storing it on a miss.
// An empty key yields the default entry. A key that fails to resolve yields
// the default entry as well, without storing it; with no default either
// case is a *errs.SchemaLoadError.
func (c *Cache) GetOrResolve(key string) (*Entry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		if c.def == nil {
			return nil, &errs.SchemaLoadError{Source: "row", Err: errors.New("no schema and no default")}
		}

		return c.def, nil
	}

	if c.cfg.Disabled {
		e, err := c.resolve(key)
		return c.fallback(key, e, err)
	}

	id := Key(key)

	if e, ok := c.entries.Get(id); ok {
		c.metrics.hits.Inc()
		return e, nil
	}

	c.metrics.misses.Inc()

	if !c.cfg.StrictOnce {
		e, err := c.store(id, key)
		return c.fallback(key, e, err)
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		// A concurrent caller may have stored it while we waited.
		if e, ok := c.entries.Peek(id); ok {
			return e, nil
		}

		return c.store(id, key)
	})
	if err != nil {
		return c.fallback(key, nil, err)
	}

	return v.(*Entry), nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached entry. The default entry is kept.
func (c *Cache) Purge() {
	c.entries.Purge()
	c.metrics.size.Set(0)
}

func (c *Cache) resolve(key string) (*Entry, error) {
	s, err := schema.ResolveKey(c.fs, key, c.cfg.KeyIsPath)
	if err != nil {
		return nil, err
	}

	return NewEntry(s), nil
}

func (c *Cache) store(id, key string) (*Entry, error) {
	e, err := c.resolve(key)
	if err != nil {
		return nil, err
	}

	c.entries.Add(id, e)
	c.metrics.size.Set(float64(c.entries.Len()))
	level.Debug(c.logger).Log("msg", "cached schema", "key", describe(key), "kind", e.Schema.Kind)

	return e, nil
}

func (c *Cache) fallback(key string, e *Entry, err error) (*Entry, error) {
	if err == nil {
		return e, nil
	}

	if c.def == nil {
		var sle *errs.SchemaLoadError
		if errors.As(err, &sle) {
			return nil, err
		}

		return nil, &errs.SchemaLoadError{Source: describe(key), Err: err}
	}

	c.metrics.fallbacks.Inc()
	level.Warn(c.logger).Log("msg", "failed to resolve schema, using default", "key", describe(key), "err", err)

	return c.def, nil
}

// Key returns the storage key of a schema key: the key itself when short,
// otherwise a digest of it.
func Key(key string) string {
	if len(key) <= maxPlainKey {
		return key
	}

	return "xxh:" + strconv.FormatUint(xxhash.Sum64String(key), 16)
}

// describe shortens a key for messages.
func describe(key string) string {
	const limit = 64
	if len(key) <= limit {
		return key
	}

	return key[:limit] + "..."
}
