package schemacache

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avro-projector/internal/datum"
	"avro-projector/internal/errs"
	"avro-projector/internal/schema"
)

const userSchema = `{"type": "record", "name": "User", "fields": [{"name": "id", "type": "long"}]}`

func newCache(t *testing.T, cfg Config, def *schema.Schema) (*Cache, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	c, err := New(afero.NewMemMapFs(), cfg, def, log.NewLogfmtLogger(&buf), prometheus.NewRegistry())
	require.NoError(t, err)

	return c, &buf
}

func mustParse(t *testing.T, text string) *schema.Schema {
	t.Helper()

	s, err := schema.Parse(text)
	require.NoError(t, err)

	return s
}

func TestGetOrResolveCaches(t *testing.T) {
	for _, strict := range []bool{false, true} {
		c, _ := newCache(t, Config{StrictOnce: strict}, nil)

		first, err := c.GetOrResolve(userSchema)
		require.NoError(t, err)
		assert.Equal(t, "User", first.Schema.FullName())

		second, err := c.GetOrResolve("  " + userSchema + "\n")
		require.NoError(t, err)
		assert.Same(t, first, second)

		assert.Equal(t, 1, c.Len())
		assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.hits), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.misses), 0)
	}
}

func TestGetOrResolveEmptyKey(t *testing.T) {
	c, _ := newCache(t, Config{}, nil)

	_, err := c.GetOrResolve("  ")
	require.ErrorIs(t, err, errs.ErrSchemaLoad)

	def := mustParse(t, userSchema)
	c, _ = newCache(t, Config{}, def)

	e, err := c.GetOrResolve("")
	require.NoError(t, err)
	assert.Same(t, def, e.Schema)
}

func TestGetOrResolveFallback(t *testing.T) {
	def := mustParse(t, userSchema)
	c, logs := newCache(t, Config{}, def)

	e, err := c.GetOrResolve(`{"type": "record", "name": "Broken"`)
	require.NoError(t, err)
	assert.Same(t, def, e.Schema)
	assert.Equal(t, 0, c.Len(), "fallbacks are not cached")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.fallbacks), 0)
	assert.Contains(t, logs.String(), "using default")

	c, _ = newCache(t, Config{}, nil)

	_, err = c.GetOrResolve(`{"type": "record", "name": "Broken"`)
	require.ErrorIs(t, err, errs.ErrSchemaLoad)
}

func TestGetOrResolvePaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/schemas/user.avsc", []byte(userSchema), 0o644))

	c, err := New(fs, Config{KeyIsPath: true}, nil, nil, nil)
	require.NoError(t, err)

	e, err := c.GetOrResolve("/schemas/user.avsc")
	require.NoError(t, err)
	assert.Equal(t, "User", e.Schema.FullName())

	_, err = c.GetOrResolve("/schemas/missing.avsc")
	require.ErrorIs(t, err, errs.ErrSchemaLoad)
}

func TestDisabledCache(t *testing.T) {
	c, _ := newCache(t, Config{Disabled: true}, nil)

	first, err := c.GetOrResolve(userSchema)
	require.NoError(t, err)

	second, err := c.GetOrResolve(userSchema)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Schema.String(), second.Schema.String())
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentResolution(t *testing.T) {
	c, _ := newCache(t, Config{StrictOnce: true}, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		entries = map[*Entry]bool{}
	)

	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			e, err := c.GetOrResolve(userSchema)
			if !assert.NoError(t, err) {
				return
			}

			// Each caller decodes into its own seed; the shared entry only
			// supplies the schema.
			seed, err := datum.NewSeed(e.Schema)
			assert.NoError(t, err)

			for j := range 4 {
				id := int64(i*10 + j)

				v, err := datum.Bind(map[string]any{"id": id}, e.Schema, seed)
				assert.NoError(t, err)
				assert.Same(t, seed, v)

				got, _ := v.(*datum.Record).Get("id")
				assert.Equal(t, id, got)
			}

			mu.Lock()
			entries[e] = true
			mu.Unlock()
		}()
	}

	wg.Wait()

	assert.Len(t, entries, 1)
}

func TestEvictionAndPurge(t *testing.T) {
	c, _ := newCache(t, Config{Size: 2}, nil)

	for _, name := range []string{"A", "B", "C"} {
		_, err := c.GetOrResolve(`{"type": "record", "name": "` + name + `", "fields": []}`)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "short", Key("short"))

	long := strings.Repeat("x", maxPlainKey+1)
	k := Key(long)
	assert.True(t, strings.HasPrefix(k, "xxh:"))
	assert.Equal(t, k, Key(long))
	assert.NotEqual(t, k, Key(long+"y"))
}
