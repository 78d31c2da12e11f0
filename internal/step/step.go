package step

import (
	"errors"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"avro-projector/internal/config"
	"avro-projector/internal/decode"
	"avro-projector/internal/errs"
	"avro-projector/internal/projection"
	"avro-projector/internal/schema"
	"avro-projector/internal/schemacache"
)

// ErrNotReady is returned when rows are requested before Open or Init.
var ErrNotReady = errors.New("step is not initialized")

// Step projects the objects of one input into rows. A Step holds decoding
// state and is used from one goroutine at a time.
type Step struct {
	cfg     *config.Config
	leaves  []projection.Leaf
	fs      afero.Fs
	logger  log.Logger
	reg     prometheus.Registerer
	onError ErrorHandler
	metrics *metrics
	codecs  *decode.Codecs

	// reader is the configured reader schema, nil when none is configured.
	reader *schema.Schema
	cache  *schemacache.Cache

	projector *projection.Projector

	file fileInput
	rows fieldInput
}

// New validates cfg and prepares a step. The reader schema, when
// configured, is loaded here; problems with it or with cfg are setup errors.
func New(cfg *config.Config, opts ...Option) (*Step, error) {
	s := &Step{cfg: cfg}

	for _, opt := range opts {
		opt(s)
	}

	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}

	if s.logger == nil {
		s.logger = log.NewNopLogger()
	}

	if err := cfg.Validate().Error(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	leaves, err := cfg.Leaves()
	if err != nil {
		return nil, err
	}

	s.leaves = leaves
	s.metrics = newMetrics(s.reg)
	s.codecs = decode.NewCodecs(cfg.Schema.CacheSize)

	if !cfg.Source().IsZero() {
		s.reader, err = cfg.Source().Load(s.fs)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Mode() == config.ModeField && cfg.PerRow() {
		s.cache, err = schemacache.New(s.fs, schemacache.Config{
			Disabled:   !cfg.CacheEnabled(),
			Size:       cfg.Schema.CacheSize,
			StrictOnce: cfg.Schema.StrictOnce,
			KeyIsPath:  cfg.Schema.FieldIsPath,
		}, s.reader, s.logger, s.reg)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Compiled returns the compiled configuration once Open or Init succeeded.
func (s *Step) Compiled() (*projection.Compiled, bool) {
	if s.projector == nil {
		return nil, false
	}

	return s.projector.Compiled(), true
}

// Columns returns the names of the output columns: the incoming columns in
// field mode, followed by one column per leaf.
func (s *Step) Columns() []string {
	c, ok := s.Compiled()
	if !ok {
		return nil
	}

	return append(append([]string(nil), s.rows.columns...), c.Columns()...)
}

// Close releases the open input and drops cached schemas.
func (s *Step) Close() error {
	if s.cache != nil {
		s.cache.Purge()
	}

	return s.file.close(s.logger)
}

func (s *Step) compile(sch *schema.Schema, offset int) error {
	c, err := projection.Compile(s.leaves, sch, offset)
	if err != nil {
		return err
	}

	if sch != nil {
		d := projection.Validate(c, sch)
		for _, w := range d.All() {
			level.Warn(s.logger).Log("msg", "path check", "severity", w.Severity, "diagnostic", w.String())
		}
	}

	s.projector = projection.NewProjector(c, projection.Options{
		IgnoreMissing: s.cfg.IgnoreMissingFields,
		DefaultSchema: s.reader,
	})

	return nil
}

// route hands a failed input to the error handler. It reports false when
// the error must be returned instead.
func (s *Step) route(row []any, err error, routable bool) bool {
	if s.onError == nil || !routable {
		return false
	}

	kind := errs.Kind(err)
	s.metrics.routed.WithLabelValues(kind).Inc()
	level.Warn(s.logger).Log("msg", "input routed to error handling", "kind", kind, "err", err)
	s.onError(row, err, fmt.Sprintf("failed to project input: %v", err))

	return true
}

func (s *Step) emitted(n int) {
	s.metrics.objects.Inc()
	s.metrics.rows.Add(float64(n))
}
