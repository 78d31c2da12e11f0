package step

import (
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
)

// ErrorHandler receives an input that failed to project: the incoming row
// (nil in file mode), the error and a message describing it. The input
// yields no rows and processing continues.
type ErrorHandler func(row []any, err error, message string)

// Option configures a Step.
type Option func(*Step)

// WithFs sets the file system schema and data files are read from. The
// default is the OS file system.
func WithFs(fs afero.Fs) Option {
	return func(s *Step) { s.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Step) { s.logger = logger }
}

// WithRegisterer registers the step's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Step) { s.reg = reg }
}

// WithErrorHandler routes row-level errors to h.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Step) { s.onError = h }
}
