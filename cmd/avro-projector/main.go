// Package main provides the CLI entrypoint for avro-projector.
//
// avro-projector flattens nested Avro records into rows:
//   - project: run a configuration over a data file, printing JSON lines
//   - fields: list the leaves a schema yields when none are declared
//   - check: validate a configuration and its paths
//   - explain: dump the compiled form of a configuration
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"
)

type globals struct {
	logLevel *string
	fs       afero.Fs
}

func main() {
	app := kingpin.New("avro-projector", "Flatten nested Avro records into rows.")
	app.HelpFlag.Short('h')

	g := &globals{
		logLevel: app.Flag("log.level", "Only log messages with the given severity or above.").
			Default("info").Enum("debug", "info", "warn", "error"),
		fs: afero.NewOsFs(),
	}

	addProjectCommand(app, g)
	addFieldsCommand(app, g)
	addCheckCommand(app, g)
	addExplainCommand(app, g)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

// logger returns a logfmt logger on stderr filtered by --log.level.
func (g *globals) logger() log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var allow level.Option

	switch *g.logLevel {
	case "debug":
		allow = level.AllowDebug()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		allow = level.AllowInfo()
	}

	return level.NewFilter(logger, allow)
}

func exitWithErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
