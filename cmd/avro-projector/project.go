package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"

	"avro-projector/internal/config"
	"avro-projector/internal/step"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// projectCommand runs a file-mode configuration and prints its rows as
// JSON lines.
type projectCommand struct {
	g          *globals
	configFile *string
	input      *string
	skipErrors *bool
}

func (cmd *projectCommand) run(_ *kingpin.ParseContext) error {
	cfg, err := config.LoadFile(cmd.g.fs, *cmd.configFile)
	if err != nil {
		exitWithErr(err)
	}

	if *cmd.input != "" {
		cfg.Input = config.Input{File: *cmd.input, JSONEncoded: cfg.Input.JSONEncoded}
	}

	if cfg.Mode() != config.ModeFile {
		exitWithErr(errors.New("project needs a configuration with input.file"))
	}

	logger := cmd.g.logger()
	skipped := 0

	opts := []step.Option{step.WithFs(cmd.g.fs), step.WithLogger(logger)}
	if *cmd.skipErrors {
		opts = append(opts, step.WithErrorHandler(func(_ []any, _ error, _ string) {
			skipped++
		}))
	}

	s, err := step.New(cfg, opts...)
	if err != nil {
		exitWithErr(err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Open(); err != nil {
		exitWithErr(err)
	}

	out := bufio.NewWriter(os.Stdout)
	defer func() { _ = out.Flush() }()

	n, err := writeRows(out, s)
	if err != nil {
		_ = out.Flush()
		exitWithErr(err)
	}

	level.Info(logger).Log("msg", "projection done", "rows", humanize.Comma(int64(n)), "skipped", skipped)

	return nil
}

// writeRows writes every row of s as a JSON object keyed by column name.
func writeRows(w io.Writer, s *step.Step) (int, error) {
	enc := json.NewEncoder(w)
	columns := s.Columns()
	n := 0

	for {
		rows, err := s.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}

		if err != nil {
			return n, err
		}

		for _, row := range rows {
			obj := make(map[string]any, len(columns))
			for i, c := range columns {
				obj[c] = row[i]
			}

			if err := enc.Encode(obj); err != nil {
				return n, fmt.Errorf("failed to write row: %w", err)
			}

			n++
		}
	}
}

func addProjectCommand(app *kingpin.Application, g *globals) {
	cmd := &projectCommand{g: g}
	project := app.Command("project", "Project the objects of a data file into JSON lines.").Action(cmd.run)
	cmd.configFile = project.Arg("config", "The step configuration.").Required().String()
	cmd.input = project.Flag("input", "Data file overriding input.file of the configuration.").String()
	cmd.skipErrors = project.Flag("skip-errors", "Skip objects that fail to project instead of stopping.").Bool()
}
