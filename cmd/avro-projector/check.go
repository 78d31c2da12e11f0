package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"avro-projector/internal/config"
	"avro-projector/internal/decode"
	"avro-projector/internal/diagnostic"
	"avro-projector/internal/projection"
	"avro-projector/internal/schema"
)

// checkCommand validates a configuration and, where a schema is at hand,
// its paths.
type checkCommand struct {
	g          *globals
	configFile *string
}

func (cmd *checkCommand) run(_ *kingpin.ParseContext) error {
	cfg, err := config.LoadFile(cmd.g.fs, *cmd.configFile)
	if err != nil {
		exitWithErr(err)
	}

	d := cfg.Validate()

	if !d.HasErrors() {
		cmd.checkPaths(cfg, d)
	}

	printDiagnostics(d)

	if d.HasErrors() {
		os.Exit(1)
	}

	color.New(color.FgGreen).Println("configuration is valid")

	return nil
}

func (cmd *checkCommand) checkPaths(cfg *config.Config, d *diagnostic.Diagnostics) {
	s, err := cmd.schemaFor(cfg)
	if err != nil {
		d.AddError(diagnostic.CodeSchemaLoad, err.Error(), "schema", "")
		return
	}

	if s == nil {
		d.AddInfo(diagnostic.CodeSchemaSource, "no schema available before reading data, paths not checked", "schema", "")
		return
	}

	leaves, err := cfg.Leaves()
	if err != nil {
		return
	}

	c, err := projection.Compile(leaves, s, 0)
	if err != nil {
		d.AddError(diagnostic.CodePathExpansion, err.Error(), "fields", "")
		return
	}

	d.Merge(projection.Validate(c, s))
}

// schemaFor returns the schema paths are checked against: the writer schema
// of a container input with reader aliases applied, or the reader schema.
func (cmd *checkCommand) schemaFor(cfg *config.Config) (*schema.Schema, error) {
	var writer *schema.Schema

	if cfg.Mode() == config.ModeFile && !cfg.Input.JSONEncoded {
		if f, err := cmd.g.fs.Open(cfg.Input.File); err == nil {
			defer func() { _ = f.Close() }()

			r := bufio.NewReader(f)
			if decode.IsContainer(r) {
				c, err := decode.NewContainer(r)
				if err != nil {
					return nil, err
				}

				writer = c.WriterSchema()
			}
		}
	}

	if writer == nil && cfg.Source().IsZero() {
		return nil, nil
	}

	return schema.Resolve(cmd.g.fs, cfg.Source(), writer)
}

func printDiagnostics(d *diagnostic.Diagnostics) {
	styles := map[diagnostic.Severity]*color.Color{
		diagnostic.SeverityError:   color.New(color.FgRed, color.Bold),
		diagnostic.SeverityWarning: color.New(color.FgYellow),
		diagnostic.SeverityInfo:    color.New(color.FgCyan),
	}

	for _, diag := range d.All() {
		styles[diag.Severity].Fprintf(os.Stderr, "%-7s ", diag.Severity)
		fmt.Fprintln(os.Stderr, diag.String())
	}
}

func addCheckCommand(app *kingpin.Application, g *globals) {
	cmd := &checkCommand{g: g}
	check := app.Command("check", "Validate a configuration.").Action(cmd.run)
	cmd.configFile = check.Arg("config", "The step configuration.").Required().String()
}
