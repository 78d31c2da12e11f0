package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/davecgh/go-spew/spew"

	"avro-projector/internal/config"
	"avro-projector/internal/projection"
)

// explainCommand dumps the compiled form of a configuration.
type explainCommand struct {
	g          *globals
	configFile *string
	offset     *int
}

func (cmd *explainCommand) run(_ *kingpin.ParseContext) error {
	cfg, err := config.LoadFile(cmd.g.fs, *cmd.configFile)
	if err != nil {
		exitWithErr(err)
	}

	if err := cfg.Validate().Error(); err != nil {
		exitWithErr(err)
	}

	s, err := (&checkCommand{g: cmd.g}).schemaFor(cfg)
	if err != nil {
		exitWithErr(err)
	}

	leaves, err := cfg.Leaves()
	if err != nil {
		exitWithErr(err)
	}

	c, err := projection.Compile(leaves, s, *cmd.offset)
	if err != nil {
		exitWithErr(err)
	}

	dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
	dumper.Fdump(os.Stdout, c)

	return nil
}

func addExplainCommand(app *kingpin.Application, g *globals) {
	cmd := &explainCommand{g: g}
	explain := app.Command("explain", "Dump the compiled leaves and expansion group of a configuration.").Action(cmd.run)
	cmd.configFile = explain.Arg("config", "The step configuration.").Required().String()
	cmd.offset = explain.Flag("offset", "Number of incoming columns ahead of the leaves.").Default("0").Int()
}
