package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/afero"

	"avro-projector/internal/decode"
	"avro-projector/internal/projection"
	"avro-projector/internal/schema"
)

// fieldsCommand prints the leaves derived from a schema.
type fieldsCommand struct {
	g    *globals
	file *string
	yaml *bool
}

func (cmd *fieldsCommand) run(_ *kingpin.ParseContext) error {
	s, err := loadSchema(cmd.g.fs, *cmd.file)
	if err != nil {
		exitWithErr(err)
	}

	leaves := projection.DeriveLeaves(s)

	if *cmd.yaml {
		for _, l := range leaves {
			fmt.Printf("- {name: %q, path: %q, type: %s}\n", l.Name, l.Path, l.Type)
		}

		return nil
	}

	bold := color.New(color.Bold)
	bold.Printf("Schema %s: %s leaves\n", s.FullName(), humanize.Comma(int64(len(leaves))))

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPATH\tTYPE\tSYMBOLS")

	for _, l := range leaves {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Name, l.Path, l.Type, strings.Join(l.Indexed, ","))
	}

	return tw.Flush()
}

// loadSchema reads a schema file, or the writer schema of a container file.
func loadSchema(fs afero.Fs, name string) (*schema.Schema, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)
	if decode.IsContainer(r) {
		c, err := decode.NewContainer(r)
		if err != nil {
			return nil, err
		}

		return c.WriterSchema(), nil
	}

	return schema.Load(fs, name)
}

func addFieldsCommand(app *kingpin.Application, g *globals) {
	cmd := &fieldsCommand{g: g}
	fields := app.Command("fields", "List the leaves derived from a schema or container file.").Action(cmd.run)
	cmd.file = fields.Arg("file", "Schema (.avsc) or container file.").Required().String()
	cmd.yaml = fields.Flag("yaml", "Print the leaves as configuration entries.").Bool()
}
