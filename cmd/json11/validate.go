package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log"

	"github.com/addrummond/json11"
)

// validateCommand checks that each file is a well formed JSON11 document.
type validateCommand struct {
	env   *env
	files *[]string
}

func (cmd *validateCommand) run(c *kingpin.ParseContext) error {
	cfg, err := cmd.env.flags.config()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.env.stderr, cmd.env.flags.logLevel)

	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	failed := 0
	for _, f := range *cmd.files {
		bold.Fprintf(cmd.env.stdout, "%s: ", f)
		text, err := cmd.env.readInput(f)
		if err != nil {
			red.Fprintln(cmd.env.stdout, err)
			failed++
			continue
		}
		if _, err := json11.Parse(text, nil, cfg.parseOptions(log.With(logger, "file", f))); err != nil {
			red.Fprintln(cmd.env.stdout, err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.env.stdout, "ok (%s)\n", humanize.Bytes(uint64(len(text))))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(*cmd.files))
	}
	return nil
}

func addValidateCommand(app *kingpin.Application, e *env) {
	cmd := &validateCommand{env: e}
	validate := app.Command("validate", "Check that files are valid JSON11.").Action(cmd.run)
	cmd.files = validate.Arg("file", "The files to check.").Required().ExistingFiles()
}
