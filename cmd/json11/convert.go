package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/addrummond/json11"
)

// convertCommand parses a document and writes it back out in canonical
// JSON11 form.
type convertCommand struct {
	env     *env
	file    *string
	outFile *string
}

func (cmd *convertCommand) run(c *kingpin.ParseContext) error {
	cfg, err := cmd.env.flags.config()
	if err != nil {
		return err
	}
	sopts, err := cfg.stringifyOptions()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.env.stderr, cmd.env.flags.logLevel)

	name := displayName(*cmd.file)
	text, err := cmd.env.readInput(*cmd.file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	v, err := json11.Parse(text, nil, cfg.parseOptions(log.With(logger, "file", name)))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	out, ok, err := json11.Stringify(v, nil, "", sopts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("%s: document produced no output", name)
	}

	level.Debug(logger).Log("msg", "converted document", "file", name, "in", len(text), "out", len(out))
	if *cmd.outFile != "" {
		return os.WriteFile(*cmd.outFile, []byte(out+"\n"), 0o644)
	}
	_, err = fmt.Fprintln(cmd.env.stdout, out)
	return err
}

func addConvertCommand(app *kingpin.Application, e *env) {
	cmd := &convertCommand{env: e}
	convert := app.Command("convert", "Parse a document and print it as canonical JSON11.").Action(cmd.run)
	cmd.file = convert.Arg("file", "The file to convert; stdin when omitted or -.").String()
	cmd.outFile = convert.Flag("out-file", "Write the result to this file instead of stdout.").Short('o').String()
}
