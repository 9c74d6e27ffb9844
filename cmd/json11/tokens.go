package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/addrummond/json11"
)

// tokensCommand prints the token stream of a document, one token per line.
type tokensCommand struct {
	env  *env
	file *string
}

func (cmd *tokensCommand) run(c *kingpin.ParseContext) error {
	name := displayName(*cmd.file)
	text, err := cmd.env.readInput(*cmd.file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	for tok, err := range json11.Tokenize(text) {
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintln(cmd.env.stdout, tok)
	}
	return nil
}

func addTokensCommand(app *kingpin.Application, e *env) {
	cmd := &tokensCommand{env: e}
	tokens := app.Command("tokens", "Print the tokens of a document.").Action(cmd.run)
	cmd.file = tokens.Arg("file", "The file to tokenize; stdin when omitted or -.").String()
}
