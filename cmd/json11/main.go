// Command json11 validates, converts and tokenizes JSON11 documents.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
)

func main() {
	app := newApp(&env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
	kingpin.MustParse(app.Parse(os.Args[1:]))
}

// env holds the streams a command reads from and writes to, along with the
// settings shared by every command.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	flags  globalFlags
}

func newApp(e *env) *kingpin.Application {
	app := kingpin.New("json11", "A tool for working with JSON11 documents.")
	app.HelpFlag.Short('h')
	e.flags.register(app)
	addConvertCommand(app, e)
	addValidateCommand(app, e)
	addTokensCommand(app, e)
	return app
}

// readInput returns the contents of name, or of stdin when name is empty or "-".
func (e *env) readInput(name string) (string, error) {
	if name == "" || name == "-" {
		b, err := io.ReadAll(e.stdin)
		return string(b), err
	}
	b, err := os.ReadFile(name)
	return string(b), err
}

func displayName(name string) string {
	if name == "" || name == "-" {
		return "<stdin>"
	}
	return name
}
