// Command apiprobe talks to articles-api through the errkit client. Any
// failure, whether a server envelope, a 401 or a dropped connection, is
// printed as one normalized message.
package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/kbukum/errkit/version"
)

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("apiprobe"),
		kong.Description("Probe the articles API and print normalized errors."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Get().String()},
	)

	rt, err := cli.runtime(os.Stdout, os.Stderr)
	ctx.FatalIfErrorf(err)
	defer rt.close()

	if err := ctx.Run(rt); err != nil {
		printError(rt.errOut, err, cli.Verbose)
		os.Exit(1)
	}
}
