// Command articles-api serves the demo Article CRUD API. Every failure it
// produces leaves through one error envelope.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml (default: search standard locations)")
	flag.Parse()

	if err := run(context.Background(), *configFile); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}
