// Command mkcbtable produces coreboot table images from a platform
// description and inspects existing images.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
)

func main() {
	app := kingpin.New("mkcbtable", "Build and inspect coreboot boot information tables.")
	app.HelpFlag.Short('h')

	addBuildCommand(app)
	addDumpCommand(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

func exitWithErr(err error) {
	fmt.Fprintf(os.Stderr, "mkcbtable: %v\n", err)
	os.Exit(1)
}
