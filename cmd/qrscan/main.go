// Command qrscan decodes QR codes from image files or serves decoding over
// HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/ericlevine/qrscan/cmd/qrscan/cmd"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	root := cmd.NewRootCommand()
	root.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
