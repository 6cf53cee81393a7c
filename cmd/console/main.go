// Command console runs the lighting console's output pipeline core: patch
// a show, drive its render loop, and dispatch DMX to Art-Net/serial
// outputs. Wiring runs config → persistence → stores → router → graceful
// shutdown, exposed as a cobra root command with serve/patch subcommands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/demexconsole/console/internal/services/version"
)

var buildVersion = "dev"
var buildGitCommit = "unknown"
var buildTime = "unknown"

func main() {
	version.SetBuildInfo(buildVersion, buildGitCommit, buildTime)

	root := newRootCmd()
	if err := fang.Execute(context.Background(), root); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "console",
		Short:   "DMX512 lighting console output pipeline",
		Version: version.GetBuildInfo().Version,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newPatchCmd())
	return root
}
