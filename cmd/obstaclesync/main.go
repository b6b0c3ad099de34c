// Command obstaclesync refreshes the obstacle, airport and NOTAM outage
// snapshots from FAA publications.
//
// Usage:
//
//	obstaclesync              # one run, then exit
//	obstaclesync serve        # run every RUN_INTERVAL with health and metrics endpoints
//	obstaclesync parse-dof DOF.DAT --out data/
//	obstaclesync validate data/
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := newRunCmd()
	root.Use = "obstaclesync"
	root.Short = "Refresh FAA obstacle, airport and NOTAM outage snapshots"
	root.Long = `obstaclesync downloads the current Digital Obstacle File and NASR airport
subscription, extracts obstacles and airports, harvests NOTAM light outages,
and writes a JSON snapshot with metadata.

With no subcommand it performs a single run, the same as "obstaclesync run".`
	root.Version = version
	root.SilenceUsage = true

	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newParseDOFCmd())
	root.AddCommand(newValidateCmd())
	return root
}
