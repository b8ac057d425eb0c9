package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/dailyquest/internal/catalog"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("dailyquest", version)
		if c, err := catalog.Default(); err == nil {
			fmt.Println("catalog", c.Version())
		}
	},
}
