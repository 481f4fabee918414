package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// VERSION is set at build time via -ldflags.
var VERSION = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "keywardctl",
	Version:       VERSION,
	SilenceUsage:  true,
	SilenceErrors: true,
	Short:         "Command line utility for keyward license keys",
	Long:          `keywardctl issues and checks license keys offline, derives hardware ids
and produces the signing headers keyward expects on its signed routes.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}
