// Package cmd provides the CLI commands for the rangeracl decision point.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rangeracl",
	Short: "rangeracl - out-of-band S3 authorization decision point",
	Long: `rangeracl is an out-of-band authorization decision point for S3-compatible
object storage, backed by Apache Ranger policies.

It periodically pulls policies and user attributes from a Ranger admin
instance, evaluates access decisions locally against an in-memory snapshot,
and reports every denial, and every allow whose policy has auditing
enabled, to a Solr-compatible audit sink.

Configuration is read entirely from environment variables — see
internal/config for the full list. There is no config file.

Commands:
  serve       Start the decision point HTTP server
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
