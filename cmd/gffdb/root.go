// Command gffdb is a thin CLI wrapper over package ingest: create a
// queryable store from a GFF3/GTF file, or print summary stats about
// one already created. It does not implement a query surface (§1).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gffdb",
		Short:         "Ingest GFF3/GTF annotation files into a queryable sqlite store",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newCreateDBCommand())
	root.AddCommand(newStatsCommand())

	return root
}

// Execute runs the root command, printing any error to stderr.
func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gffdb: %v\n", err)
		return err
	}
	return nil
}
