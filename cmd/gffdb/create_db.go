package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gffdb/gffio"
	"gffdb/idresolve"
	"gffdb/ingest"
	"gffdb/merge"
)

func newCreateDBCommand() *cobra.Command {
	var (
		dest              string
		idKey             string
		mergeStrategy     string
		checkLines        int
		forceGFF          bool
		forceDialectCheck bool
		verbose           bool
	)

	cmd := &cobra.Command{
		Use:   "create-db <input.gff3|input.gtf>",
		Short: "Ingest a GFF3 or GTF file into a new sqlite store",
		Long: `create-db parses a GFF3 or GTF annotation file, infers its dialect
(unless --force-gff is set), resolves feature ids, merges duplicates
per --merge-strategy, and writes the result into a freshly migrated
sqlite database at --db.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dest == "" {
				return fmt.Errorf("--db is required")
			}

			strategy := merge.Strategy(mergeStrategy)
			switch strategy {
			case merge.StrategyError, merge.StrategyWarning, merge.StrategyMerge,
				merge.StrategyCreateUnique, merge.StrategyReplace:
			default:
				return fmt.Errorf("unknown --merge-strategy %q", mergeStrategy)
			}

			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

			cfg := ingest.DefaultConfig()
			cfg.Logger = logger
			cfg.MergeStrategy = strategy
			cfg.CheckLines = checkLines
			cfg.ForceGFF = forceGFF
			cfg.ForceDialectCheck = forceDialectCheck
			if idKey != "" {
				cfg.IDSpec = idresolve.ByKey(idKey)
			}

			db, err := ingest.CreateDB(cmd.Context(), gffio.FromFile(args[0]), dest, cfg)
			if err != nil {
				return fmt.Errorf("create-db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "created %s from %s\n", dest, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "db", "", "path to the sqlite database to create (required)")
	cmd.Flags().StringVar(&idKey, "id-key", "", "attribute key used as the primary key (default: ID)")
	cmd.Flags().StringVar(&mergeStrategy, "merge-strategy", string(merge.StrategyError), "error|warning|merge|create_unique|replace")
	cmd.Flags().IntVar(&checkLines, "check-lines", 0, "number of lines sampled for dialect inference (default: 10)")
	cmd.Flags().BoolVar(&forceGFF, "force-gff", false, "disable GTF gene/transcript inference even if the dialect looks like GTF")
	cmd.Flags().BoolVar(&forceDialectCheck, "force-dialect-check", false, "re-probe the dialect on every line instead of once up front")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also log debug detail (orphan GTF components) to stderr; warnings such as skipped duplicates are logged without it")

	return cmd
}
