package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gffdb/ingest"
)

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <db-path>",
		Short: "Print summary counts for an ingested store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ingest.OpenDB(args[0])
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			defer db.Close()

			conn := db.Conn()

			var featureCount, relationCount int64
			if err := conn.QueryRowContext(cmd.Context(), "SELECT count(*) FROM features").Scan(&featureCount); err != nil {
				return fmt.Errorf("stats: counting features: %w", err)
			}
			if err := conn.QueryRowContext(cmd.Context(), "SELECT count(*) FROM relations").Scan(&relationCount); err != nil {
				return fmt.Errorf("stats: counting relations: %w", err)
			}

			rows, err := conn.QueryContext(cmd.Context(), `
				SELECT featuretype, count(*)
				FROM features
				GROUP BY featuretype
				ORDER BY count(*) DESC
			`)
			if err != nil {
				return fmt.Errorf("stats: grouping by featuretype: %w", err)
			}
			defer rows.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "features:  %d\n", featureCount)
			fmt.Fprintf(out, "relations: %d\n", relationCount)
			fmt.Fprintln(out, "by featuretype:")
			for rows.Next() {
				var featuretype string
				var n int64
				if err := rows.Scan(&featuretype, &n); err != nil {
					return fmt.Errorf("stats: %w", err)
				}
				fmt.Fprintf(out, "  %-20s %d\n", featuretype, n)
			}
			return rows.Err()
		},
	}

	return cmd
}
