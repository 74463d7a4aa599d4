package main

import (
	"errors"
	"time"

	"github.com/flemzord/botapi/internal/journal"
	"github.com/spf13/cobra"
)

func journalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recorded Bot API calls",
		Long: `Read the SQLite call journal written when journal.path (or --journal)
is set. Entries are listed newest first.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
	cmd.Flags().String("method", "", "Only show this API method")
	cmd.Flags().Bool("stats", false, "Show call counts per method and outcome instead")
	cmd.Flags().Duration("prune", 0, "Delete entries older than this age, then exit")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Journal.Path == "" {
			return errors.New("journal: no journal configured (set journal.path or --journal)")
		}

		ctx := cmd.Context()
		j, err := journal.Open(ctx, cfg.Journal.Path, nil)
		if err != nil {
			return err
		}
		defer func() { _ = j.Close() }()

		out := cmd.OutOrStdout()

		if age, _ := cmd.Flags().GetDuration("prune"); age > 0 {
			n, err := j.Prune(ctx, time.Now().Add(-age))
			if err != nil {
				return err
			}
			return printJSON(out, map[string]int64{"pruned": n})
		}

		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			s, err := j.Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, s)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		method, _ := cmd.Flags().GetString("method")
		entries, err := j.Recent(ctx, limit, method)
		if err != nil {
			return err
		}
		if entries == nil {
			entries = []journal.Entry{}
		}
		return printJSON(out, entries)
	}
	return cmd
}
