package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"finboard/internal/storage"
)

// changesCmd inspects the SQLite change log the worker relays from.
func changesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Inspect the local change log",
	}
	cmd.AddCommand(changesStatsCmd())
	cmd.AddCommand(changesListCmd())
	cmd.AddCommand(changesRetryCmd())
	return cmd
}

func withChangeLog(cmd *cobra.Command, fn func(repo *storage.SQLiteRepository) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("failed to open change log at %s: %w", cfg.SQLiteDBPath, err)
	}
	defer repo.Close()
	return fn(repo)
}

func changesStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count change log rows by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChangeLog(cmd, func(repo *storage.SQLiteRepository) error {
				stats, err := repo.ChangeStats(cmd.Context())
				if err != nil {
					return err
				}
				t := newTable(cmd.OutOrStdout(), "Pending", "Synced", "Failed")
				t.row(strconv.FormatInt(stats.Pending, 10), strconv.FormatInt(stats.Synced, 10), strconv.FormatInt(stats.Failed, 10))
				return t.flush()
			})
		},
	}
}

func changesListCmd() *cobra.Command {
	var limit int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChangeLog(cmd, func(repo *storage.SQLiteRepository) error {
				rows, err := repo.RecentChanges(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Change log is empty."))
					return nil
				}
				t := newTable(cmd.OutOrStdout(), "Seq", "At", "Kind", "Op", "ID", "Name", "Status", "Attempts")
				for _, r := range rows {
					t.row(strconv.FormatInt(r.Seq, 10), r.Event.At.Format(time.RFC3339), string(r.Event.Kind),
						string(r.Event.Op), r.Event.ID, r.Event.Name, r.Status, strconv.FormatInt(r.Attempts, 10))
				}
				return t.flush()
			})
		},
	}
	cmd.Flags().Int64Var(&limit, "limit", 20, "number of rows to show")
	return cmd
}

func changesRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Requeue failed changes for the relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChangeLog(cmd, func(repo *storage.SQLiteRepository) error {
				n, err := repo.RetryFailedChanges(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Requeued %d changes", n)))
				return nil
			})
		},
	}
}
