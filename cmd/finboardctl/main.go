package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	backendFlag string
	rootCmd     = &cobra.Command{
		Use:   "finboardctl",
		Short: "Manage finboard accounts, categories and payment methods",
		Long: `finboardctl runs the finboard catalog and report operations against the
configured backend (DATA_BACKEND). With the memory backend every invocation
starts from the preset data, so changes only persist with sqlite.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "override DATA_BACKEND (memory, sqlite, sheets)")

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(transactionsCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(changesCmd())
	rootCmd.AddCommand(importCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
