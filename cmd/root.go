package cmd

import (
	"github.com/spf13/cobra"
)

var (
	flagServer string
	flagDB     string
)

var rootCmd = &cobra.Command{
	Use:   "divvy",
	Short: "Double-entry ledger for shared expenses and bilateral debts",
	Long:  "A double-entry bookkeeping core for groups: shared expenses, advances, and inter-user debts, backed by SQLite with an append-only transaction log.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8787", "Server address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "divvy.db", "SQLite database path")
}

func Execute() error {
	return rootCmd.Execute()
}
