package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/divvyhq/divvy/internal/client"
	"github.com/divvyhq/divvy/internal/ledger"
)

var balanceRecompute bool

var balanceCmd = &cobra.Command{
	Use:   "balance [entity-id]",
	Short: "Show an entity's balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entity id %q", args[0])
		}
		c := client.New(flagServer)

		resp, err := c.EntityBalance(context.Background(), id, balanceRecompute)
		if err != nil {
			return err
		}
		suffix := ""
		if resp.Recomputed {
			suffix = " (recomputed from log)"
		}
		fmt.Printf("Entity %d balance: %s%s\n", resp.EntityID, resp.Balance.StringFixed(2), suffix)
		return nil
	},
}

var sheetCmd = &cobra.Command{
	Use:   "sheet [user-id]",
	Short: "Show a user's balance sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		c := client.New(flagServer)

		sheet, err := c.BalanceSheet(context.Background(), id)
		if err != nil {
			return err
		}

		printGroup("ASSETS", sheet.Assets, sheet.TotalAssets.StringFixed(2))
		printGroup("LIABILITIES", sheet.Liabilities, sheet.TotalLiabilities.StringFixed(2))
		printGroup("EXPENSES", sheet.Expenses, sheet.TotalExpenses.StringFixed(2))
		printGroup("INCOME", sheet.Income, sheet.TotalIncome.StringFixed(2))
		printGroup("EQUITY", sheet.Equity, sheet.TotalEquity.StringFixed(2))
		return nil
	},
}

func printGroup(title string, lines []ledger.BalanceSheetLine, total string) {
	if len(lines) == 0 {
		return
	}
	fmt.Println(title)
	for _, l := range lines {
		fmt.Printf("  %-24s %12s\n", l.AccountName, l.Balance.StringFixed(2))
	}
	fmt.Printf("  %-24s %12s\n", "Total", total)
	fmt.Println()
}

var positionCmd = &cobra.Command{
	Use:   "position [entity-id] [counterparty-entity-id]",
	Short: "Show the net outstanding amount between two debt entities",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entity id %q", args[0])
		}
		other, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entity id %q", args[1])
		}
		c := client.New(flagServer)

		pos, err := c.NetPosition(context.Background(), id, other)
		if err != nil {
			return err
		}
		fmt.Printf("Net position of %d against %d: %s\n", pos.EntityID, pos.CounterpartyEntityID, pos.Amount.StringFixed(2))
		return nil
	},
}

var statementLimit int

var statementCmd = &cobra.Command{
	Use:   "statement [entity-id]",
	Short: "Show an entity's transaction history, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entity id %q", args[0])
		}
		c := client.New(flagServer)

		logs, err := c.EntityStatement(context.Background(), id, statementLimit)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			fmt.Println("No transactions found.")
			return nil
		}

		fmt.Printf("%-36s %-8s %12s %s\n", "BATCH", "SIDE", "AMOUNT", "NOTE")
		for _, l := range logs {
			side := "credit"
			if l.DebitEntityID == id {
				side = "debit"
			}
			fmt.Printf("%-36s %-8s %12s %s\n", l.BatchID, side, l.Amount.StringFixed(2), l.Note)
		}
		return nil
	},
}

func init() {
	balanceCmd.Flags().BoolVar(&balanceRecompute, "recompute", false, "Recompute from the transaction log instead of the cache")
	statementCmd.Flags().IntVar(&statementLimit, "limit", 0, "Maximum number of entries (0 = all)")

	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(sheetCmd)
	rootCmd.AddCommand(positionCmd)
	rootCmd.AddCommand(statementCmd)
}
