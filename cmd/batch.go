package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/divvyhq/divvy/internal/client"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Inspect and reverse committed batches",
}

var batchShowCmd = &cobra.Command{
	Use:   "show [batch-id]",
	Short: "Show the lines of a committed batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		resp, err := c.GetBatch(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Batch %s\n", resp.BatchID)
		fmt.Printf("%-8s %-8s %12s %s\n", "DEBIT", "CREDIT", "AMOUNT", "NOTE")
		for _, l := range resp.Lines {
			fmt.Printf("%-8d %-8d %12s %s\n", l.DebitEntityID, l.CreditEntityID, l.Amount.StringFixed(2), l.Note)
		}
		return nil
	},
}

var batchReverseCmd = &cobra.Command{
	Use:   "reverse [batch-id]",
	Short: "Reverse a committed batch with an offsetting batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		resp, err := c.ReverseBatch(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Batch %s reversed by batch %s\n", args[0], resp.BatchID)
		return nil
	},
}

func init() {
	batchCmd.AddCommand(batchShowCmd)
	batchCmd.AddCommand(batchReverseCmd)
	rootCmd.AddCommand(batchCmd)
}
