package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/divvyhq/divvy/internal/client"
)

var (
	prepayUser   int64
	prepayAmount string
	prepayNote   string
)

var prepayCmd = &cobra.Command{
	Use:   "prepay",
	Short: "Move cash into a prepaid-expense asset",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(prepayAmount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", prepayAmount, err)
		}
		c := client.New(flagServer)

		resp, err := c.RecordPrepayment(context.Background(), prepayUser, amount, prepayNote)
		if err != nil {
			return err
		}
		fmt.Printf("Prepayment recorded in batch %s\n", resp.BatchID)
		return nil
	},
}

var (
	amortizeUser    int64
	amortizeAmount  string
	amortizeCatalog int64
	amortizeNote    string
)

var amortizeCmd = &cobra.Command{
	Use:   "amortize",
	Short: "Expense one slice of a prepaid asset",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(amortizeAmount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", amortizeAmount, err)
		}
		c := client.New(flagServer)

		resp, err := c.PostAmortization(context.Background(), amortizeUser, amount, amortizeCatalog, amortizeNote)
		if err != nil {
			return err
		}
		fmt.Printf("Amortization recorded in batch %s\n", resp.BatchID)
		return nil
	},
}

func init() {
	prepayCmd.Flags().Int64Var(&prepayUser, "user", 0, "User id")
	prepayCmd.Flags().StringVar(&prepayAmount, "amount", "", "Amount to prepay")
	prepayCmd.Flags().StringVar(&prepayNote, "note", "", "Free-text note")
	prepayCmd.MarkFlagRequired("user")
	prepayCmd.MarkFlagRequired("amount")

	amortizeCmd.Flags().Int64Var(&amortizeUser, "user", 0, "User id")
	amortizeCmd.Flags().StringVar(&amortizeAmount, "amount", "", "Amount to expense")
	amortizeCmd.Flags().Int64Var(&amortizeCatalog, "catalog", 0, "Expense catalog id")
	amortizeCmd.Flags().StringVar(&amortizeNote, "note", "", "Free-text note")
	amortizeCmd.MarkFlagRequired("user")
	amortizeCmd.MarkFlagRequired("amount")
	amortizeCmd.MarkFlagRequired("catalog")

	rootCmd.AddCommand(prepayCmd)
	rootCmd.AddCommand(amortizeCmd)
}
