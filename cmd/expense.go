package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/divvyhq/divvy/internal/client"
)

var (
	expensePayer        int64
	expenseParticipants []int64
	expenseTotal        string
	expenseCatalog      int64
	expenseNote         string
)

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Record a shared expense split among participants",
	RunE: func(cmd *cobra.Command, args []string) error {
		total, err := decimal.NewFromString(expenseTotal)
		if err != nil {
			return fmt.Errorf("invalid total %q: %w", expenseTotal, err)
		}
		c := client.New(flagServer)

		resp, err := c.RecordExpense(context.Background(), expensePayer, expenseParticipants, total, expenseCatalog, expenseNote)
		if err != nil {
			return err
		}
		fmt.Printf("Expense recorded in batch %s\n", resp.BatchID)
		return nil
	},
}

var (
	settleDebtor   int64
	settleCreditor int64
	settleAmount   string
	settleNote     string
)

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Record a debt repayment between two users",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(settleAmount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", settleAmount, err)
		}
		c := client.New(flagServer)

		resp, err := c.RecordSettlement(context.Background(), settleDebtor, settleCreditor, amount, settleNote)
		if err != nil {
			return err
		}
		fmt.Printf("Settlement recorded in batch %s\n", resp.BatchID)
		return nil
	},
}

var (
	depositUser   int64
	depositAmount string
	depositNote   string
)

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Record a cash contribution from a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(depositAmount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", depositAmount, err)
		}
		c := client.New(flagServer)

		resp, err := c.RecordDeposit(context.Background(), depositUser, amount, depositNote)
		if err != nil {
			return err
		}
		fmt.Printf("Deposit recorded in batch %s\n", resp.BatchID)
		return nil
	},
}

func init() {
	expenseCmd.Flags().Int64Var(&expensePayer, "payer", 0, "User id of the payer")
	expenseCmd.Flags().Int64SliceVar(&expenseParticipants, "among", nil, "User ids sharing the cost (must include the payer)")
	expenseCmd.Flags().StringVar(&expenseTotal, "total", "", "Total amount paid")
	expenseCmd.Flags().Int64Var(&expenseCatalog, "catalog", 0, "Expense catalog id")
	expenseCmd.Flags().StringVar(&expenseNote, "note", "", "Free-text note")
	expenseCmd.MarkFlagRequired("payer")
	expenseCmd.MarkFlagRequired("among")
	expenseCmd.MarkFlagRequired("total")
	expenseCmd.MarkFlagRequired("catalog")

	settleCmd.Flags().Int64Var(&settleDebtor, "from", 0, "User id of the debtor")
	settleCmd.Flags().Int64Var(&settleCreditor, "to", 0, "User id of the creditor")
	settleCmd.Flags().StringVar(&settleAmount, "amount", "", "Amount repaid")
	settleCmd.Flags().StringVar(&settleNote, "note", "", "Free-text note")
	settleCmd.MarkFlagRequired("from")
	settleCmd.MarkFlagRequired("to")
	settleCmd.MarkFlagRequired("amount")

	depositCmd.Flags().Int64Var(&depositUser, "user", 0, "User id")
	depositCmd.Flags().StringVar(&depositAmount, "amount", "", "Amount deposited")
	depositCmd.Flags().StringVar(&depositNote, "note", "", "Free-text note")
	depositCmd.MarkFlagRequired("user")
	depositCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(expenseCmd)
	rootCmd.AddCommand(settleCmd)
	rootCmd.AddCommand(depositCmd)
}
