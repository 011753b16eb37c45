package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/divvyhq/divvy/internal/client"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		user, err := c.CreateUser(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("User created: %s (id %d)\n", user.Name, user.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		users, err := c.ListUsers(context.Background())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		fmt.Printf("%-6s %-30s %s\n", "ID", "NAME", "CREATED")
		fmt.Printf("%-6s %-30s %s\n", "--", "----", "-------")
		for _, u := range users {
			fmt.Printf("%-6d %-30s %s\n", u.ID, u.Name, u.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var userRenameCmd = &cobra.Command{
	Use:   "rename [id] [new-name]",
	Short: "Rename a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		c := client.New(flagServer)

		user, err := c.RenameUser(context.Background(), id, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("User %d renamed to %s\n", user.ID, user.Name)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userRenameCmd)
	rootCmd.AddCommand(userCmd)
}
