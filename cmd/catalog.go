package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/divvyhq/divvy/internal/client"
	"github.com/divvyhq/divvy/internal/ledger"
)

var (
	catalogParent     int64
	catalogMoveParent int64
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the expense category catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expense categories as a tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		nodes, err := c.ListCatalog(context.Background())
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			fmt.Println("No categories found.")
			return nil
		}

		tree, err := ledger.NewCatalog(nodes)
		if err != nil {
			return err
		}

		fmt.Printf("%-6s %s\n", "ID", "NAME")
		var printNode func(id int64, depth int)
		printNode = func(id int64, depth int) {
			n, _ := tree.Get(id)
			fmt.Printf("%-6d %s%s\n", n.ID, strings.Repeat("  ", depth), n.Name)
			children := tree.Children(id)
			sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })
			for _, childID := range children {
				printNode(childID, depth+1)
			}
		}
		for _, n := range nodes {
			if n.ParentID == nil {
				printNode(n.ID, 0)
			}
		}
		return nil
	},
}

var catalogAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an expense category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		var parentID *int64
		if catalogParent != 0 {
			parentID = &catalogParent
		}
		node, err := c.CreateCatalog(context.Background(), args[0], parentID)
		if err != nil {
			return err
		}
		fmt.Printf("Category created: %s (id %d)\n", node.Name, node.ID)
		return nil
	},
}

var catalogMoveCmd = &cobra.Command{
	Use:   "move [id]",
	Short: "Move a category under a new parent (0 = root)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid category id %q", args[0])
		}
		c := client.New(flagServer)

		var parentID *int64
		if catalogMoveParent != 0 {
			parentID = &catalogMoveParent
		}
		node, err := c.ReparentCatalog(context.Background(), id, parentID)
		if err != nil {
			return err
		}
		if node.ParentID == nil {
			fmt.Printf("Category %s (id %d) is now a root category\n", node.Name, node.ID)
		} else {
			fmt.Printf("Category %s (id %d) moved under %d\n", node.Name, node.ID, *node.ParentID)
		}
		return nil
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the fixed chart of accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		accounts, err := c.ListAccounts(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("%-6s %-24s %-12s %s\n", "ID", "NAME", "TYPE", "SUBTYPE")
		for _, a := range accounts {
			fmt.Printf("%-6d %-24s %-12s %s\n", a.ID, a.Name, a.Type, a.SubType)
		}
		return nil
	},
}

func init() {
	catalogAddCmd.Flags().Int64Var(&catalogParent, "parent", 0, "Parent category id (0 = root)")
	catalogMoveCmd.Flags().Int64Var(&catalogMoveParent, "parent", 0, "New parent category id (0 = root)")
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogMoveCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(accountsCmd)
}
