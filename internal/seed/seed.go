// Package seed populates the expense catalog before any ledger activity.
// The account taxonomy itself is seeded by the store migration; categories
// are softer configuration and may be extended from a YAML file.
package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/divvyhq/divvy/internal/ledger"
	"github.com/divvyhq/divvy/internal/store"
)

// CatalogEntry is one category to ensure. Parent names a root category;
// empty means the entry is itself a root.
type CatalogEntry struct {
	Name   string `yaml:"name"`
	Parent string `yaml:"parent,omitempty"`
}

type catalogFile struct {
	Categories []CatalogEntry `yaml:"categories"`
}

// DefaultCatalog is the built-in category tree.
var DefaultCatalog = []CatalogEntry{
	{Name: "Living Expenses"},
	{Name: "Entertainment"},
	{Name: "Utilities"},
	{Name: "Debt Repayments"},
	{Name: "Groceries", Parent: "Living Expenses"},
	{Name: "Rent", Parent: "Living Expenses"},
	{Name: "Transportation", Parent: "Living Expenses"},
	{Name: "Streaming Services", Parent: "Entertainment"},
	{Name: "Dining Out", Parent: "Entertainment"},
	{Name: "Electricity Bill", Parent: "Utilities"},
	{Name: "Water Bill", Parent: "Utilities"},
}

// LoadCatalogFile reads extra catalog entries from a YAML file.
func LoadCatalogFile(path string) ([]CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	for i, e := range f.Categories {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: name is required", i)
		}
	}
	return f.Categories, nil
}

// Apply ensures every entry exists, idempotently. Two passes: roots first so
// children can resolve their parent by name.
func Apply(ctx context.Context, st *store.Store, entries []CatalogEntry) error {
	for _, e := range entries {
		if e.Parent != "" {
			continue
		}
		if err := ensure(ctx, st, e.Name, nil); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if e.Parent == "" {
			continue
		}
		parent, err := st.FindCatalog(ctx, e.Parent, nil)
		if err == ledger.ErrCatalogNotFound {
			return fmt.Errorf("catalog entry %q: parent %q is not a root category", e.Name, e.Parent)
		}
		if err != nil {
			return err
		}
		if err := ensure(ctx, st, e.Name, &parent.ID); err != nil {
			return err
		}
	}
	return nil
}

func ensure(ctx context.Context, st *store.Store, name string, parentID *int64) error {
	_, err := st.FindCatalog(ctx, name, parentID)
	if err == nil {
		return nil
	}
	if err != ledger.ErrCatalogNotFound {
		return err
	}
	_, err = st.CreateCatalog(ctx, name, parentID)
	return err
}
