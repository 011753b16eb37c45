package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/divvyhq/divvy/internal/engine"
	"github.com/divvyhq/divvy/internal/seed"
	"github.com/divvyhq/divvy/internal/server"
	"github.com/divvyhq/divvy/internal/store"
)

var (
	serveAddr    string
	serveCatalog string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(flagDB)
		if err != nil {
			return err
		}
		defer st.Close()

		entries := seed.DefaultCatalog
		if serveCatalog != "" {
			extra, err := seed.LoadCatalogFile(serveCatalog)
			if err != nil {
				return err
			}
			entries = append(entries, extra...)
		}
		if err := seed.Apply(context.Background(), st, entries); err != nil {
			return err
		}

		srv := server.New(st, engine.New(st), serveAddr)
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8787", "Listen address")
	serveCmd.Flags().StringVar(&serveCatalog, "catalog", "", "YAML file with extra expense categories")
	rootCmd.AddCommand(serveCmd)
}
