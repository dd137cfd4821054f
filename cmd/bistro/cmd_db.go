package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bistroboss/bistro/config"
	"github.com/bistroboss/bistro/pkg/app"
	"github.com/bistroboss/bistro/pkg/docstore"
	"github.com/bistroboss/bistro/pkg/migration"
)

// openStore connects to the configured store for one-shot commands.
func openStore(ctx context.Context) (docstore.Store, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	if config.DatabaseDriver() == "memory" {
		return nil, fmt.Errorf("DB_DRIVER=memory has nothing to migrate or seed")
	}
	return docstore.ConnectMongo(ctx, config.MongoURI(), config.MongoDatabase())
}

// bistro migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the MongoDB indexes that are still pending",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		fmt.Println("Running migrations…")
		return migration.New(store, os.Stdout).Run(ctx)
	},
}

// bistro migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		return migration.New(store, os.Stdout).Status(ctx)
	},
}

// bistro seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter menu and reviews into empty collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		fmt.Println("Running seeders…")
		return app.Seed(ctx, store, os.Stdout)
	},
}
