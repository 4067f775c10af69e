package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fornello/pizzeria/config"
	"github.com/fornello/pizzeria/database/seeders"
	"github.com/fornello/pizzeria/pkg/database"
)

// withDatabase connects, runs fn, and disconnects.
func withDatabase(fn func(ctx context.Context) error) error {
	config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.Connect(ctx); err != nil {
		return err
	}
	defer database.Disconnect(context.Background()) //nolint:errcheck

	return fn(ctx)
}

// pizzeria db:index — create the unique indexes.
var dbIndexCmd = &cobra.Command{
	Use:   "db:index",
	Short: "Create the unique indexes the data model relies on",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context) error {
			if err := database.EnsureIndexes(ctx); err != nil {
				return err
			}
			fmt.Println("Indexes ensured.")
			return nil
		})
	},
}

// pizzeria db:seed — seed the admin user and starter catalogue.
var dbSeedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Seed the admin user and starter catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(ctx context.Context) error {
			if err := database.EnsureIndexes(ctx); err != nil {
				return err
			}
			if err := seeders.Run(ctx); err != nil {
				return err
			}
			fmt.Println("Database seeded.")
			return nil
		})
	},
}
