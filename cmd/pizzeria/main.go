package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pizzeria",
	Short: "Fornello — pizza ordering API CLI",
	Long:  "Fornello is the pizza ordering backend. Use this CLI to run the server and manage the database and queue.",
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(dbIndexCmd)
	rootCmd.AddCommand(dbSeedCmd)

	// Workers
	rootCmd.AddCommand(queueWorkCmd)
}
