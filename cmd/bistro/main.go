package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/bistroboss/bistro/database/migrations"
	_ "github.com/bistroboss/bistro/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "bistro",
	Short:         "Bistro ordering backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(promoteCmd)
}
