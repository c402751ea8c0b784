package main

import (
	"fmt"
	"os"

	"catalog-service/common/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "catalog-import",
	Short: "Run the catalog CSV import pipeline against a local file",
	Long: `catalog-import reads a product CSV (header row required) and imports the
valid rows into the catalog store, printing the import outcome as JSON.

Examples:
  catalog-import validate products.csv
  catalog-import run products.csv --store mongo --mongo-uri mongodb://localhost:27017
  catalog-import run products.csv --store dynamodb --table Products`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := logger.Initialize(env); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

var env string

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "Logging environment (development or production)")
	rootCmd.AddCommand(runCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
