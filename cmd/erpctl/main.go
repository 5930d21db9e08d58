package main

import (
	"fmt"
	"os"

	"github.com/fekuna/omnipos-erp-service/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "erpctl",
	Short: "Administrative commands for the OmniPOS ERP service",
	Long: `erpctl runs maintenance tasks against the ERP database.

Available commands:
  migrate      - Apply pending schema migrations
  create-admin - Create a superuser
  metrics      - Recalculate daily sales metrics
  low-stock    - Publish low stock alerts
  predict      - Generate demand predictions`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		cfg = config.LoadEnv()
	},
}

func main() {
	rootCmd.AddCommand(migrateCmd, createAdminCmd, metricsCmd, lowStockCmd, predictCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
