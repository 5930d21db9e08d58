package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/account/dto"
	accRepoPkg "github.com/fekuna/omnipos-erp-service/internal/account/repository"
	accUCPkg "github.com/fekuna/omnipos-erp-service/internal/account/usecase"
	"github.com/fekuna/omnipos-erp-service/internal/app"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	whRepoPkg "github.com/fekuna/omnipos-erp-service/internal/warehouse/repository"
	"github.com/spf13/cobra"
)

// migrateCmd applies the embedded schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := app.NewLogger(cfg)
		defer log.Sync()

		db, err := app.NewDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		return app.Migrate(cmd.Context(), db, log)
	},
}

var adminFlags struct {
	username string
	email    string
	password string
}

// createAdminCmd creates a superuser outside any organization
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a superuser",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := app.NewLogger(cfg)
		defer log.Sync()

		db, err := app.NewDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		tokens := auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
		uc := accUCPkg.NewAccountUseCase(accRepoPkg.NewPGRepository(db), whRepoPkg.NewPGRepository(db), tokens, log)
		u, err := uc.CreateAdmin(cmd.Context(), &dto.CreateAdminInput{
			Username: adminFlags.username,
			Email:    adminFlags.email,
			Password: adminFlags.password,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created superuser %s (%s)\n", u.Username, u.ID)
		return nil
	},
}

var jobFlags struct {
	organizationID string
	date           string
}

// forEachOrganization runs fn as the system principal for the --org
// organization, or for every active organization when the flag is empty.
func forEachOrganization(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, org string) error) error {
	log := app.NewLogger(cfg)
	defer log.Sync()

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	orgs := []string{jobFlags.organizationID}
	if jobFlags.organizationID == "" {
		if orgs, err = a.Analytics.Organizations(cmd.Context()); err != nil {
			return err
		}
	}
	for _, org := range orgs {
		if err := fn(auth.System(cmd.Context(), org), a, org); err != nil {
			return fmt.Errorf("organization %s: %w", org, err)
		}
	}
	return nil
}

// metricsCmd recalculates the daily metric
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Recalculate daily sales metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		var date time.Time
		if jobFlags.date != "" {
			d, err := time.Parse("2006-01-02", jobFlags.date)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			date = d
		}
		return forEachOrganization(cmd, func(ctx context.Context, a *app.App, org string) error {
			m, err := a.Analytics.CalculateDailyMetrics(ctx, org, date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s sales=%s orders=%d\n",
				org, m.Date.Format("2006-01-02"), m.TotalSales.StringFixed(2), m.TotalOrders)
			return nil
		})
	},
}

// lowStockCmd publishes low stock alerts
var lowStockCmd = &cobra.Command{
	Use:   "low-stock",
	Short: "Publish low stock alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachOrganization(cmd, func(ctx context.Context, a *app.App, org string) error {
			n, err := a.Analytics.CheckLowStock(ctx, org)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s low_stock=%d\n", org, n)
			return nil
		})
	},
}

// predictCmd generates tomorrow's demand predictions
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Generate demand predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachOrganization(cmd, func(ctx context.Context, a *app.App, org string) error {
			predictions, err := a.Analytics.GeneratePredictions(ctx, org)
			if err != nil {
				return err
			}
			for _, p := range predictions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s qty=%s confidence=%s\n",
					org, p.PredictionDate.Format("2006-01-02"), p.ProductName,
					p.PredictedQuantity.StringFixed(2), p.ConfidenceScore.StringFixed(2))
			}
			return nil
		})
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.username, "username", "", "superuser username")
	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "superuser email")
	createAdminCmd.Flags().StringVar(&adminFlags.password, "password", "", "superuser password")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")

	for _, c := range []*cobra.Command{metricsCmd, lowStockCmd, predictCmd} {
		c.Flags().StringVar(&jobFlags.organizationID, "org", "", "organization ID (default: every active organization)")
	}
	metricsCmd.Flags().StringVar(&jobFlags.date, "date", "", "day to recalculate, YYYY-MM-DD (default: today)")
}
