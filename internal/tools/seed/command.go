package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mercatto/marketplace-api/internal/config"
	"github.com/mercatto/marketplace-api/internal/database"
	"github.com/mercatto/marketplace-api/internal/observability"
	"github.com/mercatto/marketplace-api/internal/tools/common"
	"github.com/mercatto/marketplace-api/internal/tools/ui"
)

type options struct {
	envFile string
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Demo catalog seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Migrate and load the demo sellers and catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed apply", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					observability.RecordToolCommandRun(ctx, "seed", "apply", "error")
					return nil, err
				}
				if err := database.Migrate(db); err != nil {
					observability.RecordToolCommandRun(ctx, "seed", "apply", "error")
					return nil, err
				}
				report, err := database.SeedSync(db)
				if err != nil {
					observability.RecordToolCommandRun(ctx, "seed", "apply", "error")
					return nil, err
				}
				observability.RecordToolCommandRun(ctx, "seed", "apply", "success")
				details := []string{
					fmt.Sprintf("created_users=%d", report.CreatedUsers),
					fmt.Sprintf("created_products=%d", report.CreatedProducts),
				}
				if report.Noop {
					details = append(details, "database already seeded, nothing to do")
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed apply", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed dry-run", func(ctx context.Context) ([]string, error) {
				if _, _, err := loadConfigDB(opts.envFile); err != nil {
					observability.RecordToolCommandRun(ctx, "seed", "dry-run", "error")
					return nil, err
				}
				observability.RecordToolCommandRun(ctx, "seed", "dry-run", "success")
				return []string{
					"would ensure demo sellers: electronics@mercatto.dev, general@mercatto.dev",
					"would ensure demo products: A plasma TV, LCD TV, Fastest Laptop, Videogame console, Comfortable chairs",
					"existing rows are left untouched",
				}, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed dry-run", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		return fn(context.Background())
	}
	return ui.Run(title, fn)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
