package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"timebudget/internal/auth"
	"timebudget/internal/cli"
	"timebudget/internal/config"
	"timebudget/internal/core"
	applog "timebudget/internal/log"
	"timebudget/internal/services"
	"timebudget/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	var logLevel string

	root := &cobra.Command{
		Use:           "timebudgetctl",
		Short:         "Administrative tasks for the timebudget database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			cli.SetupLogger(logLevel, applog.ComponentCLI)
		},
	}
	root.PersistentFlags().StringVar(&cfg.SQLiteDBPath, "db", cfg.SQLiteDBPath, "SQLite database path")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug|info|warn|error")

	root.AddCommand(newMigrateCmd(cfg))
	root.AddCommand(newSeedCmd(cfg))
	root.AddCommand(newImportCategoriesCmd(cfg))
	root.AddCommand(newUserSummaryCmd(cfg))
	return root
}

// openServices opens the SQLite store, applying pending migrations.
func openServices(cfg *config.Config) (*services.Services, func(), error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, err
	}
	svc := services.New(services.Deps{
		Store:  repo.Store(),
		Hasher: auth.NewBcrypt(cfg.BcryptCost),
		Tokens: auth.NewTokens(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}),
	})
	return svc, func() { _ = repo.Close() }, nil
}

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	migrate := &cobra.Command{Use: "migrate", Short: "Manage schema migrations"}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
				return err
			}
			return printVersion(cmd, cfg.SQLiteDBPath)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			if err := storage.RollbackMigrations(cfg.SQLiteDBPath, steps); err != nil {
				return err
			}
			return printVersion(cmd, cfg.SQLiteDBPath)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	migrate.AddCommand(down, &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd, cfg.SQLiteDBPath)
		},
	})
	return migrate
}

func printVersion(cmd *cobra.Command, dbPath string) error {
	version, dirty, err := storage.MigrationVersion(dbPath)
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
	return nil
}

func newSeedCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-categories",
		Short: "Insert the default categories that are missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := openServices(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := svc.Categories.SeedDefaults(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "inserted %d of %d default categories\n", n, len(core.DefaultCategories))
			return nil
		},
	}
}

func newImportCategoriesCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "import-categories <file.yaml>",
		Short: "Insert categories listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			cats, err := readCategoryFile(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			svc, closeFn, err := openServices(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := svc.Categories.Seed(cmd.Context(), cats)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "inserted %d of %d categories\n", n, len(cats))
			return nil
		},
	}
}

func newUserSummaryCmd(cfg *config.Config) *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "user-summary <email>",
		Short: "Print a user's weekly analytics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var weekStart *time.Time
			if week != "" {
				t, err := time.ParseInLocation("2006-01-02", week, time.Local)
				if err != nil {
					return fmt.Errorf("--week must be YYYY-MM-DD: %w", err)
				}
				weekStart = &t
			}

			svc, closeFn, err := openServices(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			user, err := svc.Auth.FindByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			a, err := svc.Analytics.Weekly(ctx, user.ID, weekStart)
			if err != nil {
				return err
			}
			writeSummary(cmd, user, a)
			return nil
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "any day of the week to report (default: current week)")
	return cmd
}

func writeSummary(cmd *cobra.Command, user core.User, a services.WeeklyAnalytics) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
	_, _ = fmt.Fprintf(out, "week %s to %s\n", a.WeekStart.Format("2006-01-02"), a.WeekEnd.AddDate(0, 0, -1).Format("2006-01-02"))
	_, _ = fmt.Fprintf(out, "tracked %s of %s available (%d%%)\n", a.FormattedTracked(), a.FormattedAvailable(), a.UsagePercentage)
	_, _ = fmt.Fprintf(out, "aligned with priorities %d%%, wasted %s\n", a.PriorityAlignment, core.FormatMinutes(a.WastedMinutes))
	if a.AverageSatisfaction > 0 {
		_, _ = fmt.Fprintf(out, "average satisfaction %.1f\n", a.AverageSatisfaction)
	}
	for _, c := range a.CategoryBreakdown {
		_, _ = fmt.Fprintf(out, "  %-12s %8s %3d%%\n", c.CategoryName, core.FormatMinutes(c.TotalMinutes), c.Percentage)
	}
	if len(a.CategoryBreakdown) == 0 {
		_, _ = fmt.Fprintln(out, "  no activities")
	}
}
