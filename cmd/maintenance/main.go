package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"golang-dex-token-analyzer/internal/bootstrap"
	"golang-dex-token-analyzer/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	confirm    bool
)

// withApp runs fn against a freshly wired App and exits non-zero on error.
func withApp(fn func(ctx context.Context, app *bootstrap.App) error) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := bootstrap.New(configPath, bootstrap.Options{})
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer app.Close()

		if err := fn(ctx, app); err != nil {
			app.Logger.Error("Command failed", logger.StringField("command", cmd.Name()), logger.ErrorField(err))
			app.Close()
			os.Exit(1)
		}
	}
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch the default chain and reconcile every pair",
	Run: withApp(func(ctx context.Context, app *bootstrap.App) error {
		report, err := app.Updater.UpdateAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %d of %d pairs (%d skipped, %d failed).\n", report.Updated, report.Fetched, report.Skipped, report.Failed)
		return nil
	}),
}

var updateTokensCmd = &cobra.Command{
	Use:   "update-tokens [address...]",
	Short: "Reconcile the pairs of the given token addresses",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *bootstrap.App) error {
			report, err := app.Updater.UpdateByTokenAddresses(ctx, args)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %d of %d pairs (%d skipped, %d failed).\n", report.Updated, report.Fetched, report.Skipped, report.Failed)
			return nil
		})(cmd, args)
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete every stored token",
	Run: withApp(func(ctx context.Context, app *bootstrap.App) error {
		if !confirm {
			return fmt.Errorf("refusing to delete all tokens without --yes")
		}
		n, err := app.Maintenance.Cleanup(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d tokens.\n", n)
		return nil
	}),
}

var cleanDecimalsCmd = &cobra.Command{
	Use:   "clean-decimals",
	Short: "Delete tokens whose USD price is negative or implausibly large",
	Run: withApp(func(ctx context.Context, app *bootstrap.App) error {
		n, err := app.Maintenance.CleanDecimals(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d tokens with out-of-range prices.\n", n)
		return nil
	}),
}

var fixDecimalsCmd = &cobra.Command{
	Use:   "fix-decimals",
	Short: "Rewrite NaN and infinite numerics",
	Run: withApp(func(ctx context.Context, app *bootstrap.App) error {
		fixed, err := app.Maintenance.FixDecimals(ctx)
		if err != nil {
			return err
		}
		columns := make([]string, 0, len(fixed))
		for column := range fixed {
			columns = append(columns, column)
		}
		sort.Strings(columns)
		for _, column := range columns {
			fmt.Printf("%-25s %d\n", column, fixed[column])
		}
		return nil
	}),
}

func main() {
	rootCmd := &cobra.Command{Use: "maintenance"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	cleanupCmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deleting every token")

	rootCmd.AddCommand(updateCmd, updateTokensCmd, cleanupCmd, cleanDecimalsCmd, fixDecimalsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing maintenance CLI: %s\n", err)
		os.Exit(1)
	}
}
