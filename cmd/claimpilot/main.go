package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"claimpilot/internal/config"
)

var (
	// Global flags
	verbose   bool
	workspace string
	timeout   time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimpilot",
	Short: "claimpilot - batch claim submission through the billing portal",
	Long: `claimpilot drives the third-party billing portal for every row of an
input spreadsheet: it filters the claims listing to the row's patients,
fills and saves each matching claim, and writes an aggregated status
back into the spreadsheet.

The portal session is logged in and filtered once per run; rows are
processed strictly in input order.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// statusCmd shows the effective configuration
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show claimpilot configuration status",
	RunE:  showStatus,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Hour, "Run timeout")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveWorkspace returns the --workspace flag or the current directory.
func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	cwd, _ := os.Getwd()
	return cwd
}

// showStatus displays the effective configuration
func showStatus(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	path := config.DefaultPath(ws)

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	fmt.Println("claimpilot Status")
	fmt.Println("=================")
	fmt.Printf("Workspace: %s\n", ws)
	if _, serr := os.Stat(path); serr == nil {
		fmt.Printf("Config:    %s\n", path)
	} else {
		fmt.Printf("Config:    %s (not found, using defaults)\n", path)
	}
	fmt.Println()

	if cfg.Portal.BaseURL != "" {
		fmt.Printf("✓ Portal URL: %s\n", cfg.Portal.BaseURL)
	} else {
		fmt.Println("✗ Portal URL not configured (set portal.base_url or CLAIMPILOT_PORTAL_URL)")
	}
	if cfg.Portal.Username != "" && cfg.Portal.Password != "" {
		fmt.Println("✓ Portal credentials configured")
	} else {
		fmt.Println("✗ Portal credentials not configured (set CLAIMPILOT_PORTAL_USERNAME / CLAIMPILOT_PORTAL_PASSWORD)")
	}
	fmt.Printf("  Entity source filter: %s\n", cfg.Portal.EntitySource)
	fmt.Printf("  Assessment filter:    %s\n", cfg.Portal.Assessment)
	fmt.Printf("  Billing sentinel:     %s\n", cfg.Billing.Sentinel)
	fmt.Printf("  Headless browser:     %t\n", cfg.Browser.Headless)
	return nil
}
