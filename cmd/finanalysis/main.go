// Command finanalysis is the period-keyed financial statement dashboard.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/config"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/dashboard"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/datasource"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "finanalysis",
	Short: "Quarterly financial statement dashboard",
	Long: `finanalysis reads per-ticker income statement, balance sheet and cash
flow documents, merges them by fiscal quarter (Mon-YY), and reports
normalised trends, common-size breakdowns, growth and ratios for any
window of the master calendar.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if dir, _ := cmd.Flags().GetString("data"); dir != "" {
			cfg.Data.Dir = dir
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logging.Setup(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("data", "", "directory of ticker documents (overrides data.dir)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (trace, debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(tickersCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(commonSizeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// newService builds the dashboard over the configured document directory.
func newService() (*dashboard.Service, *datasource.FileSource, error) {
	src := datasource.NewFileSource(cfg.Data)
	svc, err := dashboard.New(cfg, src)
	if err != nil {
		return nil, nil, err
	}
	return svc, src, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// version needs no config
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("finanalysis %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}
