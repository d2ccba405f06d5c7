// Command groupctl groups product line items from a file and explains name similarity.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dealdesk/backend/config"
	"github.com/dealdesk/backend/internal/app"
	"github.com/dealdesk/backend/internal/logging"
	"github.com/dealdesk/backend/internal/usecase"
)

var (
	// Global flags
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "groupctl",
	Short: "Group deal line items that describe the same product",
	Long: `groupctl runs the DealDesk product grouping on local files.

Products are read from a YAML or JSON file holding either a list of line items
or an object with a "products" list. Defaults come from the same config.yaml and
DEALDESK_* environment variables as the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			logger = zap.NewNop()
			return nil
		}
		var err error
		logger, err = logging.New("development", true)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log comparison traces to stderr")

	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(normalizeCmd)
}

// newService builds a grouping service from config without cache or deal source
func newService() (*usecase.GroupingService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Grouping.DebugLogging = true
	}
	return app.NewGroupingService(cfg, nil, nil, currentLogger())
}

func currentLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
