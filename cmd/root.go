// ABOUTME: Root command for the inventory-admin CLI
// ABOUTME: Handles global flags, configuration, and launches the TUI by default

package cmd

import (
	"os"
	"strings"

	"github.com/ptisa/inventory-admin/internal/config"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
	configDir  string
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "inventory-admin",
	Short: "Terminal admin panel for the IT asset inventory",
	Long: `inventory-admin manages the company's IT asset inventory from the terminal.

Run without a subcommand to open the interactive panel. One-shot commands
(devices, summary, whoami) reuse the session stored by 'login'.

Environment Variables:
  INVENTORY_API_URL          Backend API URL (default: http://localhost:8080)
  INVENTORY_CONFIG_DIR       Session, config.yaml, and debug.log location
  INVENTORY_IDLE_TIMEOUT     Inactivity logout window (default: 10m)
  INVENTORY_REQUEST_TIMEOUT  Per-request timeout (default: 30s)
  LOG_LEVEL, LOG_FORMAT      Logging (default: info, text)
  OTEL_EXPORTER_OTLP_ENDPOINT  Export traces over OTLP gRPC when set`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides INVENTORY_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides INVENTORY_CONFIG_DIR)")
	rootCmd.Run = tuiCmd.Run
}

// loadConfig reads .env, config.yaml, and the environment. The --config-dir
// flag also selects which config.yaml is read.
func loadConfig() (*config.Config, error) {
	if configDir != "" {
		if err := os.Setenv("INVENTORY_CONFIG_DIR", configDir); err != nil {
			return nil, err
		}
	}
	return config.Load(".env")
}

// GetAPIURL returns the API URL from flag, then environment, config file, or default
func GetAPIURL(cfg *config.Config) string {
	if apiURL != "" {
		return strings.TrimRight(apiURL, "/")
	}
	return cfg.APIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
