// ABOUTME: Root command for the doklink CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"os"
	"strings"

	"github.com/doklink/doklink-auth/internal/client"
	"github.com/doklink/doklink-auth/internal/config"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "doklink",
	Short: "Sign in to DokLink from the terminal",
	Long: `doklink signs you in to DokLink with a phone number, email address or
username, using a password or a one-time code.

Environment Variables:
  DOKLINK_API_URL            Backend API URL (default: http://localhost:8080)
  DOKLINK_HTTP_TIMEOUT       Request timeout in seconds (default: 30)
  DOKLINK_RESEND_SECONDS     Delay before a code can be re-sent (default: 30)
  DOKLINK_COUNTDOWN_SECONDS  Pause after verification (default: 5)
  DOKLINK_CONFIG_DIR         Recent logins and debug log (default: ~/.config/doklink)
  LOG_LEVEL, LOG_FORMAT      Debug log level and format (text, json)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides DOKLINK_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return strings.TrimRight(apiURL, "/")
	}
	if envURL := os.Getenv("DOKLINK_API_URL"); envURL != "" {
		return strings.TrimRight(envURL, "/")
	}
	return config.DefaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// loadConfig reads configuration and applies the --api-url override
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = GetAPIURL()
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *client.Client {
	return client.NewWithTimeout(cfg.APIURL, cfg.HTTPTimeout)
}
