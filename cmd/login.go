// ABOUTME: Login command for the doklink CLI
// ABOUTME: Runs the interactive sign-in flow and reports the authenticated user

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doklink/doklink-auth/internal/flow"
	"github.com/doklink/doklink-auth/internal/logger"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/doklink/doklink-auth/internal/recentlogins"
	"github.com/doklink/doklink-auth/internal/tokeninfo"
	"github.com/doklink/doklink-auth/internal/tui"
	"github.com/spf13/cobra"
)

var (
	loginMethod     string
	loginIdentifier string
)

// runSession starts the interactive flow; tests replace it
var runSession = tui.Run

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in interactively",
	Long: `Sign in with a phone number, email address or username using a password
or a one-time code. The last identifier used with each method is remembered.

Exit codes:
  0  signed in
  1  sign-in cancelled
  2  error`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginMethod, "method", "", "Login method: phone, email or username (skips the menu)")
	loginCmd.Flags().StringVar(&loginIdentifier, "identifier", "", "Identifier to prefill")
	rootCmd.AddCommand(loginCmd)
}

// runLogin executes the sign-in flow and returns exit code
func runLogin(ctx context.Context, w io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	closeLog, err := logger.InitFile(cfg.ConfigDir, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(w, "Error: opening debug log: %v\n", err)
		return 2
	}
	defer closeLog()

	opts := tui.Options{
		Identifier:       loginIdentifier,
		ResendSeconds:    cfg.ResendSeconds,
		CountdownSeconds: cfg.CountdownSeconds,
	}

	var store *recentlogins.Store
	if cfg.ConfigDir != "" {
		store = recentlogins.New(cfg.ConfigDir)
		opts.Prefill = store.Latest
	}

	if loginMethod != "" {
		m, err := models.ParseMethod(loginMethod)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		opts.Method = &m
		if opts.Identifier == "" && store != nil {
			if id, ok := store.Latest(m); ok {
				opts.Identifier = id
			}
		}
	}

	slog.Info("Starting sign-in", "api_url", cfg.APIURL)
	res, err := runSession(ctx, newClient(cfg), opts)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if res == nil || res.Outcome != flow.OutcomeAuthenticated {
		fmt.Fprintln(w, "Sign-in cancelled")
		return 1
	}

	tokeninfo.Enrich(res.Auth)

	if store != nil {
		if err := store.Add(res.Method, res.Identifier); err != nil {
			slog.Warn("Failed to record recent login", "error", err)
		}
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatLoginJSON(res))
	} else {
		fmt.Fprintln(w, formatLoginHuman(res))
	}
	return 0
}

// formatLoginHuman formats a successful sign-in for human readability
func formatLoginHuman(res *tui.Result) string {
	out := fmt.Sprintf("Signed in as %s (%s)", res.Identifier, res.Method.Label())
	if res.Auth == nil {
		return out
	}
	if res.Auth.DisplayName != "" {
		out += fmt.Sprintf("\nName:     %s", res.Auth.DisplayName)
	}
	if res.Auth.UserID != "" {
		out += fmt.Sprintf("\nUser ID:  %s", res.Auth.UserID)
	}
	if !res.Auth.ExpiresAt.IsZero() {
		out += fmt.Sprintf("\nExpires:  %s", res.Auth.ExpiresAt.Format(time.RFC3339))
	}
	return out
}

// formatLoginJSON formats a successful sign-in as JSON, tokens included
func formatLoginJSON(res *tui.Result) string {
	output := map[string]interface{}{
		"method":     res.Method.String(),
		"identifier": res.Identifier,
	}
	if res.Auth != nil {
		output["access_token"] = res.Auth.AccessToken
		if res.Auth.RefreshToken != "" {
			output["refresh_token"] = res.Auth.RefreshToken
		}
		if res.Auth.UserID != "" {
			output["user_id"] = res.Auth.UserID
		}
		if res.Auth.DisplayName != "" {
			output["display_name"] = res.Auth.DisplayName
		}
		if !res.Auth.ExpiresAt.IsZero() {
			output["expires_at"] = res.Auth.ExpiresAt.Format(time.RFC3339)
		}
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
