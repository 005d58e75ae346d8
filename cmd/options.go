// ABOUTME: Options command for the doklink CLI
// ABOUTME: Lists where a username can receive a one-time code

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/doklink/doklink-auth/internal/autherr"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/doklink/doklink-auth/internal/validation"
	"github.com/spf13/cobra"
)

var optionsCmd = &cobra.Command{
	Use:   "options <username>",
	Short: "List code delivery channels for a username",
	Long: `List the channels a one-time code can be sent to for a username.
Destinations are masked by the backend.

Exit codes:
  0  channels listed
  1  no channels available
  2  error`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runOptions(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
}

// runOptions fetches delivery options and returns exit code
func runOptions(ctx context.Context, w io.Writer, username string) int {
	if err := validation.Identifier(username, models.MethodUsername); err != nil {
		fmt.Fprintf(w, "Error: %s\n", autherr.Message(err))
		return 2
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	opts, err := newClient(cfg).GetUsernameOTPOptions(ctx, username)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", autherr.Message(err))
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatOptionsJSON(username, opts))
	} else {
		fmt.Fprintln(w, formatOptionsHuman(username, opts))
	}

	if len(opts) == 0 {
		return 1
	}
	return 0
}

// formatOptionsHuman formats delivery options for human readability
func formatOptionsHuman(username string, opts []models.DeliveryOption) string {
	if len(opts) == 0 {
		return fmt.Sprintf("No delivery channels available for %s", username)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Delivery channels for %s:", username)
	for _, o := range opts {
		label := o.Label
		if label == "" {
			label = o.Channel.Label()
		}
		fmt.Fprintf(&b, "\n  %-6s %-8s %s", o.Channel, label, o.Destination)
	}
	return b.String()
}

// formatOptionsJSON formats delivery options as JSON
func formatOptionsJSON(username string, opts []models.DeliveryOption) string {
	if opts == nil {
		opts = []models.DeliveryOption{}
	}
	output := map[string]interface{}{
		"username": username,
		"options":  opts,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
