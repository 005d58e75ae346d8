// ABOUTME: Validate command for the doklink CLI
// ABOUTME: Checks an identifier offline using the same rules as the sign-in form

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/doklink/doklink-auth/internal/autherr"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/doklink/doklink-auth/internal/validation"
	"github.com/spf13/cobra"
)

var validateMethod string

var validateCmd = &cobra.Command{
	Use:   "validate <identifier>",
	Short: "Check an identifier without contacting the backend",
	Long: `Check that an identifier is well formed for a login method.

Exit codes:
  0  valid
  1  invalid
  2  error`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runValidate(os.Stdout, args[0], validateMethod)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateMethod, "method", "phone", "Login method: phone, email or username")
	rootCmd.AddCommand(validateCmd)
}

// runValidate validates identifier for method and returns exit code
func runValidate(w io.Writer, identifier, method string) int {
	m, err := models.ParseMethod(method)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	verr := validation.Identifier(identifier, m)
	if IsJSONOutput() {
		output := map[string]interface{}{
			"method":     m.String(),
			"identifier": identifier,
			"valid":      verr == nil,
		}
		if verr != nil {
			output["error"] = autherr.Message(verr)
		}
		data, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(w, string(data))
	} else if verr != nil {
		fmt.Fprintf(w, "Invalid %s: %s\n", m.Label(), autherr.Message(verr))
	} else {
		fmt.Fprintf(w, "Valid %s\n", m.Label())
	}

	if verr != nil {
		return 1
	}
	return 0
}
