// ABOUTME: Shared setup for command tests
// ABOUTME: Isolates environment, working directory and config dir per test

package cmd

import (
	"testing"
)

// isolate points configuration at a fresh temp dir and clears flag state
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range []string{
		"DOKLINK_API_URL", "DOKLINK_HTTP_TIMEOUT", "DOKLINK_RESEND_SECONDS",
		"DOKLINK_COUNTDOWN_SECONDS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("DOKLINK_CONFIG_DIR", dir)

	apiURL = ""
	jsonOutput = false
	loginMethod = ""
	loginIdentifier = ""
	t.Cleanup(func() {
		apiURL = ""
		jsonOutput = false
		loginMethod = ""
		loginIdentifier = ""
	})
	return dir
}
