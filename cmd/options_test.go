// ABOUTME: Tests for the options command
// ABOUTME: Verifies delivery channel output formatting and exit codes

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/doklink/doklink-auth/internal/client"
	"github.com/doklink/doklink-auth/internal/models"
)

var sampleOptions = []models.DeliveryOption{
	{Channel: models.ChannelEmail, Label: "Email", Destination: "j***@example.com"},
	{Channel: models.ChannelSMS, Label: "SMS", Destination: "******3210"},
}

func TestFormatOptionsHuman(t *testing.T) {
	output := formatOptionsHuman("johndoe", sampleOptions)

	if !strings.Contains(output, "Delivery channels for johndoe") {
		t.Error("expected heading with username")
	}
	if !strings.Contains(output, "j***@example.com") || !strings.Contains(output, "******3210") {
		t.Error("expected masked destinations")
	}
}

func TestFormatOptionsHuman_Empty(t *testing.T) {
	output := formatOptionsHuman("johndoe", nil)
	if !strings.Contains(output, "No delivery channels") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestFormatOptionsJSON(t *testing.T) {
	output := formatOptionsJSON("johndoe", nil)

	var parsed struct {
		Username string                  `json:"username"`
		Options  []models.DeliveryOption `json:"options"`
	}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed.Username != "johndoe" || parsed.Options == nil {
		t.Errorf("unexpected JSON: %s", output)
	}
}

func TestOptionsCommand_Success(t *testing.T) {
	isolate(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("username"); got != "johndoe" {
			t.Errorf("expected username johndoe, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(client.OptionsResponse{Options: sampleOptions})
	}))
	defer server.Close()
	apiURL = server.URL

	var buf bytes.Buffer
	exitCode := runOptions(context.Background(), &buf, "johndoe")

	if exitCode != 0 {
		t.Errorf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "******3210") {
		t.Error("expected SMS destination in output")
	}
}

func TestOptionsCommand_NoChannels(t *testing.T) {
	isolate(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"options": []}`))
	}))
	defer server.Close()
	apiURL = server.URL

	var buf bytes.Buffer
	if code := runOptions(context.Background(), &buf, "johndoe"); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestOptionsCommand_InvalidUsername(t *testing.T) {
	isolate(t)
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()
	apiURL = server.URL

	var buf bytes.Buffer
	if code := runOptions(context.Background(), &buf, "John Doe"); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if called {
		t.Error("invalid username must not reach the backend")
	}
}

func TestOptionsCommand_ConnectionError(t *testing.T) {
	isolate(t)
	apiURL = "http://localhost:99999"

	var buf bytes.Buffer
	if code := runOptions(context.Background(), &buf, "johndoe"); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(buf.String(), "Error:") {
		t.Error("expected error message in output")
	}
}
