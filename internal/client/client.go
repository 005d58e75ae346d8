// ABOUTME: HTTP client for the DokLink authentication API
// ABOUTME: Translates login, OTP and password-reset intents into REST calls with normalized errors

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doklink/doklink-auth/internal/autherr"
	"github.com/doklink/doklink-auth/internal/models"
	"github.com/google/uuid"
)

// DefaultTimeout bounds every request when no timeout is configured
const DefaultTimeout = 30 * time.Second

// RequestIDHeader carries a per-request correlation ID
const RequestIDHeader = "X-Request-ID"

// Client is the API client for the DokLink auth backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, DefaultTimeout)
}

// NewWithTimeout creates a new API client with a custom request timeout
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the backend URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Identifier string        `json:"identifier"`
	Method     models.Method `json:"method"`
	Mode       models.Mode   `json:"mode"`
	Credential string        `json:"credential"`
}

// OTPRequest is the body of the OTP send endpoints
type OTPRequest struct {
	Identifier string         `json:"identifier"`
	Method     models.Method  `json:"method"`
	Channel    models.Channel `json:"channel,omitempty"`
}

// VerifyRequest is the body of the OTP verification endpoints
type VerifyRequest struct {
	Identifier string        `json:"identifier"`
	Method     models.Method `json:"method"`
	Code       string        `json:"code"`
}

// ResetRequest is the body of POST /api/auth/password/reset
type ResetRequest struct {
	ResetToken      string `json:"reset_token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// SuccessResponse is returned by endpoints without a payload
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ResetTokenResponse is returned once a password-reset OTP is verified
type ResetTokenResponse struct {
	ResetToken string `json:"reset_token"`
}

// OptionsResponse lists the delivery channels for a username
type OptionsResponse struct {
	Options []models.DeliveryOption `json:"options"`
}

// errorPolicy maps ambiguous status codes to the failure they mean on one endpoint
type errorPolicy struct {
	rejected      autherr.Kind // 400 and 401
	gone          autherr.Kind // 410
	unprocessable autherr.Kind // 422
}

var (
	loginPolicy  = errorPolicy{rejected: autherr.InvalidCredentials, gone: autherr.OtpExpired, unprocessable: autherr.InvalidFormat}
	sendPolicy   = errorPolicy{rejected: autherr.InvalidFormat, gone: autherr.OtpExpired, unprocessable: autherr.InvalidFormat}
	verifyPolicy = errorPolicy{rejected: autherr.OtpIncorrect, gone: autherr.OtpExpired, unprocessable: autherr.OtpIncorrect}
	resetPolicy  = errorPolicy{rejected: autherr.TokenExpired, gone: autherr.TokenExpired, unprocessable: autherr.PasswordMismatch}
)

// Login calls POST /api/auth/login
func (c *Client) Login(ctx context.Context, req LoginRequest) (*models.AuthResult, error) {
	var result models.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &result, loginPolicy); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendOTP calls POST /api/auth/otp/send
func (c *Client) SendOTP(ctx context.Context, req OTPRequest) error {
	var resp SuccessResponse
	return c.do(ctx, http.MethodPost, "/api/auth/otp/send", req, &resp, sendPolicy)
}

// VerifyOTP calls POST /api/auth/otp/verify
func (c *Client) VerifyOTP(ctx context.Context, req VerifyRequest) (*models.AuthResult, error) {
	var result models.AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/otp/verify", req, &result, verifyPolicy); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendForgotPasswordOTP calls POST /api/auth/password/forgot
func (c *Client) SendForgotPasswordOTP(ctx context.Context, req OTPRequest) error {
	var resp SuccessResponse
	return c.do(ctx, http.MethodPost, "/api/auth/password/forgot", req, &resp, sendPolicy)
}

// VerifyForgotPasswordOTP calls POST /api/auth/password/verify-otp and returns the reset token
func (c *Client) VerifyForgotPasswordOTP(ctx context.Context, req VerifyRequest) (string, error) {
	var resp ResetTokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/password/verify-otp", req, &resp, verifyPolicy); err != nil {
		return "", err
	}
	if resp.ResetToken == "" {
		return "", autherr.New(autherr.ServerError, "The server did not return a reset token")
	}
	return resp.ResetToken, nil
}

// ConfirmPasswordReset calls POST /api/auth/password/reset
func (c *Client) ConfirmPasswordReset(ctx context.Context, req ResetRequest) error {
	var resp SuccessResponse
	return c.do(ctx, http.MethodPost, "/api/auth/password/reset", req, &resp, resetPolicy)
}

// GetUsernameOTPOptions calls GET /api/auth/otp/options
func (c *Client) GetUsernameOTPOptions(ctx context.Context, username string) ([]models.DeliveryOption, error) {
	var resp OptionsResponse
	path := "/api/auth/otp/options?username=" + url.QueryEscape(username)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, sendPolicy); err != nil {
		return nil, err
	}
	return resp.Options, nil
}

// do performs one JSON round trip and normalizes every failure into an *autherr.Error
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, policy errorPolicy) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return autherr.Wrap(autherr.ServerError, "Failed to encode request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return autherr.Wrap(autherr.ServerError, "Failed to create request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("Auth request failed", "request_id", requestID, "path", routeOf(path), "error", stripURL(err))
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	slog.Debug("Auth request",
		"request_id", requestID,
		"method", method,
		"path", routeOf(path),
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp, policy)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return autherr.Wrap(autherr.ServerError, "Invalid response from DokLink", err)
	}
	return nil
}

// handleRequestError converts transport and context errors to NetworkError
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	cause := stripURL(err)
	if ctx.Err() == context.Canceled {
		return autherr.Wrap(autherr.NetworkError, "Request canceled", cause)
	}
	if ctx.Err() == context.DeadlineExceeded {
		return autherr.Wrap(autherr.NetworkError, "Request timed out", cause)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return autherr.Wrap(autherr.NetworkError, "Request timed out", cause)
	}
	return autherr.Wrap(autherr.NetworkError, fmt.Sprintf("Cannot connect to DokLink at %s", c.baseURL), cause)
}

// handleErrorResponse parses API error responses into classified errors
func (c *Client) handleErrorResponse(resp *http.Response, policy errorPolicy) error {
	var errResp ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&errResp)

	kind, ok := kindForCode(errResp.Code)
	if !ok {
		kind = kindForStatus(resp.StatusCode, policy)
	}

	msg := errResp.Error
	if msg == "" {
		msg = defaultMessage(kind, resp.StatusCode)
	}
	return &autherr.Error{Kind: kind, Message: msg, Err: fmt.Errorf("backend returned status %d", resp.StatusCode)}
}

func kindForCode(code string) (autherr.Kind, bool) {
	switch strings.ToLower(code) {
	case "invalid_credentials", "wrong_password":
		return autherr.InvalidCredentials, true
	case "otp_incorrect", "invalid_otp":
		return autherr.OtpIncorrect, true
	case "otp_expired":
		return autherr.OtpExpired, true
	case "token_expired", "invalid_reset_token":
		return autherr.TokenExpired, true
	case "password_mismatch":
		return autherr.PasswordMismatch, true
	case "not_found", "user_not_found":
		return autherr.NotFound, true
	case "validation_error", "invalid_format":
		return autherr.InvalidFormat, true
	case "required":
		return autherr.Required, true
	}
	return autherr.ServerError, false
}

func kindForStatus(status int, policy errorPolicy) autherr.Kind {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		return policy.rejected
	case status == http.StatusNotFound:
		return autherr.NotFound
	case status == http.StatusGone:
		return policy.gone
	case status == http.StatusUnprocessableEntity:
		return policy.unprocessable
	default:
		return autherr.ServerError
	}
}

func defaultMessage(kind autherr.Kind, status int) string {
	switch kind {
	case autherr.InvalidCredentials:
		return "Incorrect login details"
	case autherr.OtpIncorrect:
		return "Incorrect code. Please try again."
	case autherr.OtpExpired:
		return "This code has expired. Request a new one."
	case autherr.TokenExpired:
		return "Your reset session expired. Verify your account again."
	case autherr.PasswordMismatch:
		return "Passwords do not match"
	case autherr.NotFound:
		return "No account found for these details"
	case autherr.InvalidFormat:
		return "The details entered are not valid"
	default:
		if status == http.StatusTooManyRequests {
			return "Too many attempts. Please wait and try again."
		}
		return fmt.Sprintf("DokLink returned status %d", status)
	}
}

// routeOf strips the query string so usernames never reach the logs
func routeOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// stripURL unwraps transport errors whose text embeds the full request URL,
// query string included.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
