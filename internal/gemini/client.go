// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Configuration constants for the Gemini API.
const (
	// DefaultBaseURL is the base URL of the Generative Language API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.0-flash"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion attacks.
	MaxResponseSize = 10 * 1024 * 1024
)

// Generator produces one reply for one prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// =============================================================================
// REST CLIENT
// =============================================================================

// Client calls generateContent over plain HTTPS.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a REST client with default model, endpoint and timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      DefaultModel,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zerolog.Nop(),
	}
}

// WithBaseURL overrides the API endpoint.
func (c *Client) WithBaseURL(baseURL string) *Client {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// WithModel selects the model.
func (c *Client) WithModel(model string) *Client {
	if model != "" {
		c.model = model
	}
	return c
}

// WithTimeout sets the overall request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithHTTPClient replaces the HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithLogger sets the logger used for request diagnostics.
func (c *Client) WithLogger(logger zerolog.Logger) *Client {
	c.log = logger
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// IsConfigured returns true if an API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Generate implements Generator with a single request.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", c.fail(0, ErrNotConfigured)
	}

	body, err := json.Marshal(NewPromptRequest(prompt))
	if err != nil {
		return "", c.fail(0, errors.Wrap(err, "marshal request"))
	}

	endpoint := c.baseURL + "/models/" + url.PathEscape(c.model) + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", c.fail(0, errors.Wrap(err, "create request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	// SECURITY: Drop the key from the request before anything can log it
	req.Header.Del("x-goog-api-key")

	if err != nil {
		return "", c.fail(0, errors.Wrap(err, "request failed"))
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return "", c.fail(resp.StatusCode, err)
	}

	c.log.Debug().
		Str("model", c.model).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Int("bytes", len(data)).
		Msg("generateContent")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.fail(resp.StatusCode, errorFromBody(resp.StatusCode, data))
	}

	var out GenerateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", c.fail(resp.StatusCode, errors.Wrap(err, "parse response"))
	}

	text, ok := out.Text()
	if !ok {
		return "", c.fail(resp.StatusCode, ErrEmptyCandidates)
	}
	return text, nil
}

func (c *Client) fail(status int, err error) error {
	return &GenerationError{Backend: BackendREST, Status: status, Err: err}
}

// readResponse reads the response body with size limits to prevent memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, errors.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// errorFromBody converts an error response into a cause, preferring the API's
// own message.
func errorFromBody(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Wrap(ErrAuthFailed, msg)
	case http.StatusTooManyRequests:
		return errors.Wrap(ErrRateLimited, msg)
	default:
		return errors.New(msg)
	}
}
