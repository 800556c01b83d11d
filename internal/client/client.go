// Package client talks to the bill splitter API.
//
// Validate runs the same calculator.ValidateSplit the server runs before any
// network call, so an input error or an imbalance is reported locally and
// only balanced splits are sent for confirmation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ddublado/slush-bill-splitter/internal/calculator"
	"github.com/ddublado/slush-bill-splitter/internal/models"
)

// APIError is a non-200 response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client calls a bill splitter server. A zero BaseURL disables the remote
// check and Validate returns the local verdict.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a Client for baseURL with a 10 second timeout.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Validate checks the split locally and, when it balances and a server is
// configured, asks the server to confirm it.
//
// Local input errors are returned as-is (they wrap the models sentinels).
// A local imbalance is returned without contacting the server.
func (c *Client) Validate(ctx context.Context, total decimal.Decimal, participants []models.Participant) (models.SplitResult, error) {
	local, err := calculator.ValidateSplit(total, participants)
	if err != nil {
		return models.SplitResult{}, err
	}
	if !local.Success || c.BaseURL == "" {
		return local, nil
	}

	body, err := json.Marshal(models.SplitRequest{Total: total, Splits: participants})
	if err != nil {
		return models.SplitResult{}, fmt.Errorf("failed to encode request: %w", err)
	}

	var remote models.SplitResult
	if err := c.post(ctx, "/api/validate-split", body, &remote); err != nil {
		return models.SplitResult{}, err
	}
	return remote, nil
}

// SplitEvenly divides total among names locally.
func (c *Client) SplitEvenly(total decimal.Decimal, names []string, policy calculator.Policy) ([]models.Participant, error) {
	return calculator.SplitEvenly(total, names, policy)
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		if err := json.Unmarshal(data, &e); err != nil || e.Message == "" {
			e.Message = strings.TrimSpace(string(data))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Message}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// IsAPIError reports whether err came from a non-200 server response.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
