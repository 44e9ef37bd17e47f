package economy

// Package economy holds the HTTP client for the economy service, the
// external collaborator that owns balances and stipend credits.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxBody = 512

// Client talks to the economy service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new economy client. timeout bounds every request so a
// slow economy service cannot stall the caller's response.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Credit requests a stipend credit for the user. The economy service
// enforces the credit interval itself and answers 400 when the next stipend
// is not due yet; that outcome is a no-op, not an error.
func (c *Client) Credit(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("economy: user ID is required")
	}

	endpoint := c.baseURL + "/stipend/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("economy: build stipend request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("economy: stipend request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body := readBody(resp.Body)
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(body, "not available"):
		// Next stipend is not due yet.
		return nil
	default:
		return fmt.Errorf("economy: stipend for %s failed: %s: %s",
			userID, resp.Status, body)
	}
}

func readBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(body))
}
