// Package formation resolves a train number to a rolling-stock formation
// identifier via an optional external lookup service. The lookup is best
// effort: every failure mode collapses to "formation unknown".
package formation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Lookup resolves a train number to a formation identifier (e.g. a trainset
// number). An empty string means unknown; callers leave the draft field
// untouched in that case.
type Lookup interface {
	Formation(ctx context.Context, trainNumber string) string
}

// Noop is the Lookup used when no formation service is configured.
type Noop struct{}

// Formation always reports unknown.
func (Noop) Formation(context.Context, string) string { return "" }

// unknownSentinel is the value the upstream service returns when it has no
// data for a train. It must be treated the same as an error.
const unknownSentinel = "N/A"

// Client queries an HTTP formation service.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient builds a Lookup against the formation service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Formation asks the service for the formation running as trainNumber.
// Transport errors, bad payloads, and the service's own unknown sentinel all
// yield "".
func (c *Client) Formation(ctx context.Context, trainNumber string) string {
	if trainNumber == "" {
		return ""
	}

	u := fmt.Sprintf("%s/formations?train_number=%s", c.baseURL, url.QueryEscape(trainNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ""
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var body struct {
		Formation string `json:"formation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}

	f := strings.TrimSpace(body.Formation)
	if f == "" || strings.EqualFold(f, unknownSentinel) {
		return ""
	}
	return f
}
