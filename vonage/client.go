// Package vonage toggles capabilities on a Vonage application through the
// Applications API.
package vonage

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
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://api.nexmo.com"

// Application is the application document as returned by the API. Unknown
// fields round-trip untouched.
type Application map[string]json.RawMessage

// recognized lists the capability names that can be enabled and their
// default settings.
var recognized = map[string]json.RawMessage{
	"voice": json.RawMessage(`{}`),
}

// Client calls the Applications API with Basic auth.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
}

// NewClient creates a client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, apiKey, apiSecret string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) applicationURL(appID string) string {
	return c.baseURL + "/v2/applications/" + appID
}

// GetApplication fetches the application document.
func (c *Client) GetApplication(ctx context.Context, appID string) (Application, error) {
	var app Application
	if err := c.do(ctx, http.MethodGet, appID, nil, &app); err != nil {
		return nil, fmt.Errorf("failed to fetch application %s: %w", appID, err)
	}
	return app, nil
}

// UpdateApplication replaces the application document.
func (c *Client) UpdateApplication(ctx context.Context, appID string, app Application) error {
	body, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("failed to encode application: %w", err)
	}
	if err := c.do(ctx, http.MethodPut, appID, body, nil); err != nil {
		return fmt.Errorf("failed to update application %s: %w", appID, err)
	}
	return nil
}

// Capabilities builds the replacement capabilities object from the requested
// names, dropping names that are not recognized. It returns the object and
// the names that were kept, in request order.
func Capabilities(names []string) (map[string]json.RawMessage, []string) {
	out := make(map[string]json.RawMessage)
	var kept []string
	for _, name := range names {
		settings, ok := recognized[name]
		if !ok {
			continue
		}
		if _, dup := out[name]; !dup {
			kept = append(kept, name)
		}
		out[name] = settings
	}
	return out, kept
}

// ToggleCapabilities replaces the application's capabilities with the
// recognized subset of names. With no names nothing is sent.
func (c *Client) ToggleCapabilities(ctx context.Context, appID string, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if appID == "" {
		return nil, errors.New("application id is required")
	}

	app, err := c.GetApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		app = Application{}
	}

	caps, kept := Capabilities(names)
	raw, err := json.Marshal(caps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode capabilities: %w", err)
	}
	app["capabilities"] = raw

	if err := c.UpdateApplication(ctx, appID, app); err != nil {
		return nil, err
	}
	return kept, nil
}

func (c *Client) do(ctx context.Context, method, appID string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.applicationURL(appID), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
