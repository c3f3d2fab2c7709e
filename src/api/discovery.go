package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ogri-la/strongbox-disco-go/src/http"
	"github.com/ogri-la/strongbox-disco-go/src/retry"
	"github.com/ogri-la/strongbox-disco-go/src/types"
)

const (
	DefaultBaseURL = "https://services.addons.mozilla.org/api/v4"
	DefaultLang    = "en-US"

	discoveryEndpoint = "discovery/"
)

// APIError is returned when the discovery endpoint answers with a non-200 status
type APIError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status code %d from '%s'", e.StatusCode, e.URL)
}

// Client calls the discovery endpoint
type Client struct {
	http    http.HTTPClient
	baseURL string
	lang    string
	retry   retry.Config
}

// NewClient creates a discovery client. Empty baseURL and lang fall back to the defaults.
func NewClient(client http.HTTPClient, baseURL, lang string, retryConfig retry.Config) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if lang == "" {
		lang = DefaultLang
	}
	return &Client{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		lang:    lang,
		retry:   retryConfig,
	}
}

// DiscoveryURL builds the discovery URL for the given TAAR parameters.
// Parameters are encoded in key order; "lang" is set unless the params carry one.
func (c *Client) DiscoveryURL(taarParams map[string]string) string {
	query := url.Values{}
	query.Set("lang", c.lang)
	for key, value := range taarParams {
		query.Set(key, value)
	}
	return c.baseURL + "/" + discoveryEndpoint + "?" + query.Encode()
}

// GetDiscoResults fetches personalised discovery results
func (c *Client) GetDiscoResults(ctx context.Context, taarParams map[string]string) (*types.ResultsResponse, error) {
	discoURL := c.DiscoveryURL(taarParams)

	resp, err := retry.WithRetry(ctx, c.http, discoURL, c.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discovery results: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("failed to fetch discovery results: %w", retry.ErrNoResponse)
	}

	if resp.StatusCode != 200 {
		return nil, &APIError{URL: discoURL, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	return DecodeResults(resp.Body)
}

// DecodeResults parses a discovery response body. A missing results list decodes as empty.
func DecodeResults(body []byte) (*types.ResultsResponse, error) {
	var response types.ResultsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse discovery results: %w", err)
	}
	if response.Results == nil {
		response.Results = []types.ExternalResult{}
	}
	return &response, nil
}
