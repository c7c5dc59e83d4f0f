// Package knowledge queries the Wolfram|Alpha full-results API for ad hoc
// answers, currency conversions and budget commentary.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the v2 query endpoint.
const DefaultBaseURL = "http://api.wolframalpha.com/v2/query"

var (
	// ErrNotConfigured is returned when no app id is set.
	ErrNotConfigured = errors.New("knowledge service not configured")
	// ErrNoResult is returned when the response has no usable pod.
	ErrNoResult = errors.New("no result available")
)

// Client calls the Wolfram|Alpha v2 query API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
}

// NewClient creates a client. An empty baseURL selects DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL, appID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, appID: appID}
}

// Configured reports whether an app id is set.
func (c *Client) Configured() bool {
	return c.appID != ""
}

// QueryResult is the "queryresult" object of a response.
type QueryResult struct {
	Success bool  `json:"success"`
	Error   bool  `json:"error"`
	Pods    []Pod `json:"pods"`
}

// Pod is one titled section of a result.
type Pod struct {
	Title   string   `json:"title"`
	ID      string   `json:"id"`
	Subpods []Subpod `json:"subpods"`
}

// Subpod carries the plaintext answer.
type Subpod struct {
	Title     string `json:"title"`
	Plaintext string `json:"plaintext"`
}

type response struct {
	QueryResult QueryResult `json:"queryresult"`
}

// Raw runs input and returns the decoded query result.
func (c *Client) Raw(ctx context.Context, input string) (*QueryResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("input", input)
	params.Set("format", "plaintext")
	params.Set("output", "JSON")
	params.Set("appid", c.appID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &body.QueryResult, nil
}

// ConvertCurrency asks for "{amount} {from} to {to}" and returns the second pod.
func (c *Client) ConvertCurrency(ctx context.Context, amount, from, to string) (string, error) {
	return c.podText(ctx, fmt.Sprintf("%s %s to %s", amount, strings.ToUpper(from), strings.ToUpper(to)), 1)
}

// AnalyzeBudget asks for "analyze {amount} budget" and returns the first pod.
func (c *Client) AnalyzeBudget(ctx context.Context, amount string) (string, error) {
	return c.podText(ctx, fmt.Sprintf("analyze %s budget", amount), 0)
}

func (c *Client) podText(ctx context.Context, input string, index int) (string, error) {
	result, err := c.Raw(ctx, input)
	if err != nil {
		return "", err
	}
	if index >= len(result.Pods) {
		return "", ErrNoResult
	}
	return firstPlaintext(result.Pods[index])
}

func firstPlaintext(pod Pod) (string, error) {
	if len(pod.Subpods) == 0 || pod.Subpods[0].Plaintext == "" {
		return "", ErrNoResult
	}
	return pod.Subpods[0].Plaintext, nil
}
