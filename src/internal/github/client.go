package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ipmerge/ipmerge/src/internal/utils"
)

const (
	acceptHeader = "application/vnd.github+json"
	apiVersion   = "2022-11-28"
	userAgent    = "ipmerge"
)

// HTTPClient interface for dependency injection in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the GitHub REST API on behalf of a single token.
//
// The client is stateless apart from its configuration and is safe for
// concurrent use.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	token      string
}

// NewClientWithBaseURL creates a client for an API root such as
// https://api.github.com, a GitHub Enterprise server or a test server.
// If httpClient is nil, http.DefaultClient is used.
func NewClientWithBaseURL(baseURL, token string, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// APIError is returned for any response with an unexpected status code.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Endpoint, e.StatusCode)
}

type errorResponse struct {
	Message string `json:"message"`
}

// doJSON sends payload (if any) as JSON and decodes a successful response into T.
// Statuses outside expected produce an *APIError.
func doJSON[T any](ctx context.Context, c *Client, method, endpoint string, payload any, expected ...int) (T, int, error) {
	var result T

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return result, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return result, 0, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, 0, fmt.Errorf("failed to %s %s: %w", method, endpoint, err)
	}
	defer utils.CloseOrWarn(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if !statusIn(resp.StatusCode, expected) {
		apiErr := &APIError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode}
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil {
			apiErr.Message = errResp.Message
		}
		return result, resp.StatusCode, apiErr
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return result, resp.StatusCode, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return result, resp.StatusCode, nil
}

func statusIn(status int, expected []int) bool {
	for _, s := range expected {
		if status == s {
			return true
		}
	}
	return false
}

// contentsEndpoint builds /repos/{owner}/{repo}/contents/{path} with each path
// segment escaped.
func contentsEndpoint(owner, repo, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("/repos/%s/%s/contents/%s",
		url.PathEscape(owner), url.PathEscape(repo), strings.Join(segments, "/"))
}
