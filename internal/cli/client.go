package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API
type APIError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error lists the field messages after the summary, in field order
func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", e.Message, e.Code)

	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", f, e.Fields[f])
	}
	return b.String()
}

// Do performs an HTTP request
func (c *Client) Do(method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			errResp.Error.Status = resp.StatusCode
			return &errResp.Error
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request
func (c *Client) Get(path string, result any) error {
	return c.Do(http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(path string, body, result any) error {
	return c.Do(http.MethodPost, path, body, result)
}

// Typed API calls

func (c *Client) Health() (HealthResult, error) {
	var result HealthResult
	err := c.Get("/api/v1/health", &result)
	return result, err
}

func (c *Client) Validate(kind, value string) (ValidationResult, error) {
	var result ValidationResult
	err := c.Post("/api/v1/validate", map[string]string{"kind": kind, "value": value}, &result)
	return result, err
}

func (c *Client) ListRegistrants() (RegistrantList, error) {
	var result RegistrantList
	err := c.Get("/api/v1/registrants", &result)
	return result, err
}

func (c *Client) GetRegistrant(email string) (Registrant, error) {
	var result Registrant
	err := c.Get("/api/v1/registrants/"+url.PathEscape(email), &result)
	return result, err
}

func (c *Client) Register(in RegistrationFields) (Registrant, error) {
	var result Registrant
	err := c.Post("/api/v1/registrants", in, &result)
	return result, err
}

func (c *Client) StartSession() (Session, error) {
	var result Session
	err := c.Post("/api/v1/sessions", nil, &result)
	return result, err
}

func (c *Client) GetSession(id string) (Session, error) {
	var result Session
	err := c.Get(sessionPath(id, ""), &result)
	return result, err
}

func (c *Client) SubmitIdentity(id string, in IdentityFields) (Session, error) {
	var result Session
	err := c.Post(sessionPath(id, "/identity"), in, &result)
	return result, err
}

func (c *Client) GoBack(id string) (Session, error) {
	var result Session
	err := c.Post(sessionPath(id, "/back"), nil, &result)
	return result, err
}

func (c *Client) SubmitCredentials(id string, in CredentialsFields) (Completed, error) {
	var result Completed
	err := c.Post(sessionPath(id, "/credentials"), in, &result)
	return result, err
}

func sessionPath(id, suffix string) string {
	return "/api/v1/sessions/" + url.PathEscape(id) + suffix
}
