// Package client is the data layer used by seminar front ends: a typed
// HTTP client for the seminars API plus list and edit-form state that is
// reconciled with server responses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/seminarhub/core/internal/domain/entities"
)

// APIError is a non-2xx response from the seminars API
type APIError struct {
	StatusCode int
	Message    string
	Details    []entities.FieldError
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("seminars api: %d %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return fmt.Sprintf("seminars api: %d %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the seminars API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a client that sends requests through hc
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

// List fetches every seminar
func (c *Client) List(ctx context.Context) ([]entities.Seminar, error) {
	var seminars []entities.Seminar
	if err := c.do(ctx, http.MethodGet, "/seminars", nil, &seminars); err != nil {
		return nil, err
	}
	return seminars, nil
}

// Get fetches one seminar
func (c *Client) Get(ctx context.Context, id int) (*entities.Seminar, error) {
	var seminar entities.Seminar
	if err := c.do(ctx, http.MethodGet, seminarPath(id), nil, &seminar); err != nil {
		return nil, err
	}
	return &seminar, nil
}

// Create stores a new seminar and returns it with its assigned id
func (c *Client) Create(ctx context.Context, details entities.SeminarDetails) (*entities.Seminar, error) {
	var seminar entities.Seminar
	if err := c.do(ctx, http.MethodPost, "/seminars", details, &seminar); err != nil {
		return nil, err
	}
	return &seminar, nil
}

// Update replaces a seminar and returns the server's representation
func (c *Client) Update(ctx context.Context, id int, details entities.SeminarDetails) (*entities.Seminar, error) {
	var seminar entities.Seminar
	if err := c.do(ctx, http.MethodPut, seminarPath(id), details, &seminar); err != nil {
		return nil, err
	}
	return &seminar, nil
}

// Delete removes a seminar
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, seminarPath(id), nil, nil)
}

func seminarPath(id int) string {
	return "/seminars/" + strconv.Itoa(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var body struct {
		Error   string                `json:"error"`
		Details []entities.FieldError `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		}
		apiErr.Details = body.Details
	}

	return apiErr
}
