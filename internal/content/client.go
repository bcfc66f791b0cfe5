// Package content provides a read-only client for the remote content store.
//
// The store exposes a string-query endpoint: a query template plus optional
// named parameters go in, JSON-shaped documents come out. The client is
// constructed once at startup and injected into the query layer; there is no
// package-level instance.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DukeRupert/youkai/internal/metrics"
)

const (
	// DefaultAPIVersion is the query API version used when none is configured.
	DefaultAPIVersion = "2023-05-03"

	// DefaultPerspective returns only published documents.
	DefaultPerspective = "published"

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 * 1024
)

// Config holds the connection settings for the content store.
type Config struct {
	ProjectID   string        // Project identifier
	Dataset     string        // Dataset name (e.g., "production")
	APIVersion  string        // Dated API version (e.g., "2023-05-03")
	UseCDN      bool          // Query the cached CDN edge instead of the live API
	Token       string        // Optional read token
	Perspective string        // Document perspective (default "published")
	Timeout     time.Duration // Per-request timeout; zero means none

	// BaseURL overrides the computed API host. Used by tests.
	BaseURL string
}

// Querier executes queries against the content store.
type Querier interface {
	// Fetch runs query with params and decodes the result into out.
	// kind labels the query for metrics (e.g., "first_page").
	Fetch(ctx context.Context, kind, query string, params map[string]any, out any) error
}

// Client is a read-only content store client.
type Client struct {
	config  Config
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// APIError is returned when the content store answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content store returned %d: %s", e.StatusCode, e.Message)
}

// NewClient creates a content store client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.ProjectID == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("content project ID is required")
	}
	if cfg.Dataset == "" {
		return nil, fmt.Errorf("content dataset is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Perspective == "" {
		cfg.Perspective = DefaultPerspective
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		host := "api"
		if cfg.UseCDN {
			host = "apicdn"
		}
		baseURL = fmt.Sprintf("https://%s.%s.sanity.io", cfg.ProjectID, host)
	}

	logger.Debug("content client configured",
		"project_id", cfg.ProjectID,
		"dataset", cfg.Dataset,
		"api_version", cfg.APIVersion,
		"use_cdn", cfg.UseCDN,
	)

	return &Client{
		config:  cfg,
		baseURL: baseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}, nil
}

// queryResponse is the envelope returned by the query endpoint.
type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Ms     int             `json:"ms"`
}

// errorResponse covers both error shapes the endpoint uses.
type errorResponse struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// Fetch runs query with params and decodes the "result" field into out.
// A null result leaves out untouched.
func (c *Client) Fetch(ctx context.Context, kind, query string, params map[string]any, out any) error {
	start := time.Now()
	err := c.fetch(ctx, query, params, out)
	if err != nil {
		metrics.ContentQueryFailed(kind, time.Since(start))
		c.logger.Debug("content query failed", "kind", kind, "error", err)
		return err
	}
	metrics.ContentQueryCompleted(kind, time.Since(start))
	return nil
}

func (c *Client) fetch(ctx context.Context, query string, params map[string]any, out any) error {
	endpoint, err := c.queryURL(query, params)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp)
	}

	var envelope queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if len(envelope.Result) == 0 || string(envelope.Result) == "null" || out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// queryURL builds the GET URL for a query. Parameters are JSON-encoded and
// passed as "$name" query values so user input never becomes query text.
func (c *Client) queryURL(query string, params map[string]any) (string, error) {
	values := url.Values{}
	values.Set("query", query)
	values.Set("perspective", c.config.Perspective)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("encode param %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}

	return fmt.Sprintf("%s/v%s/data/query/%s?%s",
		c.baseURL,
		strings.TrimPrefix(c.config.APIVersion, "v"),
		url.PathEscape(c.config.Dataset),
		values.Encode(),
	), nil
}

func parseAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := http.StatusText(resp.StatusCode)
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			message = parsed.Message
		case len(parsed.Error) > 0:
			var detail struct {
				Description string `json:"description"`
			}
			var text string
			if json.Unmarshal(parsed.Error, &detail) == nil && detail.Description != "" {
				message = detail.Description
			} else if json.Unmarshal(parsed.Error, &text) == nil && text != "" {
				message = text
			}
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// Ping runs a trivial query to verify the store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var result json.RawMessage
	if err := c.Fetch(ctx, "ping", `count(*[_type == $type][0...1])`, map[string]any{"type": "sketch"}, &result); err != nil {
		return fmt.Errorf("content store unreachable: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the content store.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
