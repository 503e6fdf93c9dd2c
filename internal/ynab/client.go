// Package ynab implements the authenticated client for the YNAB v1 REST
// API. Every store in the application talks to the API through this
// package; nothing else issues HTTP requests.
package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/doctor-kat/ynab-assist/internal/apperr"
	"github.com/doctor-kat/ynab-assist/internal/logging"
)

// Client is an authenticated YNAB API client with bounded retry on rate
// limits and server errors.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        logging.Logger
	maxRetries uint64
}

// Options configure a Client beyond its required fields.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// New creates a Client for the given base URL and bearer token.
func New(baseURL, token string, log logging.Logger, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		log:        log,
		maxRetries: uint64(retries),
	}
}

// errorEnvelope is YNAB's error body: {"error":{id,name,detail}}.
type errorEnvelope struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}

// Request performs one API call and returns the raw "data" payload.
// Rate-limited (429) and server-error (5xx) responses are retried with
// exponential backoff up to the configured attempt count; other failures
// are returned immediately as *apperr.APIError.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body for %s %s: %w", method, path, err)
		}
	}

	var data json.RawMessage
	operation := func() error {
		var err error
		data, err = c.do(ctx, method, path, payload)
		if err == nil {
			return nil
		}
		if apiErr, ok := err.(*apperr.APIError); ok && !apiErr.Retryable() {
			return backoff.Permanent(err)
		}
		c.log.WithError(err).Warn("ynab request failed, will retry",
			logging.F("method", method), logging.F("path", path))
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (json.RawMessage, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response for %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &apperr.APIError{Status: resp.StatusCode, RawBody: string(raw)}
		var envelope errorEnvelope
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.ID = envelope.Error.ID
			apiErr.Name = envelope.Error.Name
			apiErr.Detail = envelope.Error.Detail
		}
		return nil, apiErr
	}

	var success struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &success); err != nil {
		return nil, fmt.Errorf("decoding response for %s %s: %w", method, path, err)
	}
	return success.Data, nil
}
