package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// maxAttempts caps rate-limit retries per request; Airtable asks clients to
// back off for ~30s after a 429 but exponential backoff clears it sooner in
// practice.
const maxAttempts = 3

// Record is a single row as the API returns it: an opaque ID plus the cell
// values keyed by column name.
type Record struct {
	ID          string         `json:"id,omitempty"`
	Fields      map[string]any `json:"fields"`
	CreatedTime time.Time      `json:"createdTime,omitempty"`
}

// Client talks to one base over the Airtable REST API.
type Client struct {
	apiKey     string
	baseID     string
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint, e.g. to point at a proxy or a
// test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(apiKey, baseID string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseID:     baseID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns every record in the table matching the filter formula,
// following pagination offsets. An empty formula returns the whole table.
func (c *Client) List(ctx context.Context, table, formula string) ([]Record, error) {
	var records []Record
	offset := ""

	for {
		q := url.Values{}
		if formula != "" {
			q.Set("filterByFormula", formula)
		}
		if offset != "" {
			q.Set("offset", offset)
		}

		reqURL := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
		if encoded := q.Encode(); encoded != "" {
			reqURL += "?" + encoded
		}

		body, err := c.do(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}

		var page struct {
			Records []Record `json:"records"`
			Offset  string   `json:"offset"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("failed to decode list response: %w", err)
		}

		records = append(records, page.Records...)
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// Create inserts one record and returns it with the assigned ID.
func (c *Client) Create(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	reqURL := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))

	payload, err := json.Marshal(Record{Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("error marshalling record: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, reqURL, payload)
	if err != nil {
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode create response: %w", err)
	}
	return &record, nil
}

// Update patches the given fields on one record, leaving the rest unchanged.
func (c *Client) Update(ctx context.Context, table, recordID string, fields map[string]any) (*Record, error) {
	reqURL := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table), recordID)

	payload, err := json.Marshal(Record{Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("error marshalling record: %w", err)
	}

	body, err := c.do(ctx, http.MethodPatch, reqURL, payload)
	if err != nil {
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode update response: %w", err)
	}
	return &record, nil
}

func (c *Client) do(ctx context.Context, method, reqURL string, payload []byte) ([]byte, error) {
	delay := c.retryDelay

	for attempt := 1; ; attempt++ {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("error creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			slog.Info(err.Error())
			return nil, &Error{Message: err.Error()}
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			slog.Info(readErr.Error())
			return nil, &Error{StatusCode: resp.StatusCode, Message: readErr.Error()}
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxAttempts {
			slog.Warn("rate limited by airtable, retrying", "attempt", attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &Error{StatusCode: resp.StatusCode, Message: ctx.Err().Error()}
			}
			delay *= 2
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := parseError(resp.StatusCode, body)
			slog.Info(apiErr.Error())
			return nil, apiErr
		}

		return body, nil
	}
}

func parseError(statusCode int, body []byte) *Error {
	var payload struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error.Message == "" {
		return &Error{StatusCode: statusCode, Message: string(body)}
	}
	return &Error{StatusCode: statusCode, Type: payload.Error.Type, Message: payload.Error.Message}
}
