// Package remote implements the HTTP client for the remote record
// collection API. It is the collaborator performing actual network I/O; the
// mutation lifecycle only sees its function values and failure shape.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/listmirror/internal/mirror"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 64 << 10
)

// Config controls the remote client.
type Config struct {
	// BaseURL is the collection API root, e.g. "http://records:8080".
	BaseURL string
	// Timeout bounds each request. Defaults to 10s.
	Timeout time.Duration
	// HTTPClient overrides the underlying client when set.
	HTTPClient *http.Client
}

// Client calls the remote record collection over HTTP JSON.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// NewClient creates a remote collection client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("remote base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: base,
		http:    httpClient,
		tracer:  otel.Tracer("listmirror/remote"),
	}, nil
}

// ListRecords fetches the full collection. Used to bootstrap the mirror.
func (c *Client) ListRecords(ctx context.Context) ([]mirror.Record, error) {
	var records []mirror.Record
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/records", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteRecord deletes one record. The API echoes the deleted record back.
func (c *Client) DeleteRecord(ctx context.Context, id string) (mirror.Record, error) {
	var record mirror.Record
	err := c.do(ctx, http.MethodDelete, c.recordURL(id), nil, &record)
	return record, err
}

// UpdateRecord applies a partial update and returns the updated record.
func (c *Client) UpdateRecord(ctx context.Context, id string, patch mirror.RecordPatch) (mirror.Record, error) {
	var record mirror.Record
	err := c.do(ctx, http.MethodPatch, c.recordURL(id), patch, &record)
	return record, err
}

func (c *Client) recordURL(id string) string {
	return c.baseURL + "/records/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, target string, payload, out any) error {
	ctx, span := c.tracer.Start(ctx, "remote."+method,
		trace.WithAttributes(attribute.String("http.url", target)))
	defer span.End()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &APIError{Name: "NetworkError", Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &APIError{Name: "ReadError", Message: err.Error(), Status: resp.StatusCode}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		apiErr := failureFromResponse(resp.StatusCode, data)
		span.SetStatus(codes.Error, apiErr.Message)
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &APIError{Name: "DecodeError", Message: err.Error(), Status: resp.StatusCode, Body: string(data)}
		}
	}
	return nil
}

// failureFromResponse builds the structured failure from a non-2xx response.
// The API reports {"name": ..., "message": ...} bodies; anything else falls
// back to the HTTP status text.
func failureFromResponse(status int, body []byte) *APIError {
	apiErr := &APIError{
		Name:    http.StatusText(status),
		Message: http.StatusText(status),
		Status:  status,
		Body:    string(body),
	}
	var reported struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &reported); err == nil {
		if reported.Name != "" {
			apiErr.Name = reported.Name
		}
		if reported.Message != "" {
			apiErr.Message = reported.Message
		}
	}
	return apiErr
}
