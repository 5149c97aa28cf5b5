// Package backend talks to the external lead service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/leadboard/lead-dashboard/internal/leads"
)

// Endpoint paths exposed by the lead service.
const (
	PathLeads  = "/leads/"
	PathScores = "/score-all-leads"
	PathUpload = "/upload-and-load-snowpipe/"

	// UploadField is the multipart field carrying the uploaded file.
	UploadField = "file"

	// DefaultFetchTimeout bounds a shared lead fetch once it no longer
	// follows any single caller.
	DefaultFetchTimeout = 30 * time.Second

	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
)

// ErrNoFile is returned when an upload is attempted without a file.
var ErrNoFile = errors.New("backend: file required")

// StatusError reports a non-2xx answer from the lead service.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend: %s returned status %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("backend: %s returned status %d: %s", e.Endpoint, e.Code, e.Body)
}

// UploadResult is the ingestion endpoint answer.
type UploadResult struct {
	Status   string `json:"status"`
	Filename string `json:"filename,omitempty"`
}

// Observer records the outcome of every backend call.
type Observer interface {
	ObserveBackendCall(endpoint, outcome string, elapsed time.Duration)
}

// Client wraps interactions with the lead service API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	observer     Observer
	fetchTimeout time.Duration
	fetches      singleflight.Group
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver installs a call observer, typically the metrics registry.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithFetchTimeout bounds the shared request behind FetchLeads.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// NewClient constructs a new client. Calls live as long as the caller's
// context; FetchLeads additionally bounds its shared request by the
// fetch timeout.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{},
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the root used for every call.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks if the lead service answers at all.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, "ping", http.MethodGet, c.baseURL+"/", nil, "")
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 500 {
		return statusError("ping", resp)
	}
	return nil
}

// FetchLeads reads up to limit lead records. Concurrent fetches with the
// same limit share one request, detached from any caller's cancellation
// and bounded by the fetch timeout. A caller whose context ends stops
// waiting and gets its context error; the others keep theirs.
func (c *Client) FetchLeads(ctx context.Context, limit int) (leads.Collection, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("backend: limit must be positive, got %d", limit)
	}
	key := "leads:" + strconv.Itoa(limit)
	shared := context.WithoutCancel(ctx)
	ch := c.fetches.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(shared, c.fetchTimeout)
		defer cancel()
		return c.fetchLeads(fetchCtx, limit)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		collection := res.Val.(leads.Collection)
		// callers may hold the result past this call; hand out their own
		// slice header
		return append(leads.Collection(nil), collection...), nil
	}
}

func (c *Client) fetchLeads(ctx context.Context, limit int) (leads.Collection, error) {
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, PathLeads, url.Values{"limit": {strconv.Itoa(limit)}}.Encode())
	resp, err := c.do(ctx, "leads", http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError("leads", resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backend: read leads: %w", err)
	}
	return leads.ParseCollection(body)
}

// ScoreAllLeads returns the scoring endpoint answer verbatim.
func (c *Client) ScoreAllLeads(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.do(ctx, "scores", http.MethodGet, c.baseURL+PathScores, nil, "")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError("scores", resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backend: read scores: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("backend: scores response is not JSON")
	}
	return json.RawMessage(body), nil
}

// Upload forwards a single file to the ingestion endpoint.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (UploadResult, error) {
	if content == nil || strings.TrimSpace(filename) == "" {
		return UploadResult{}, ErrNoFile
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(UploadField, filename)
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return UploadResult{}, fmt.Errorf("backend: buffer upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, err
	}

	resp, err := c.do(ctx, "upload", http.MethodPost, c.baseURL+PathUpload, body, writer.FormDataContentType())
	if err != nil {
		return UploadResult{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UploadResult{}, statusError("upload", resp)
	}
	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UploadResult{}, fmt.Errorf("backend: decode upload response: %w", err)
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, name, method, endpoint string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID(ctx))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		outcome = strconv.Itoa(resp.StatusCode)
	}
	if c.observer != nil {
		c.observer.ObserveBackendCall(name, outcome, time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("backend: %s: %w", name, err)
	}
	return resp, nil
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func statusError(name string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Endpoint: name, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
}
