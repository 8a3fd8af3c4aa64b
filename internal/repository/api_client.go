package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"reconciliation-portal/internal/logging"
	"reconciliation-portal/internal/models"
)

// Backend paths, relative to the configured base URL.
const (
	PathHealth          = "/api/health"
	PathUploadEndpoints = "/api/reconciliation/upload"
	PathTasks           = "/api/reconciliation"
	PathSummaryList     = "/api/reconciliation/summary/list"
	pathSummaryPrefix   = "/api/reconciliation/summary/"
)

// maxErrorBody caps how much of a failed response is kept as diagnostics.
const maxErrorBody = 64 << 10

// StatusError is a non-2xx answer from the backend or an upload target.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! Status: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error! Status: %d - %s", e.StatusCode, e.Body)
}

// ErrMalformedResponse marks a 2xx response whose body is not the expected shape.
var ErrMalformedResponse = errors.New("malformed response")

// APIClient is the HTTP transport every repository shares.
type APIClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAPIClient builds a client for baseURL. A nil httpClient gets one with timeout.
func NewAPIClient(baseURL string, httpClient *http.Client, timeout time.Duration, logger *slog.Logger) (*APIClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &APIClient{baseURL: u, httpClient: httpClient, logger: logger}, nil
}

// BaseURL returns the backend root the client talks to.
func (c *APIClient) BaseURL() string {
	return c.baseURL.String()
}

// Resolve turns a backend-issued URL into an absolute one. Relative
// references resolve against the base URL.
func (c *APIClient) Resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, errors.Wrapf(err, "parse url %q", ref)
	}
	return c.baseURL.ResolveReference(u), nil
}

// endpoint joins path onto the base URL. path is already escaped.
func (c *APIClient) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.RawQuery, u.Fragment = "", ""
	s := strings.TrimRight(u.String(), "/") + path
	if len(query) > 0 {
		s += "?" + query.Encode()
	}
	return s
}

// do sends req with a request id and turns non-2xx answers into *StatusError.
// On success the caller owns the response body.
func (c *APIClient) do(req *http.Request) (*http.Response, error) {
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	log := c.logger.With("request_id", reqID, "method", req.Method, "url", req.URL.Redacted())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err)
		return nil, err
	}
	log.Debug("response", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp.Body, out)
}

func (c *APIClient) postJSON(ctx context.Context, path string, in any) ([]byte, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// Health pings the backend health check.
func (c *APIClient) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, PathHealth, nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return errors.Wrapf(ErrMalformedResponse, "health status %q", out.Status)
	}
	return nil
}

func decodeJSON(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "decode body: %v", err)
	}
	return nil
}

// envelope mirrors models.Page with pointers so missing fields are detectable.
type envelope[T any] struct {
	Data       *[]T `json:"data"`
	TotalCount *int `json:"totalCount"`
}

func getPage[T any](ctx context.Context, c *APIClient, path string, limit, offset int) (models.Page[T], error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprint(limit))
	query.Set("offset", fmt.Sprint(offset))

	var env envelope[T]
	if err := c.getJSON(ctx, path, query, &env); err != nil {
		return models.Page[T]{}, err
	}
	switch {
	case env.Data == nil:
		return models.Page[T]{}, errors.Wrap(ErrMalformedResponse, "list response has no data")
	case env.TotalCount == nil:
		return models.Page[T]{}, errors.Wrap(ErrMalformedResponse, "list response has no totalCount")
	case *env.TotalCount < 0:
		return models.Page[T]{}, errors.Wrapf(ErrMalformedResponse, "negative totalCount %d", *env.TotalCount)
	}
	return models.Page[T]{Data: *env.Data, TotalCount: *env.TotalCount}, nil
}
