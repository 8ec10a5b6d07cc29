// Package client talks to the MediMate inventory REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/model"
)

// DefaultBaseURL is where a locally started server listens.
const DefaultBaseURL = "http://localhost:8080/api"

// ErrEmptyResponse is returned when a 2xx response that should carry JSON has no body.
var ErrEmptyResponse = errors.New("empty response")

// maxErrorBody caps how much of an error response is kept for messaging.
const maxErrorBody = 4 << 10

// FetchError reports a failed request: either a transport error (Err set) or
// a non-2xx response (StatusCode and Message set from the plain-text body).
type FetchError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// Unwrap exposes errs.ErrFetchFailed, errs.ErrNotFound for 404 and the transport cause.
func (e *FetchError) Unwrap() []error {
	out := []error{errs.ErrFetchFailed}
	if e.StatusCode == http.StatusNotFound {
		out = append(out, errs.ErrNotFound)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Client is a thin JSON client for /medicines endpoints.
type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// New constructs a client for baseURL (for example http://localhost:8080/api).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// List returns every medicine of userID.
func (c *Client) List(ctx context.Context, userID int64) ([]model.Medicine, error) {
	return c.list(ctx, "list medicines", "/medicines", ownerQuery(userID))
}

// Expired returns the server-filtered expired medicines of userID.
func (c *Client) Expired(ctx context.Context, userID int64) ([]model.Medicine, error) {
	return c.list(ctx, "load expired medicines", "/medicines/expired", ownerQuery(userID))
}

// ExpiringSoon returns the server-filtered expiring-soon medicines of userID.
func (c *Client) ExpiringSoon(ctx context.Context, userID int64) ([]model.Medicine, error) {
	return c.list(ctx, "load expiring medicines", "/medicines/expiring-soon", ownerQuery(userID))
}

// LowStock returns the medicines of userID with quantity under threshold.
func (c *Client) LowStock(ctx context.Context, userID int64, threshold int) ([]model.Medicine, error) {
	q := ownerQuery(userID)
	q.Set("threshold", strconv.Itoa(threshold))
	return c.list(ctx, "load low stock medicines", "/medicines/low-stock", q)
}

// Search returns the medicines of userID whose name contains term.
func (c *Client) Search(ctx context.Context, userID int64, term string) ([]model.Medicine, error) {
	q := ownerQuery(userID)
	q.Set("name", term)
	return c.list(ctx, "search medicines", "/medicines/search", q)
}

// Get returns a single medicine.
func (c *Client) Get(ctx context.Context, id int64) (model.Medicine, error) {
	var m model.Medicine
	err := c.do(ctx, "get medicine", http.MethodGet, medicinePath(id), nil, nil, &m)
	return m, err
}

// Create submits a new medicine and returns the stored record.
func (c *Client) Create(ctx context.Context, in model.MedicineInput) (model.Medicine, error) {
	var m model.Medicine
	err := c.do(ctx, "add medicine", http.MethodPost, "/medicines", nil, in, &m)
	return m, err
}

// Update replaces name, quantity and expiry of medicine id.
func (c *Client) Update(ctx context.Context, id int64, in model.MedicineInput) (model.Medicine, error) {
	var m model.Medicine
	err := c.do(ctx, "update medicine", http.MethodPut, medicinePath(id), nil, in, &m)
	return m, err
}

// Delete removes medicine id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete medicine", http.MethodDelete, medicinePath(id), nil, nil, nil)
}

func ownerQuery(userID int64) url.Values {
	return url.Values{"userId": []string{strconv.FormatInt(userID, 10)}}
}

func medicinePath(id int64) string { return "/medicines/" + strconv.FormatInt(id, 10) }

func (c *Client) list(ctx context.Context, op, path string, q url.Values) ([]model.Medicine, error) {
	var out []model.Medicine
	if err := c.do(ctx, op, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Medicine{}
	}
	c.log.Debug("loaded", zap.String("op", op), zap.Int("count", len(out)))
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, in, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = q.Encode()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("op", op), zap.Error(err))
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("url", u.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &FetchError{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &FetchError{Op: op, StatusCode: resp.StatusCode, Err: ErrEmptyResponse}
		}
		return &FetchError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
