// Package client provides a Go client for the celerix-build HTTP API.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/celerix-dev/celerix-build/pkg/schema"
)

const maxAttempts = 3

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Field   string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Field != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, e.Code, msg, e.Field)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, msg)
}

// Client is a remote client for a celerix-build daemon.
// Every request carries the identity headers of the configured actor.
type Client struct {
	base    string
	actor   schema.Actor
	http    *http.Client
	backoff time.Duration
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithInsecureTLS accepts the daemon's self-signed certificate.
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.http = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
}

// WithBackoff sets the base delay between attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:7080.
func New(baseURL string, actor schema.Actor, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		actor:   actor,
		http:    &http.Client{Timeout: 30 * time.Second},
		backoff: 200 * time.Millisecond,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Message    string          `json:"message"`
	Field      string          `json:"field"`
	Pagination *Pagination     `json:"pagination"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// List is one page of a list endpoint.
type List[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// do sends the request. GET and HEAD are retried on transport failures and
// 5xx answers. Other methods are retried only when the connection could not
// be dialed, so an action the server may have applied is never repeated.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
	}
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i) * c.backoff):
			}
		}

		env, retry, err := c.attempt(ctx, method, target, payload)
		if err == nil {
			return env, nil
		}
		if !retry || (!safe(method) && !unsent(err)) {
			return nil, err
		}
		lastErr = err
		c.logger.Warn("request attempt failed", "attempt", i+1, "method", method, "path", path, "error", err)
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, target string, payload []byte) (*envelope, bool, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", c.actor.ID)
	req.Header.Set("X-User-Role", string(c.actor.Role))
	if c.actor.Name != "" {
		req.Header.Set("X-User-Name", c.actor.Name)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading response: %w", err)
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, false, fmt.Errorf("decoding response: %w", err)
		}
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Code: env.Error, Message: env.Message, Field: env.Field}
		return nil, resp.StatusCode >= 500, apiErr
	}
	return &env, false, nil
}

func safe(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// unsent reports whether err happened before the request reached the server.
func unsent(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func decodeData[T any](env *envelope) (*T, error) {
	var v T
	if len(env.Data) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return nil, fmt.Errorf("decoding data: %w", err)
	}
	return &v, nil
}

func decodeList[T any](env *envelope) (*List[T], error) {
	items, err := decodeData[[]T](env)
	if err != nil {
		return nil, err
	}
	l := &List[T]{Items: *items}
	if env.Pagination != nil {
		l.Pagination = *env.Pagination
	}
	return l, nil
}

// PageQuery selects a page of a list endpoint. Zero values use server defaults.
type PageQuery struct {
	Page   int
	Limit  int
	Search string
}

func (p PageQuery) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// Ping checks that the daemon is up.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	return err
}

func (c *Client) ListProjects(ctx context.Context, status schema.ProjectStatus, page PageQuery) (*List[schema.Project], error) {
	q := page.values()
	setIf(q, "status", string(status))
	env, err := c.do(ctx, http.MethodGet, "/api/projects", q, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[schema.Project](env)
}

type MaterialQuery struct {
	ProjectID string
	PhaseID   string
	Status    schema.MaterialStatus
	Category  string
	PageQuery
}

func (c *Client) ListMaterials(ctx context.Context, mq MaterialQuery) (*List[schema.MaterialView], error) {
	q := mq.values()
	setIf(q, "projectId", mq.ProjectID)
	setIf(q, "phaseId", mq.PhaseID)
	setIf(q, "status", string(mq.Status))
	setIf(q, "category", mq.Category)
	env, err := c.do(ctx, http.MethodGet, "/api/materials", q, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[schema.MaterialView](env)
}

func (c *Client) ApproveMaterial(ctx context.Context, id, comment string) (*schema.MaterialView, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/materials/"+url.PathEscape(id)+"/approve", nil, map[string]string{"comment": comment})
	if err != nil {
		return nil, err
	}
	return decodeData[schema.MaterialView](env)
}

func (c *Client) RejectMaterial(ctx context.Context, id, reason string) (*schema.MaterialView, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/materials/"+url.PathEscape(id)+"/reject", nil, map[string]string{"reason": reason})
	if err != nil {
		return nil, err
	}
	return decodeData[schema.MaterialView](env)
}

func (c *Client) TrackPurchaseOrder(ctx context.Context, id string) (*schema.OrderTracking, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/purchase-orders/"+url.PathEscape(id)+"/tracking", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[schema.OrderTracking](env)
}

func (c *Client) Portfolio(ctx context.Context) (*schema.Portfolio, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/dashboard/portfolio", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[schema.Portfolio](env)
}
