package adminview

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"enrollgate/internal/core/gate"
	perr "enrollgate/internal/platform/errors"
	"enrollgate/internal/platform/logger"
	"enrollgate/internal/services/api/access/domain"
)

const (
	defaultTimeout = 10 * time.Second
	defaultUA      = "enrollgate-admin"
)

// ClientOptions configures the HTTP source
type ClientOptions struct {
	BaseURL   string // e.g. http://localhost:4000/api/v1
	Token     string // admin bearer token
	UserAgent string
	Timeout   time.Duration
}

// Client is a Source over the access admin API
// Every call is sent once; the view's confirm re-fetch is the only re-sync
type Client struct {
	http *http.Client
	opts ClientOptions
	log  logger.Logger
}

var _ Source = (*Client)(nil)

// NewClient creates a Client with defaults filled in
func NewClient(o ClientOptions) *Client {
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("adminview.client"),
	}
}

// ListPending fetches the admin listing, optionally for one kind
func (c *Client) ListPending(ctx context.Context, kind gate.ContentKind) (domain.Listing, error) {
	path := "/access/admin/requests"
	if kind != "" {
		path += "?kind=" + url.QueryEscape(string(kind))
	}
	var out domain.Listing
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Approve posts an approval
func (c *Client) Approve(ctx context.Context, id string) (domain.Resolution, error) {
	var out domain.Resolution
	err := c.do(ctx, http.MethodPost, "/access/admin/requests/"+url.PathEscape(id)+"/approve", nil, &out)
	return out, err
}

// Deny posts a denial; an empty reason sends no body
func (c *Client) Deny(ctx context.Context, id string, in domain.DenyInput) (domain.Resolution, error) {
	var body any
	if in.Reason != "" {
		body = in
	}
	var out domain.Resolution
	err := c.do(ctx, http.MethodPost, "/access/admin/requests/"+url.PathEscape(id)+"/deny", body, &out)
	return out, err
}

// DeleteOrphaned discards an orphaned request
func (c *Client) DeleteOrphaned(ctx context.Context, id string) (domain.Resolution, error) {
	var out domain.Resolution
	err := c.do(ctx, http.MethodDelete, "/access/admin/requests/"+url.PathEscape(id), nil, &out)
	return out, err
}

// do sends one request and decodes the envelope's data into out
// Error envelopes come back as *perr.Error with the server's code, message and field
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeJSON, "encode %s body", path)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, rd)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "build request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("admin api")

	var env struct {
		Code  perr.ErrorCode  `json:"code"`
		Error string          `json:"error"`
		Field string          `json:"field"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&env); err != nil {
		if resp.StatusCode >= 500 {
			return perr.Newf(perr.ErrorCodeUnavailable, "%s %s: %s", method, path, resp.Status)
		}
		return perr.Wrapf(err, perr.ErrorCodeJSON, "decode %s response", path)
	}

	if resp.StatusCode >= 400 {
		code := env.Code
		if code == perr.ErrorCodeUnknown && resp.StatusCode >= 500 {
			code = perr.ErrorCodeUnavailable
		}
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return perr.WithField(perr.New(code, msg), env.Field)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "decode %s data", path)
	}
	return nil
}
