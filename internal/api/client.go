package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/logger"
	"github.com/julianstephens/nutrisnap/internal/media"
)

const maxResponseBytes = 8 << 20

// Client talks to the NutriVision backend. The session cookie lives in the
// client's jar and is sent with every request.
type Client struct {
	base         *url.URL
	http         *http.Client
	newRequestID func() string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is replaced
// with a fresh cookie jar if nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRequestIDs overrides how write request ids are generated
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) { c.newRequestID = fn }
}

// New creates a client for baseURL (for example http://localhost:5001/api).
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = constants.DefaultAPIURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base:         u,
		http:         &http.Client{Timeout: constants.DefaultHTTPTimeout},
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.base.String()
}

// SessionCookie serializes the cookies held for the backend so the session
// can be remembered between runs.
func (c *Client) SessionCookie() string {
	cookies := c.http.Jar.Cookies(c.base)
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}

// RestoreSession loads cookies produced by SessionCookie
func (c *Client) RestoreSession(serialized string) error {
	if serialized == "" {
		return nil
	}
	cookies, err := http.ParseCookie(serialized)
	if err != nil {
		return fmt.Errorf("parsing stored session: %w", err)
	}
	for _, ck := range cookies {
		ck.Path = "/"
	}
	c.http.Jar.SetCookies(c.base, cookies)
	return nil
}

// ClearSession expires every cookie held for the backend
func (c *Client) ClearSession() {
	cookies := c.http.Jar.Cookies(c.base)
	for _, ck := range cookies {
		ck.Path = "/"
		ck.MaxAge = -1
	}
	c.http.Jar.SetCookies(c.base, cookies)
}

type formField struct {
	name  string
	value string
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, payload any, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, op, method, path, nil, body, contentType, out)
}

func (c *Client) sendMultipart(ctx context.Context, op, path string, fields []formField, fileField string, blob media.Blob, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(fileField), escapeQuotes(blob.Name)))
	h.Set("Content-Type", blob.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("%s: building upload: %w", op, err)
	}
	if _, err := part.Write(blob.Data); err != nil {
		return fmt.Errorf("%s: building upload: %w", op, err)
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("%s: building upload: %w", op, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: building upload: %w", op, err)
	}
	return c.do(ctx, op, http.MethodPost, path, nil, &buf, w.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return networkError(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet {
		req.Header.Set("X-Request-ID", c.newRequestID())
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		logger.Debug("API request failed", "op", op, "method", method, "path", path, "error", err)
		return networkError(op, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return networkError(op, err)
	}
	logger.Debug("API request", "op", op, "method", method, "path", path, "status", res.StatusCode, "elapsed", time.Since(start))

	return decodeResponse(op, res, data, out)
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
