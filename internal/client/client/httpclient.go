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
	"sync"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/netx"
)

// HTTPClient implements Client over the server's JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient validates baseURL. timeout bounds every call except uploads
// and downloads, which run until their context ends.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: want http(s)://host[:port]", baseURL)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) setToken(t string) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, authed bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if authed {
		token := c.Token()
		if token == "" {
			return nil, ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return req, nil
}

// do sends req. Any answer outside 2xx is turned into an *APIError and the
// body is closed.
func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}
	return nil, apiErr
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, authed bool, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body, authed)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (c *HTTPClient) authenticate(ctx context.Context, path, username, password string) (*models.User, error) {
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, path, false, credentials{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.setToken(resp.Token)
	return &resp.User, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) (*models.User, error) {
	return c.authenticate(ctx, "/api/auth/register", username, password)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.User, error) {
	return c.authenticate(ctx, "/api/auth/login", username, password)
}

// Logout forgets the token even when the server cannot be told about it.
func (c *HTTPClient) Logout(ctx context.Context) error {
	c.setToken("")
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", false, nil, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/healthz", false, nil, nil)
}

func (c *HTTPClient) List(ctx context.Context) ([]models.Entry, error) {
	items := make([]models.Entry, 0)
	if err := c.doJSON(ctx, http.MethodGet, "/api/vault", true, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func entryPath(id string) string {
	return "/api/vault/" + url.PathEscape(id)
}

func (c *HTTPClient) Get(ctx context.Context, id string) (*models.Entry, error) {
	var e models.Entry
	if err := c.doJSON(ctx, http.MethodGet, entryPath(id), true, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

type updateRequest struct {
	Description *string `json:"description,omitempty"`
	IsPrivate   *bool   `json:"isPrivate,omitempty"`
}

func (c *HTTPClient) Update(ctx context.Context, id string, description *string, isPrivate *bool) (*models.Entry, error) {
	var e models.Entry
	if err := c.doJSON(ctx, http.MethodPatch, entryPath(id), true, updateRequest{Description: description, IsPrivate: isPrivate}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, entryPath(id), true, nil, nil)
}

// Upload streams the file at path to the server.
func (c *HTTPClient) Upload(ctx context.Context, path string, description string, isPrivate bool) (*models.Entry, error) {
	fields := map[string]string{"isPrivate": strconv.FormatBool(isPrivate)}
	if description != "" {
		fields["description"] = description
	}

	body, contentType, err := netx.MultipartFile(path, "file", fields)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/vault/upload", body, true)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var e models.Entry
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &e, nil
}

// Download copies the bytes behind storagePath to w.
func (c *HTTPClient) Download(ctx context.Context, storagePath string, w io.Writer) (int64, error) {
	if !strings.HasPrefix(storagePath, "/uploads/") {
		return 0, fmt.Errorf("unexpected storage path %q", storagePath)
	}
	name := strings.TrimPrefix(storagePath, "/uploads/")

	req, err := c.newRequest(ctx, http.MethodGet, "/uploads/"+url.PathEscape(name), nil, true)
	if err != nil {
		return 0, err
	}
	resp, err := c.do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return io.Copy(w, resp.Body)
}
