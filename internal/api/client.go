// Package api is the typed client for the coachboard REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/coachboard/coachboard-client/internal/models"
	"github.com/coachboard/coachboard-client/internal/querycache"
	"github.com/coachboard/coachboard-client/internal/transport"
)

// DefaultBaseURL matches the backend's default mount point
const DefaultBaseURL = "http://localhost:8000/api/v1"

// Cache resource names
const (
	resTasks     = "tasks"
	resRisks     = "risks"
	resProjects  = "projects"
	resPosts     = "posts"
	resAnalytics = "analytics"
	resAIHistory = "ai-history"
)

type Client struct {
	baseURL string
	doer    transport.Doer
	cache   *querycache.Cache
	logger  *slog.Logger

	Tasks    *Resource[models.Task, models.TaskCreate, models.TaskUpdate]
	Risks    *Resource[models.Risk, models.RiskCreate, models.RiskUpdate]
	Projects *Resource[models.Project, models.ProjectCreate, models.ProjectUpdate]
	Posts    *Resource[models.Post, models.PostCreate, models.PostUpdate]
}

type Option func(*Client)

// WithCache routes reads through c and enables invalidation on writes.
func WithCache(c *querycache.Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New builds a client. doer is normally a transport.Chain around an *http.Client.
func New(baseURL string, doer transport.Doer, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if doer == nil {
		doer = transport.NewHTTPClient(transport.DefaultTimeout)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Tasks = newResource[models.Task, models.TaskCreate, models.TaskUpdate](c, resTasks)
	c.Risks = newResource[models.Risk, models.RiskCreate, models.RiskUpdate](c, resRisks)
	c.Projects = newResource[models.Project, models.ProjectCreate, models.ProjectUpdate](c, resProjects)
	c.Posts = newResource[models.Post, models.PostCreate, models.PostUpdate](c, resPosts)
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Page is the skip/limit window accepted by list endpoints.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) values(defaultLimit int) url.Values {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	skip := p.Skip
	if skip < 0 {
		skip = 0
	}
	return url.Values{
		"skip":  {strconv.Itoa(skip)},
		"limit": {strconv.Itoa(limit)},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// send executes req and returns the body of a 2xx response. Anything else
// becomes an *APIError.
func (c *Client) send(req *http.Request) ([]byte, http.Header, error) {
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, newAPIError(resp.StatusCode, data)
	}
	return data, resp.Header, nil
}

// doJSON sends in as a JSON body (when non-nil) and decodes the reply into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	data, _, err := c.send(req)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func decode(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) invalidate(ctx context.Context, resources ...string) {
	c.cache.Invalidate(ctx, resources...)
}
