// Package gateway talks to the gateway's admin API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/gateway-console/internal/logger"
	"github.com/j-veylop/gateway-console/internal/metrics"
	"github.com/j-veylop/gateway-console/internal/models"
)

const (
	statsPath    = "/admin/stats"
	projectsPath = "/admin/projects"

	// AdminKeyHeader carries the privileged credential on every request.
	AdminKeyHeader = "X-Admin-Key"
	// RequestIDHeader correlates a request with the console's log lines.
	RequestIDHeader = "X-Request-ID"

	defaultUserAgent = "gateway-console"
	defaultTimeout   = 10 * time.Second
)

// Operation names used in failures, logs and metrics.
const (
	OpFetchStats    = "fetch_stats"
	OpFetchProjects = "fetch_projects"
	OpToggleProject = "toggle_project"
	OpCreateProject = "create_project"
)

// Config is the client's immutable connection settings.
type Config struct {
	BaseURL   string
	AdminKey  string
	Timeout   time.Duration
	UserAgent string
}

// Client performs authenticated requests against the admin API. It holds no
// state besides its configuration and is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	metrics *metrics.Metrics
}

// NewClient returns a client for cfg. A nil httpClient gets one with
// cfg.Timeout; m may be nil.
func NewClient(cfg Config, httpClient *http.Client, m *metrics.Metrics) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient, metrics: m}
}

// BaseURL returns the admin API root the client points at.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// FetchStats retrieves the aggregate usage statistics.
func (c *Client) FetchStats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := c.do(ctx, OpFetchStats, http.MethodGet, statsPath, nil, &stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

// FetchProjects retrieves every project in backend order.
func (c *Client) FetchProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, OpFetchProjects, http.MethodGet, projectsPath, nil, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = make([]models.Project, 0)
	}
	return projects, nil
}

// ToggleProject asks the backend to flip a project's activation flag.
func (c *Client) ToggleProject(ctx context.Context, id string) error {
	if id == "" {
		return &Failure{Op: OpToggleProject, Kind: KindRequest, Err: fmt.Errorf("project id is empty")}
	}
	path := projectsPath + "/" + url.PathEscape(id) + "/toggle"
	return c.do(ctx, OpToggleProject, http.MethodPatch, path, nil, nil)
}

// CreateProject registers a new project.
func (c *Client) CreateProject(ctx context.Context, name, description string, allowedModels []string) error {
	if allowedModels == nil {
		allowedModels = make([]string, 0)
	}
	body := models.CreateProjectRequest{
		Name:          name,
		Description:   description,
		AllowedModels: allowedModels,
	}
	return c.do(ctx, OpCreateProject, http.MethodPost, projectsPath, body, nil)
}

// do sends one request. A nil out skips decoding of the response body.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	requestID := uuid.NewString()
	fail := func(kind FailureKind, status int, err error) error {
		f := &Failure{Op: op, Kind: kind, StatusCode: status, RequestID: requestID, Err: err}
		c.recordFailure(f)
		return f
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fail(KindRequest, 0, fmt.Errorf("failed to encode request: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fail(KindRequest, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set(AdminKeyHeader, c.cfg.AdminKey)
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(op, "error", time.Since(start))
		return fail(KindNetwork, 0, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "op", op, "error", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	c.metrics.ObserveRequest(op, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return fail(KindNetwork, resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(KindHTTP, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	logger.Debug("admin request ok",
		"op", op,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start))

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(KindDecode, resp.StatusCode, err)
	}
	return nil
}

func (c *Client) recordFailure(f *Failure) {
	logger.Warn("admin request failed",
		"op", f.Op,
		"kind", f.Kind.String(),
		"status", f.StatusCode,
		"request_id", f.RequestID,
		"error", f.Err)
	if c.metrics != nil {
		c.metrics.RequestFailures.WithLabelValues(f.Op, f.Kind.String()).Inc()
	}
}
