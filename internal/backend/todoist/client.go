// Package todoist implements service.Gateway over the Todoist REST API v1.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"todoistmcp/internal/metrics"
	"todoistmcp/internal/service"
)

const (
	// DefaultBaseURL is the provider's REST API root.
	DefaultBaseURL = "https://api.todoist.com/api/v1"

	// APITimeout is the default timeout for a single provider call.
	APITimeout = 30 * time.Second

	// PageSize is the page size requested from cursor-paginated list endpoints.
	PageSize = 200

	// maxPages bounds cursor following on a single list call.
	maxPages = 100
)

// Options tune a Client. Zero values select the defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Metrics *metrics.Metrics
}

// Client implements service.Gateway.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	metrics *metrics.Metrics
}

var _ service.Gateway = (*Client)(nil)

// New creates a client that authenticates every request with token.
func New(token string, opts Options) *Client {
	transport := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   otelhttp.NewTransport(http.DefaultTransport),
	}
	return NewWithHTTPClient(&http.Client{Transport: transport}, opts)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(httpClient *http.Client, opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &Client{
		http:    httpClient,
		baseURL: base,
		timeout: timeout,
		metrics: opts.Metrics,
	}
}

// ListProjects returns every project, following cursors.
func (c *Client) ListProjects(ctx context.Context) ([]service.Project, error) {
	items, err := c.list(ctx, "projects", "/projects", nil)
	if err != nil {
		return nil, err
	}
	return decodeRecords[service.Project](items), nil
}

// GetProject returns one project.
func (c *Client) GetProject(ctx context.Context, id string) (service.Project, error) {
	var p service.Project
	err := c.one(ctx, "projects.get", http.MethodGet, "/projects/"+url.PathEscape(id), nil, &p)
	return p, err
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, params service.CreateProjectParams) (service.Project, error) {
	var p service.Project
	err := c.one(ctx, "projects.create", http.MethodPost, "/projects", params.Fields(), &p)
	return p, err
}

// UpdateProject sends the patch fields and returns the updated project.
func (c *Client) UpdateProject(ctx context.Context, id string, patch service.ProjectPatch) (service.Project, error) {
	var p service.Project
	err := c.one(ctx, "projects.update", http.MethodPost, "/projects/"+url.PathEscape(id), patch.Fields(), &p)
	return p, err
}

// DeleteProject deletes a project and its tasks.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, err := c.do(ctx, "projects.delete", http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil)
	return err
}

// ListTasks returns open tasks matching filter, following cursors.
func (c *Client) ListTasks(ctx context.Context, filter service.TaskFilter) ([]service.Task, error) {
	var (
		items []json.RawMessage
		err   error
	)
	switch {
	case filter.Query != "":
		items, err = c.list(ctx, "tasks.filter", "/tasks/filter", url.Values{"query": {filter.Query}})
	case filter.ProjectID != "":
		items, err = c.list(ctx, "tasks", "/tasks", url.Values{"project_id": {filter.ProjectID}})
	default:
		items, err = c.list(ctx, "tasks", "/tasks", nil)
	}
	if err != nil {
		return nil, err
	}
	return decodeRecords[service.Task](items), nil
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id string) (service.Task, error) {
	var t service.Task
	err := c.one(ctx, "tasks.get", http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &t)
	return t, err
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, params service.CreateTaskParams) (service.Task, error) {
	var t service.Task
	err := c.one(ctx, "tasks.create", http.MethodPost, "/tasks", params.Fields(), &t)
	return t, err
}

// UpdateTask sends the patch fields and returns the updated task.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	var t service.Task
	err := c.one(ctx, "tasks.update", http.MethodPost, "/tasks/"+url.PathEscape(id), patch.Fields(), &t)
	return t, err
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, "tasks.delete", http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
	return err
}

// CloseTask completes a task.
func (c *Client) CloseTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, "tasks.close", http.MethodPost, "/tasks/"+url.PathEscape(id)+"/close", nil, nil)
	return err
}

// ReopenTask reopens a completed task.
func (c *Client) ReopenTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, "tasks.reopen", http.MethodPost, "/tasks/"+url.PathEscape(id)+"/reopen", nil, nil)
	return err
}

// MoveTask moves a task to every destination set in dest.
// When the provider answers without a body the returned task carries only its id.
func (c *Client) MoveTask(ctx context.Context, id string, dest service.MoveParams) (service.Task, error) {
	data, err := c.do(ctx, "tasks.move", http.MethodPost, "/tasks/"+url.PathEscape(id)+"/move", nil, dest.Fields())
	if err != nil {
		return service.Task{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return service.Task{ID: id}, nil
	}
	var t service.Task
	if err := decodeOne(data, &t); err != nil {
		return service.Task{}, errors.Wrap(err, "tasks.move: decode response")
	}
	return t, nil
}

// GetCompletedTasks queries the completion history once. Limit and paging
// follow the provider's own semantics.
func (c *Client) GetCompletedTasks(ctx context.Context, query service.CompletedQuery) ([]service.CompletedTask, error) {
	q := url.Values{}
	if query.Since != "" {
		q.Set("since", query.Since)
	}
	if query.Until != "" {
		q.Set("until", query.Until)
	}
	if query.ProjectID != "" {
		q.Set("project_id", query.ProjectID)
	}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}
	data, err := c.do(ctx, "tasks.completed", http.MethodGet, "/tasks/completed/by_completion_date", q, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecords[service.CompletedTask](decodeList(data).items), nil
}

// list fetches every page of a cursor-paginated endpoint. A listing that
// does not reach its last page is an error, never a partial result.
func (c *Client) list(ctx context.Context, op, path string, query url.Values) ([]json.RawMessage, error) {
	var all []json.RawMessage
	cursor := ""
	done := false
	for i := 0; i < maxPages && !done; i++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("limit", strconv.Itoa(PageSize))
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		data, err := c.do(ctx, op, http.MethodGet, path, q, nil)
		if err != nil {
			return nil, err
		}
		p := decodeList(data)
		all = append(all, p.items...)
		switch {
		case p.cursor == "":
			done = true
		case p.cursor == cursor:
			return nil, errors.Newf("%s: provider repeated cursor %q", op, cursor)
		default:
			cursor = p.cursor
		}
	}
	if !done {
		return nil, errors.Newf("%s: pagination did not terminate after %d pages", op, maxPages)
	}
	if all == nil {
		all = []json.RawMessage{}
	}
	return all, nil
}

// one performs a request whose response is a single record.
func (c *Client) one(ctx context.Context, op, method, path string, body map[string]any, out any) error {
	data, err := c.do(ctx, op, method, path, nil, body)
	if err != nil {
		return err
	}
	if err := decodeOne(data, out); err != nil {
		return errors.Wrapf(err, "%s: decode response", op)
	}
	return nil
}

// do sends one request and returns the response body.
// Every call gets its own timeout.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body map[string]any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(snakeKeys(body))
		if err != nil {
			return nil, errors.Wrapf(err, "%s: encode request", op)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: build request", op)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.GatewayRequest(method, op, 0)
		return nil, wrapError(op, err)
	}
	defer resp.Body.Close()
	c.metrics.GatewayRequest(method, op, resp.StatusCode)

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, wrapError(op, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(op, err)
	}
	return data, nil
}

// wrapError marks provider errors with the service sentinels while keeping
// the *googleapi.Error (status and body) reachable for logging.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(err, "%s: request timed out", op)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.Wrapf(errors.Mark(err, service.ErrUnauthorized), "%s", op)
		case http.StatusNotFound:
			return errors.Wrapf(errors.Mark(err, service.ErrNotFound), "%s", op)
		}
	}

	return errors.Wrapf(err, "%s", op)
}
