package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amonks/glasstodo/todo"
)

// ErrEndpointNotFound is returned when the server has no route for a request,
// usually because the client points at the wrong base URL.
var ErrEndpointNotFound = errors.New("endpoint not found")

// Client calls the REST API. Errors map back onto the todo package's
// sentinels, so errors.Is works the same as against a local Manager.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the given address or URL.
func NewClient(addr string) *Client {
	baseURL := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: 30 * time.Second}}
}

// List returns the todos matching q.
func (c *Client) List(ctx context.Context, q todo.Query) (todo.ListResult, error) {
	params := url.Values{}
	setParam(params, "search", q.Search)
	setParam(params, "filter", string(q.Status))
	setParam(params, "priority", string(q.Priority))
	setParam(params, "due", string(q.Due))
	setParam(params, "sort", string(q.Sort))

	path := "/api/todos"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	response, err := call[[]todo.Todo](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return todo.ListResult{}, err
	}
	result := todo.ListResult{Todos: response.Data, Total: len(response.Data)}
	if result.Todos == nil {
		result.Todos = []todo.Todo{}
	}
	return result, nil
}

// Get returns the todo with the given ID.
func (c *Client) Get(ctx context.Context, id string) (todo.Todo, error) {
	response, err := call[todo.Todo](ctx, c, http.MethodGet, todoPath(id), nil)
	return response.Data, err
}

// Create creates a todo.
func (c *Client) Create(ctx context.Context, in todo.CreateInput) (todo.Todo, error) {
	req := CreateRequest{
		Text:        in.Text,
		Description: in.Description,
		Priority:    string(in.Priority),
		Category:    in.Category,
		Completed:   in.Completed,
	}
	if in.DueDate != nil {
		req.DueDate = StringValue(todo.FormatDueDate(in.DueDate))
	}
	response, err := call[todo.Todo](ctx, c, http.MethodPost, "/api/todos", req)
	return response.Data, err
}

// Update changes the provided fields of a todo.
func (c *Client) Update(ctx context.Context, id string, in todo.UpdateInput) (todo.Todo, error) {
	req := UpdateRequest{
		Text:        in.Text,
		Description: in.Description,
		Category:    in.Category,
		Completed:   in.Completed,
	}
	if in.Priority != nil {
		priority := string(*in.Priority)
		req.Priority = &priority
	}
	switch {
	case in.DueDate != nil && in.ClearDueDate:
		return todo.Todo{}, fmt.Errorf("%w: cannot both set and clear the due date", todo.ErrInvalidArgument)
	case in.DueDate != nil:
		req.DueDate = StringValue(todo.FormatDueDate(in.DueDate))
	case in.ClearDueDate:
		req.DueDate = Null()
	}
	response, err := call[todo.Todo](ctx, c, http.MethodPatch, todoPath(id), req)
	return response.Data, err
}

// Toggle flips a todo's completion state.
func (c *Client) Toggle(ctx context.Context, id string) (todo.Todo, error) {
	response, err := call[todo.Todo](ctx, c, http.MethodPatch, todoPath(id)+"/toggle", nil)
	return response.Data, err
}

// Remove deletes a todo and returns it.
func (c *Client) Remove(ctx context.Context, id string) (todo.Todo, error) {
	response, err := call[todo.Todo](ctx, c, http.MethodDelete, todoPath(id), nil)
	return response.Data, err
}

// ClearCompleted deletes every completed todo.
func (c *Client) ClearCompleted(ctx context.Context) (todo.ClearResult, error) {
	response, err := call[ClearResponse](ctx, c, http.MethodDelete, "/api/todos", nil)
	if err != nil {
		return todo.ClearResult{}, err
	}
	return todo.ClearResult{
		DeletedCount: response.Data.DeletedCount,
		Remaining:    response.Data.RemainingTodos,
	}, nil
}

// Bulk applies action to the todos with the given IDs.
func (c *Client) Bulk(ctx context.Context, action todo.BulkAction, ids []string) (todo.BulkResult, error) {
	response, err := call[[]todo.Todo](ctx, c, http.MethodPost, "/api/todos/bulk", BulkRequest{Action: string(action), IDs: ids})
	if err != nil {
		return todo.BulkResult{}, err
	}
	return bulkResult(response), nil
}

// ToggleAll completes every todo, or reopens them all when all are complete.
func (c *Client) ToggleAll(ctx context.Context) (todo.BulkResult, error) {
	response, err := call[[]todo.Todo](ctx, c, http.MethodPost, "/api/todos/toggle-all", nil)
	if err != nil {
		return todo.BulkResult{}, err
	}
	return bulkResult(response), nil
}

// Move places a todo at position in storage order.
func (c *Client) Move(ctx context.Context, id string, position int) (todo.Todo, error) {
	response, err := call[todo.Todo](ctx, c, http.MethodPost, todoPath(id)+"/move", MoveRequest{Position: &position})
	return response.Data, err
}

// Stats summarizes the collection.
func (c *Client) Stats(ctx context.Context) (todo.Stats, error) {
	response, err := call[todo.Stats](ctx, c, http.MethodGet, "/api/todos/stats", nil)
	return response.Data, err
}

// Health reports whether the server is up and how many todos it holds.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var health HealthResponse
	resp, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return health, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return health, readErrorResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return health, fmt.Errorf("decode health response: %w", err)
	}
	return health, nil
}

func call[T any](ctx context.Context, c *Client, method, path string, payload any) (Envelope[T], error) {
	var envelope Envelope[T]
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return envelope, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return envelope, readErrorResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return envelope, fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return envelope, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.client.Do(req)
}

// readErrorResponse converts an error envelope into a todo error.
func readErrorResponse(resp *http.Response) error {
	var envelope Envelope[json.RawMessage]
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Message != "" {
		message = envelope.Message
		if envelope.Error != "" {
			message += ": " + envelope.Error
		}
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest && len(envelope.Errors) > 0:
		return &todo.ValidationError{Problems: envelope.Errors}
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", todo.ErrInvalidArgument, message)
	case resp.StatusCode == http.StatusNotFound && envelope.Message == todoNotFoundMessage:
		return fmt.Errorf("%w: %s", todo.ErrTodoNotFound, message)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrEndpointNotFound, message)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: server error: %s", todo.ErrStorage, message)
	default:
		return fmt.Errorf("api error: %s", message)
	}
}

func bulkResult(response Envelope[[]todo.Todo]) todo.BulkResult {
	result := todo.BulkResult{Affected: response.Data, Count: len(response.Data)}
	if response.Affected != nil {
		result.Count = *response.Affected
	}
	if result.Affected == nil {
		result.Affected = []todo.Todo{}
	}
	return result
}

func todoPath(id string) string {
	return "/api/todos/" + url.PathEscape(id)
}

func setParam(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}
