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

	"tableflip.dev/agenda/pkg/entity"
)

// Client is the HTTP implementation of Remote.
type Client struct {
	base      *url.URL
	token     string
	userAgent string
	http      *http.Client
}

var _ Remote = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sends a bearer token on every request.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient targets the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("api: base url is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url: %w", err)
	}
	c := &Client{
		base:      u,
		userAgent: "agenda",
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type target struct {
	resource string
	id       entity.ID
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Code    string `json:"code"`
}

func (b errorBody) text() string {
	for _, s := range []string{b.Message, b.Detail, b.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) do(ctx context.Context, method, path string, tgt target, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		switch {
		case resp.StatusCode == http.StatusNotFound && tgt.resource != "":
			return &NotFoundError{Resource: tgt.resource, ID: tgt.id}
		case resp.StatusCode == http.StatusPaymentRequired,
			resp.StatusCode == http.StatusTooManyRequests && strings.HasPrefix(path, "/ai/"),
			strings.Contains(eb.Code, "usage_limit"):
			return &UsageLimitError{Message: eb.text()}
		}
		return &TransportError{Op: op, Status: resp.StatusCode, Message: eb.text()}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) ListTasks(ctx context.Context) ([]entity.Task, error) {
	var out []entity.Task
	err := c.do(ctx, http.MethodGet, "/tasks", target{}, nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, draft entity.TaskDraft) (entity.Task, error) {
	var out entity.Task
	err := c.do(ctx, http.MethodPost, "/tasks", target{}, draft, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id entity.ID, patch entity.TaskPatch) (entity.Task, error) {
	var out entity.Task
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%d", id), target{"task", id}, patch, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id entity.ID) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), target{"task", id}, nil, nil)
}

func (c *Client) TasksWithSubtasks(ctx context.Context) ([]entity.ID, error) {
	var out []entity.ID
	err := c.do(ctx, http.MethodGet, "/tasks/subtasks", target{}, nil, &out)
	return out, err
}

func (c *Client) ListSubtasks(ctx context.Context, taskID entity.ID) ([]entity.Subtask, error) {
	var out []entity.Subtask
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d/subtasks", taskID), target{"task", taskID}, nil, &out)
	return out, err
}

func (c *Client) ReplaceSubtasks(ctx context.Context, taskID entity.ID, drafts []entity.SubtaskDraft) ([]entity.Subtask, error) {
	var out []entity.Subtask
	body := struct {
		Subtasks []entity.SubtaskDraft `json:"subtasks"`
	}{Subtasks: drafts}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/tasks/%d/subtasks", taskID), target{"task", taskID}, body, &out)
	return out, err
}

func (c *Client) UpdateSubtask(ctx context.Context, taskID, subtaskID entity.ID, patch entity.SubtaskPatch) (entity.Subtask, error) {
	var out entity.Subtask
	path := fmt.Sprintf("/tasks/%d/subtasks/%d", taskID, subtaskID)
	err := c.do(ctx, http.MethodPatch, path, target{"subtask", subtaskID}, patch, &out)
	return out, err
}

func (c *Client) GenerateSubtasks(ctx context.Context, req GenerateRequest) ([]string, error) {
	var out struct {
		Subtasks []string `json:"subtasks"`
	}
	if err := c.do(ctx, http.MethodPost, "/ai/subtasks", target{}, req, &out); err != nil {
		return nil, err
	}
	return out.Subtasks, nil
}

func (c *Client) ListAppointments(ctx context.Context) ([]entity.Appointment, error) {
	var out []entity.Appointment
	err := c.do(ctx, http.MethodGet, "/appointments", target{}, nil, &out)
	return out, err
}

func (c *Client) CreateAppointment(ctx context.Context, draft entity.AppointmentDraft) (entity.Appointment, error) {
	var out entity.Appointment
	err := c.do(ctx, http.MethodPost, "/appointments", target{}, draft, &out)
	return out, err
}

func (c *Client) UpdateAppointment(ctx context.Context, id entity.ID, patch entity.AppointmentPatch) (entity.Appointment, error) {
	var out entity.Appointment
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/appointments/%d", id), target{"appointment", id}, patch, &out)
	return out, err
}

func (c *Client) DeleteAppointment(ctx context.Context, id entity.ID) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/appointments/%d", id), target{"appointment", id}, nil, nil)
}

func (c *Client) ListMeetings(ctx context.Context) ([]entity.Meeting, error) {
	var out []entity.Meeting
	err := c.do(ctx, http.MethodGet, "/meetings", target{}, nil, &out)
	return out, err
}

func (c *Client) GetSettings(ctx context.Context) (entity.UserSettings, error) {
	var out entity.UserSettings
	err := c.do(ctx, http.MethodGet, "/user-settings", target{}, nil, &out)
	return out, err
}

func (c *Client) UpdateSettings(ctx context.Context, patch entity.SettingsPatch) (entity.UserSettings, error) {
	var out entity.UserSettings
	err := c.do(ctx, http.MethodPatch, "/user-settings", target{}, patch, &out)
	return out, err
}
