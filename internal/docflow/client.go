// Package docflow is the HTTP client for the 1C document-flow API that
// owns tasks, work types and worktime records. The skill treats it as
// an external collaborator: thin typed calls, classified failures,
// bounded timeouts.
package docflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Failure classes the skill reacts to. Everything renders as the same
// apology to the user; the class decides what gets logged and whether
// a session re-bracket may help.
var (
	ErrUnauthenticated   = errors.New("docflow: unauthenticated")
	ErrForbidden         = errors.New("docflow: forbidden")
	ErrNotFound          = errors.New("docflow: not found")
	ErrSessionNotStarted = errors.New("docflow: session not started")
	ErrServer            = errors.New("docflow: server error")
	ErrUnknown           = errors.New("docflow: unknown error")
)

type Task struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Project  string `json:"project,omitempty"`
	Deadline string `json:"deadline,omitempty"`
}

type WorkType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Record is the single persistence write of the skill.
type Record struct {
	TaskID      string    `json:"taskId"`
	UserID      string    `json:"userId"`
	WorkTypeID  string    `json:"workTypeId"`
	DateTime    time.Time `json:"dateTime"`
	Minutes     int       `json:"countOfMinutes"`
	Description string    `json:"description"`
}

type WorkTimeEntry struct {
	TaskName    string `json:"taskName"`
	Minutes     int    `json:"countOfMinutes"`
	Description string `json:"description"`
}

type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	logger   *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("docflow base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger.With("component", "docflow"),
	}, nil
}

// WithTimeout returns a clone bound to a different per-call budget.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if c == nil || timeout < time.Second {
		return c
	}
	clone := *c
	httpClone := *c.http
	httpClone.Timeout = timeout
	clone.http = &httpClone
	return &clone
}

func (c *Client) Tasks(ctx context.Context, userID string) ([]Task, error) {
	var tasks []Task
	err := c.getJSON(ctx, "/tasks", url.Values{"userId": {userID}}, &tasks)
	return tasks, err
}

func (c *Client) TaskByName(ctx context.Context, userID, name string) (Task, error) {
	var task Task
	err := c.getJSON(ctx, "/task", url.Values{"userId": {userID}, "name": {name}}, &task)
	return task, err
}

func (c *Client) OverdueTasks(ctx context.Context, userID string) ([]Task, error) {
	var tasks []Task
	err := c.getJSON(ctx, "/tasks/overdue", url.Values{"userId": {userID}}, &tasks)
	return tasks, err
}

func (c *Client) WorkTypes(ctx context.Context) ([]WorkType, error) {
	var workTypes []WorkType
	err := c.getJSON(ctx, "/worktypes", nil, &workTypes)
	return workTypes, err
}

func (c *Client) ProjectByName(ctx context.Context, name string) (Project, error) {
	var project Project
	err := c.getJSON(ctx, "/project", url.Values{"name": {name}}, &project)
	return project, err
}

func (c *Client) WorkTimeByUser(ctx context.Context, userID string, day time.Time) ([]WorkTimeEntry, error) {
	query := url.Values{
		"userId": {userID},
		"date":   {day.Format("2006-01-02")},
	}
	var entries []WorkTimeEntry
	err := c.getJSON(ctx, "/stufftime", query, &entries)
	return entries, err
}

func (c *Client) WorkTimeByProject(ctx context.Context, projectID string) ([]WorkTimeEntry, error) {
	var entries []WorkTimeEntry
	err := c.getJSON(ctx, "/stufftime/project", url.Values{"projectId": {projectID}}, &entries)
	return entries, err
}

// AddWorkTime issues the persistence write. Callers invoke it at most
// once per confirmed dialogue.
func (c *Client) AddWorkTime(ctx context.Context, record Record) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal worktime record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stufftime", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// StartSession / FinishSession bracket grouped reads: the API keeps a
// short-lived infobase session and rejects calls outside one with
// ErrSessionNotStarted.
func (c *Client) StartSession(ctx context.Context) error {
	return c.postEmpty(ctx, "/session/start")
}

func (c *Client) FinishSession(ctx context.Context) error {
	return c.postEmpty(ctx, "/session/finish")
}

// WithSession runs fn inside a start/finish bracket. Finish is
// best-effort: the session also times out server-side.
func (c *Client) WithSession(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.StartSession(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.FinishSession(ctx); err != nil {
			c.logger.Warn("finish session failed", "error", err)
		}
	}()
	return fn(ctx)
}

func (c *Client) postEmpty(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.SetBasicAuth(c.username, c.password)
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknown, err)
	}
	defer res.Body.Close()

	if err := classify(res.StatusCode); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrUnknown, err)
	}
	return nil
}

// classify maps upstream status codes onto the failure classes. The 1C
// gateway signals a missing infobase session with the non-standard
// 419/440 statuses.
func classify(status int) error {
	switch {
	case status < http.StatusBadRequest:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == 419 || status == 440:
		return ErrSessionNotStarted
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrServer, status)
	default:
		return fmt.Errorf("%w: status %d", ErrUnknown, status)
	}
}
