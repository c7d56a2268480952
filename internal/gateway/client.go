// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package gateway is the thin HTTP boundary to the campus map backend.
// It carries no policy: it fetches, decodes and classifies failures,
// nothing else.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nexus/campusmap/internal/model"
)

// Request configuration constants.
const (
	RequestTimeout = 30 * time.Second // HTTP request timeout
	MaxResponseLen = 1 << 20          // Maximum error body to read (1MB)
	UserAgent      = "campusmap/1.0"  // User-Agent header value
)

// Client talks to the backend REST API. All methods take a context and
// pass through the shared rate limiter before hitting the network.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// Options configures a Client.
type Options struct {
	BaseURL string

	// RequestRate and RequestBurst configure the client-side limiter
	// protecting the shared backend from poller storms. Zero disables
	// limiting.
	RequestRate  float64
	RequestBurst int

	// HTTPClient overrides the default client, used in tests.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if opts.RequestRate > 0 {
		burst := opts.RequestBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestRate), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// SetToken stores the bearer token attached to authenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken discards the stored token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// loginResponse is the backend's login payload.
type loginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login authenticates and returns the session user with their bearer
// token. The token is also stored on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	c.SetToken(resp.Token)
	return &resp.User, resp.Token, nil
}

// ListEvents fetches the full event collection.
func (c *Client) ListEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.doJSON(ctx, http.MethodGet, "/events", nil, &events); err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// Upload is an image attached to an event submission.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EventDraft is the payload for creating or updating an event.
type EventDraft struct {
	Title       string
	Description string
	Lat         float64
	Lon         float64
	StartsAt    *time.Time
	EndsAt      *time.Time
	Image       *Upload
}

// CreateEventResult reports what the server made of a submission,
// including the resulting approval state.
type CreateEventResult struct {
	EventID        int64                `json:"eventId"`
	ImageURL       string               `json:"imageUrl"`
	ApprovalStatus model.ApprovalStatus `json:"approvalStatus"`
}

// CreateEvent submits a new event as multipart form data.
func (c *Client) CreateEvent(ctx context.Context, draft EventDraft) (*CreateEventResult, error) {
	body, contentType, err := encodeEventForm(draft)
	if err != nil {
		return nil, fmt.Errorf("encoding event form: %w", err)
	}
	var result CreateEventResult
	if err := c.do(ctx, http.MethodPost, "/events", contentType, body, &result); err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	return &result, nil
}

// UpdateEvent submits a targeted update for an existing event.
func (c *Client) UpdateEvent(ctx context.Context, id int64, draft EventDraft) error {
	body, contentType, err := encodeEventForm(draft)
	if err != nil {
		return fmt.Errorf("encoding event form: %w", err)
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/events/%d", id), contentType, body, nil); err != nil {
		return fmt.Errorf("updating event %d: %w", id, err)
	}
	return nil
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/events/%d", id), nil, nil); err != nil {
		return fmt.Errorf("deleting event %d: %w", id, err)
	}
	return nil
}

// ListComments fetches an event's comments, oldest first.
func (c *Client) ListComments(ctx context.Context, eventID int64) ([]model.Comment, error) {
	var comments []model.Comment
	path := fmt.Sprintf("/events/%d/comments", eventID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &comments); err != nil {
		return nil, fmt.Errorf("listing comments for event %d: %w", eventID, err)
	}
	for i := range comments {
		comments[i].EventID = eventID
	}
	return comments, nil
}

// AddComment posts a comment and returns the server-confirmed entry
// with its assigned id.
func (c *Client) AddComment(ctx context.Context, eventID int64, content string) (*model.Comment, error) {
	body := map[string]string{"content": content}
	var comment model.Comment
	path := fmt.Sprintf("/events/%d/comments", eventID)
	if err := c.doJSON(ctx, http.MethodPost, path, body, &comment); err != nil {
		return nil, fmt.Errorf("adding comment to event %d: %w", eventID, err)
	}
	comment.EventID = eventID
	return &comment, nil
}

// DeleteComment removes a comment by id.
func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", commentID), nil, nil); err != nil {
		return fmt.Errorf("deleting comment %d: %w", commentID, err)
	}
	return nil
}

// likeResponse carries the authoritative like count after an increment.
type likeResponse struct {
	Likes int `json:"likes"`
}

// Like increments an event's like count and returns the server's
// authoritative total, which guards against lost updates under
// concurrent likes from other sessions.
func (c *Client) Like(ctx context.Context, eventID int64) (int, error) {
	var resp likeResponse
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/events/%d/like", eventID), nil, &resp); err != nil {
		return 0, fmt.Errorf("liking event %d: %w", eventID, err)
	}
	return resp.Likes, nil
}

// TranslateRequest asks the backend to translate an event's text.
type TranslateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetLang  string `json:"targetLang"`
}

// TranslateResult is the translated text pair.
type TranslateResult struct {
	TranslatedTitle       string `json:"translatedTitle"`
	TranslatedDescription string `json:"translatedDescription"`
}

// Translate requests a translation of an event's title and description.
func (c *Client) Translate(ctx context.Context, req TranslateRequest) (*TranslateResult, error) {
	var result TranslateResult
	if err := c.doJSON(ctx, http.MethodPost, "/translate", req, &result); err != nil {
		return nil, fmt.Errorf("translating: %w", err)
	}
	return &result, nil
}

// ListBuildings fetches the campus building reference data.
func (c *Client) ListBuildings(ctx context.Context) ([]model.Building, error) {
	var buildings []model.Building
	if err := c.doJSON(ctx, http.MethodGet, "/buildings", nil, &buildings); err != nil {
		return nil, fmt.Errorf("listing buildings: %w", err)
	}
	return buildings, nil
}

// PendingEvents fetches the moderation queue. Admin only.
func (c *Client) PendingEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.doJSON(ctx, http.MethodGet, "/admin/events/pending", nil, &events); err != nil {
		return nil, fmt.Errorf("listing pending events: %w", err)
	}
	return events, nil
}

// ApproveEvent approves a pending event. Admin only.
func (c *Client) ApproveEvent(ctx context.Context, eventID int64) error {
	path := fmt.Sprintf("/admin/events/%d/approve", eventID)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("approving event %d: %w", eventID, err)
	}
	return nil
}

// ListUsers fetches all registered users for the admin user table.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.doJSON(ctx, http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// SetUserRole changes a user's authorization level.
func (c *Client) SetUserRole(ctx context.Context, userID int64, role model.Role) error {
	path := fmt.Sprintf("/admin/users/%d/role", userID)
	body := map[string]string{"role": string(role)}
	if err := c.doJSON(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("changing role for user %d: %w", userID, err)
	}
	return nil
}

// doJSON executes a request with an optional JSON body.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, reader, out)
}

// do executes a request, classifies non-2xx responses and decodes a
// JSON response body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// statusError extracts the backend's {"error": "..."} message when
// present and wraps the status into the failure taxonomy.
func (c *Client) statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))

	message := ""
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		message = payload.Error
		if message == "" {
			message = payload.Message
		}
	}

	c.logger.Warn("api request failed",
		"status", resp.StatusCode,
		"url", resp.Request.URL.Path,
		"message", message)

	return &StatusError{Code: resp.StatusCode, Message: message}
}
