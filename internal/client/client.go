// Package client is a Go client for the templatehub HTTP API. Bearer tokens
// live only inside the Session returned by Login and are never persisted.
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
	"strings"

	"github.com/templatehub/backend/internal/models"
)

// ErrLoggedOut is returned by Session methods after Logout.
var ErrLoggedOut = errors.New("session logged out")

// APIError is a non-2xx response decoded from the API's error envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("templatehub: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an *APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to one templatehub deployment.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password string) (models.PublicUser, error) {
	var user models.PublicUser
	err := c.do(ctx, http.MethodPost, "/register", "", credentials{username, password}, &user)
	return user, err
}

// Login exchanges credentials for a Session holding the bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var resp struct {
		Token string            `json:"token"`
		User  models.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", "", credentials{username, password}, &resp); err != nil {
		return nil, err
	}
	return &Session{client: c, token: resp.Token, User: resp.User}, nil
}

// Templates lists the public catalog.
func (c *Client) Templates(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	err := c.do(ctx, http.MethodGet, "/api/templates", "", nil, &templates)
	return templates, err
}

// Template fetches one catalog entry.
func (c *Client) Template(ctx context.Context, id string) (models.Template, error) {
	var template models.Template
	err := c.do(ctx, http.MethodGet, "/api/templates/"+url.PathEscape(id), "", nil, &template)
	return template, err
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Message == "" {
			envelope.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Message}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
