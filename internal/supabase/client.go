// Package supabase is a minimal client for the Supabase auth (GoTrue) REST
// API, covering the user-resolution and admin endpoints this service needs.
package supabase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// UserMetadata is the free-form metadata attached to an auth user at signup.
type UserMetadata struct {
	DisplayName string `json:"displayName,omitempty"`
	Username    string `json:"username,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Bio         string `json:"bio,omitempty"`
	JoinDate    string `json:"joinDate,omitempty"`
}

// User is an identity resolved by the auth provider.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	CreatedAt    time.Time    `json:"created_at"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

// Session is the result of a token grant.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

// APIError is a non-2xx response from the provider.
type APIError struct {
	Status  int
	Message string `json:"msg"`
	Code    string `json:"error_code"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("supabase: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("supabase: request failed with status %d", e.Status)
}

// Client talks to a Supabase project's auth endpoints. The admin client
// carries the service-role key; the anon client carries the public anon key.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *resty.Client
}

// NewClient creates a client for the project at baseURL
// (e.g. https://<project>.supabase.co).
func NewClient(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		serviceKey: serviceKey,
		http: resty.New().
			SetBaseURL(baseURL + "/auth/v1").
			SetTimeout(10 * time.Second),
	}
}

// SetTransport replaces the underlying HTTP transport. Used by tests and by
// the client-side network gate.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.http.SetTransport(rt)
}

// BaseURL returns the project base URL this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) request(ctx context.Context, apikey string) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("apikey", apikey).
		SetError(&APIError{})
}

func apiErr(resp *resty.Response) error {
	if e, ok := resp.Error().(*APIError); ok && e != nil {
		e.Status = resp.StatusCode()
		return e
	}
	return &APIError{Status: resp.StatusCode()}
}

// AdminGetUser resolves a bearer token to its user using service-role
// credentials. Side-effect free.
func (c *Client) AdminGetUser(ctx context.Context, token string) (*User, error) {
	var user User
	resp, err := c.request(ctx, c.serviceKey).
		SetAuthToken(token).
		SetResult(&user).
		Get("/user")
	if err != nil {
		return nil, fmt.Errorf("admin get user: %w", err)
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	return &user, nil
}

// GetUserWithToken resolves the current session's user by forwarding the
// original bearer header on an anon-key request.
func (c *Client) GetUserWithToken(ctx context.Context, token string) (*User, error) {
	var user User
	resp, err := c.request(ctx, c.anonKey).
		SetAuthToken(token).
		SetResult(&user).
		Get("/user")
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	return &user, nil
}

// RefreshSession presents token as a refresh credential and returns the
// session's user. Degraded compatibility path for token shapes the direct
// lookups reject.
func (c *Client) RefreshSession(ctx context.Context, token string) (*User, error) {
	var session Session
	resp, err := c.request(ctx, c.anonKey).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": token}).
		SetResult(&session).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	if session.User == nil {
		return nil, fmt.Errorf("refresh session: no user in response")
	}
	return session.User, nil
}

// SignInWithPassword exchanges email/password credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	resp, err := c.request(ctx, c.anonKey).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&session).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("password grant: %w", err)
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	return &session, nil
}

// CreateUserParams are the admin create-user parameters.
type CreateUserParams struct {
	Email        string       `json:"email"`
	Password     string       `json:"password"`
	UserMetadata UserMetadata `json:"user_metadata"`
	EmailConfirm bool         `json:"email_confirm"`
}

// AdminCreateUser creates a confirmed auth user via the admin API.
func (c *Client) AdminCreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	var user User
	resp, err := c.request(ctx, c.serviceKey).
		SetAuthToken(c.serviceKey).
		SetBody(params).
		SetResult(&user).
		Post("/admin/users")
	if err != nil {
		return nil, fmt.Errorf("admin create user: %w", err)
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	return &user, nil
}

// AdminListUsers returns the project's auth users.
func (c *Client) AdminListUsers(ctx context.Context) ([]User, error) {
	var result struct {
		Users []User `json:"users"`
	}
	resp, err := c.request(ctx, c.serviceKey).
		SetAuthToken(c.serviceKey).
		SetResult(&result).
		Get("/admin/users")
	if err != nil {
		return nil, fmt.Errorf("admin list users: %w", err)
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	return result.Users, nil
}

// AdminDeleteUser removes an auth user by id.
func (c *Client) AdminDeleteUser(ctx context.Context, userID string) error {
	resp, err := c.request(ctx, c.serviceKey).
		SetAuthToken(c.serviceKey).
		Delete("/admin/users/" + userID)
	if err != nil {
		return fmt.Errorf("admin delete user: %w", err)
	}
	if resp.IsError() {
		return apiErr(resp)
	}
	return nil
}
