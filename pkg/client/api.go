package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"fictionverse/internal/model"
	"fictionverse/internal/supabase"
)

// APIError is a non-2xx response from the Fictionverse API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: request failed with status %d", e.Status)
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized
	}
	var providerErr *supabase.APIError
	if errors.As(err, &providerErr) {
		return providerErr.Status == http.StatusUnauthorized
	}
	return false
}

// errorEnvelope matches the server's {"error": {"code", "message"}} shape.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, body, out interface{}) error {
	req := c.api.R().SetContext(ctx).SetError(&errorEnvelope{})
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	if authed {
		token, _ := c.store.Get(KeyAccessToken)
		req.SetAuthToken(token)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode()}
		if env, ok := resp.Error().(*errorEnvelope); ok && env != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, authed bool, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, authed, nil, out)
}

func (c *Client) post(ctx context.Context, path string, authed bool, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, authed, body, out)
}

func (c *Client) put(ctx context.Context, path string, authed bool, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, authed, body, out)
}

func (c *Client) delete(ctx context.Context, path string, authed bool, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, authed, nil, out)
}

func (c *Client) inGuestMode() bool {
	return c.Mode() == ModeGuest
}

// Stories returns all stories. In guest mode it returns only stories created
// locally this session (initially none).
func (c *Client) Stories(ctx context.Context) ([]model.Story, error) {
	if c.inGuestMode() {
		c.guest.mu.Lock()
		defer c.guest.mu.Unlock()
		out := make([]model.Story, 0, len(c.guest.stories))
		for _, s := range c.guest.stories {
			out = append(out, *s)
		}
		return out, nil
	}

	var env struct {
		Stories []model.Story `json:"stories"`
	}
	if err := c.get(ctx, "/stories", false, &env); err != nil {
		return nil, err
	}
	return env.Stories, nil
}

// Story returns a single story by id.
func (c *Client) Story(ctx context.Context, id string) (*model.Story, error) {
	if c.inGuestMode() {
		c.guest.mu.Lock()
		defer c.guest.mu.Unlock()
		if s, ok := c.guest.stories[id]; ok {
			cp := *s
			return &cp, nil
		}
		return nil, &APIError{Status: http.StatusNotFound, Message: "Story not found"}
	}

	var env struct {
		Story *model.Story `json:"story"`
	}
	if err := c.get(ctx, "/stories/"+id, false, &env); err != nil {
		return nil, err
	}
	return env.Story, nil
}

// UserStories returns the stories of one author.
func (c *Client) UserStories(ctx context.Context, userID string) ([]model.Story, error) {
	if c.inGuestMode() {
		c.guest.mu.Lock()
		defer c.guest.mu.Unlock()
		out := make([]model.Story, 0)
		for _, s := range c.guest.stories {
			if s.AuthorID == userID {
				out = append(out, *s)
			}
		}
		return out, nil
	}

	var env struct {
		Stories []model.Story `json:"stories"`
	}
	if err := c.get(ctx, "/stories/user/"+userID, false, &env); err != nil {
		return nil, err
	}
	return env.Stories, nil
}

// CreateStory creates a story. In guest mode the story lives only in this
// client's memory and is never persisted server-side.
func (c *Client) CreateStory(ctx context.Context, req model.CreateStoryRequest) (*model.Story, error) {
	if c.inGuestMode() {
		c.guest.mu.Lock()
		defer c.guest.mu.Unlock()

		now := time.Now().UTC()
		story := &model.Story{
			ID:          uuid.NewString(),
			AuthorID:    GuestUserID,
			Author:      c.guest.profile.Username,
			Title:       req.Title,
			Description: req.Description,
			Type:        req.Type,
			Universe:    req.Universe,
			Tags:        req.Tags,
			Chapters:    req.Chapters,
			Status:      req.Status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if story.Type == "" {
			story.Type = model.StoryTypeOriginal
		}
		if story.Status == "" {
			story.Status = model.StoryStatusDraft
		}
		c.guest.stories[story.ID] = story
		cp := *story
		return &cp, nil
	}

	var env struct {
		Story *model.Story `json:"story"`
	}
	if err := c.post(ctx, "/stories", true, req, &env); err != nil {
		return nil, err
	}
	return env.Story, nil
}

// UpdateStory applies a partial update to a story.
func (c *Client) UpdateStory(ctx context.Context, id string, updates map[string]interface{}) (*model.Story, error) {
	if c.inGuestMode() {
		return nil, ErrGuestModeDisabled
	}

	var env struct {
		Story *model.Story `json:"story"`
	}
	if err := c.put(ctx, "/stories/"+id, true, updates, &env); err != nil {
		return nil, err
	}
	return env.Story, nil
}

// DeleteStory deletes a story. In guest mode only the local copy is removed.
func (c *Client) DeleteStory(ctx context.Context, id string) error {
	if c.inGuestMode() {
		c.guest.mu.Lock()
		defer c.guest.mu.Unlock()
		delete(c.guest.stories, id)
		delete(c.guest.likes, id)
		return nil
	}

	var env struct {
		Message string `json:"message"`
	}
	return c.delete(ctx, "/stories/"+id, true, &env)
}

// ToggleLike flips the like flag on a story. In guest mode the toggle is
// tracked locally against the locally stored story.
func (c *Client) ToggleLike(ctx context.Context, id string) (*model.LikeResult, error) {
	if c.inGuestMode() {
		c.guest.mu.Lock()
		defer c.guest.mu.Unlock()

		story, ok := c.guest.stories[id]
		if !ok {
			return nil, &APIError{Status: http.StatusNotFound, Message: "Story not found"}
		}
		if c.guest.likes[id] {
			delete(c.guest.likes, id)
			story.Likes--
			if story.Likes < 0 {
				story.Likes = 0
			}
			return &model.LikeResult{Liked: false, Likes: story.Likes}, nil
		}
		c.guest.likes[id] = true
		story.Likes++
		return &model.LikeResult{Liked: true, Likes: story.Likes}, nil
	}

	var result model.LikeResult
	if err := c.post(ctx, "/stories/"+id+"/like", true, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Profile returns the caller's profile. In guest mode it is the synthesized
// local identity; fetching a real profile requires a backend session.
func (c *Client) Profile(ctx context.Context) (*model.Profile, error) {
	if c.inGuestMode() {
		c.guest.mu.Lock()
		defer c.guest.mu.Unlock()
		cp := c.guest.profile
		return &cp, nil
	}
	return c.fetchProfile(ctx)
}

func (c *Client) fetchProfile(ctx context.Context) (*model.Profile, error) {
	var env struct {
		Profile *model.Profile `json:"profile"`
	}
	if err := c.get(ctx, "/auth/profile", true, &env); err != nil {
		return nil, err
	}
	if env.Profile == nil {
		return nil, errors.New("profile response missing profile object")
	}
	return env.Profile, nil
}

// UpdateProfile applies a partial update to the caller's profile. In guest
// mode the update lands on the local identity only.
func (c *Client) UpdateProfile(ctx context.Context, updates map[string]interface{}) (*model.Profile, error) {
	if c.inGuestMode() {
		c.guest.mu.Lock()
		defer c.guest.mu.Unlock()
		applyGuestProfileUpdates(&c.guest.profile, updates)
		cp := c.guest.profile
		return &cp, nil
	}

	var env struct {
		Profile *model.Profile `json:"profile"`
	}
	if err := c.put(ctx, "/auth/profile", true, updates, &env); err != nil {
		return nil, err
	}
	return env.Profile, nil
}

// Preferences returns the caller's preferences, or the defaults in guest
// mode before any local write.
func (c *Client) Preferences(ctx context.Context) (*model.Preferences, error) {
	if c.inGuestMode() {
		c.guest.mu.Lock()
		defer c.guest.mu.Unlock()
		if c.guest.prefs != nil {
			cp := *c.guest.prefs
			return &cp, nil
		}
		defaults := model.DefaultPreferences()
		return &defaults, nil
	}
	return c.fetchPreferences(ctx)
}

func (c *Client) fetchPreferences(ctx context.Context) (*model.Preferences, error) {
	var env struct {
		Preferences *model.Preferences `json:"preferences"`
	}
	if err := c.get(ctx, "/preferences", true, &env); err != nil {
		return nil, err
	}
	if env.Preferences == nil {
		return nil, errors.New("preferences response missing preferences object")
	}
	return env.Preferences, nil
}

// UpdatePreferences applies a partial preferences update.
func (c *Client) UpdatePreferences(ctx context.Context, updates map[string]interface{}) (*model.Preferences, error) {
	if c.inGuestMode() {
		c.guest.mu.Lock()
		defer c.guest.mu.Unlock()
		prefs := model.DefaultPreferences()
		if c.guest.prefs != nil {
			prefs = *c.guest.prefs
		}
		applyGuestPreferenceUpdates(&prefs, updates)
		c.guest.prefs = &prefs
		cp := prefs
		return &cp, nil
	}

	var env struct {
		Preferences *model.Preferences `json:"preferences"`
	}
	if err := c.put(ctx, "/preferences", true, updates, &env); err != nil {
		return nil, err
	}
	return env.Preferences, nil
}

func applyGuestProfileUpdates(p *model.Profile, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "displayName":
			if v, ok := value.(string); ok {
				p.DisplayName = v
			}
		case "avatar":
			if v, ok := value.(string); ok {
				p.Avatar = v
			}
		case "bio":
			if v, ok := value.(string); ok {
				p.Bio = v
			}
		}
	}
}

func applyGuestPreferenceUpdates(p *model.Preferences, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "hasCompletedOnboarding":
			if v, ok := value.(bool); ok {
				p.HasCompletedOnboarding = v
			}
		case "theme":
			if v, ok := value.(string); ok {
				p.Theme = v
			}
		case "notifications":
			if v, ok := value.(bool); ok {
				p.Notifications = v
			}
		}
	}
}
