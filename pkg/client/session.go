package client

import (
	"context"
	"errors"
	"log"
	"sync"

	"fictionverse/internal/model"
)

// GuestUserID is the fixed id of the synthesized guest identity.
const GuestUserID = "guest-user"

// Session errors.
var (
	// ErrGuestModeDisabled is returned by operations that need a real
	// backend session while the client is in guest mode. It is raised
	// before any network attempt.
	ErrGuestModeDisabled = errors.New("disabled in guest mode")

	// ErrSignInFailed wraps credential-exchange failures on the dormant
	// authenticated path.
	ErrSignInFailed = errors.New("sign in failed")
)

// Mode is the session controller's state.
type Mode int

const (
	ModeUninitialized Mode = iota
	ModeGuest
	ModeAuthenticating
	ModeAuthenticated
	ModeUnauthenticated
)

func (m Mode) String() string {
	switch m {
	case ModeUninitialized:
		return "uninitialized"
	case ModeGuest:
		return "guest"
	case ModeAuthenticating:
		return "authenticating"
	case ModeAuthenticated:
		return "authenticated"
	case ModeUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// sessionState is mutex-serialized: transitions happen on discrete calls and
// a second transition cannot start while one is in flight.
type sessionState struct {
	mu       sync.Mutex
	mode     Mode
	identity *model.Profile
}

// Mode returns the current session mode.
func (c *Client) Mode() Mode {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	return c.session.mode
}

// CurrentUser returns the active identity: the synthesized guest profile in
// guest mode, the fetched profile when authenticated, nil otherwise.
func (c *Client) CurrentUser() *model.Profile {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	if c.session.identity == nil {
		return nil
	}
	cp := *c.session.identity
	return &cp
}

// Initialize runs the boot decision. When the persisted guest flag is unset
// it is set to true, making guest mode the default path; the flag then
// decides between GuestMode and the dormant token-restore path.
func (c *Client) Initialize(ctx context.Context) error {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()

	flag, ok := c.store.Get(KeyGuestMode)
	if !ok {
		if err := c.store.Set(KeyGuestMode, "true"); err != nil {
			return err
		}
		flag = "true"
		log.Println("[Client] Guest mode activated, all external calls blocked")
	}

	if flag == "true" {
		profile := guestProfile()
		c.session.mode = ModeGuest
		c.session.identity = &profile
		return nil
	}

	// Dormant path: restore a stored token if one survives.
	token, ok := c.store.Get(KeyAccessToken)
	if !ok || token == "" {
		c.session.mode = ModeUnauthenticated
		c.session.identity = nil
		return nil
	}

	c.session.mode = ModeAuthenticating
	return c.loadAuthenticatedSession(ctx)
}

// SignIn exchanges credentials for a session and loads the profile and
// preferences. Any authorization failure while loading wipes all local
// session state; the controller never stays partially authenticated.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()

	if c.session.mode == ModeGuest {
		return ErrGuestModeDisabled
	}

	c.session.mode = ModeAuthenticating

	session, err := c.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		c.session.mode = ModeUnauthenticated
		c.session.identity = nil
		return errors.Join(ErrSignInFailed, err)
	}

	if err := c.store.Set(KeyAccessToken, session.AccessToken); err != nil {
		c.session.mode = ModeUnauthenticated
		return err
	}

	return c.loadAuthenticatedSession(ctx)
}

// loadAuthenticatedSession fetches profile and preferences with the stored
// token. Callers hold the session mutex.
func (c *Client) loadAuthenticatedSession(ctx context.Context) error {
	profile, err := c.fetchProfile(ctx)
	if err == nil {
		_, err = c.fetchPreferences(ctx)
	}
	if err != nil {
		if isUnauthorized(err) {
			log.Println("[Client] Session load unauthorized, wiping local state")
			c.wipeLocalSessionLocked()
			return err
		}
		c.session.mode = ModeUnauthenticated
		c.session.identity = nil
		return err
	}

	c.session.mode = ModeAuthenticated
	c.session.identity = profile
	return nil
}

// SignUp registers a new account through the public signup endpoint. The
// caller still signs in afterwards; no session state changes here.
func (c *Client) SignUp(ctx context.Context, email, password, displayName, username string) error {
	c.session.mu.Lock()
	mode := c.session.mode
	c.session.mu.Unlock()

	if mode == ModeGuest {
		return ErrGuestModeDisabled
	}

	req := model.SignupRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
		Username:    username,
	}
	var out struct {
		Message string `json:"message"`
	}
	return c.post(ctx, "/auth/signup", false, req, &out)
}

// SignOut discards the local session.
func (c *Client) SignOut() error {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()

	if c.session.mode == ModeGuest {
		return ErrGuestModeDisabled
	}

	c.wipeLocalSessionLocked()
	return nil
}

// SetGuestMode persists the guest flag. Takes effect on the next Initialize.
func (c *Client) SetGuestMode(enabled bool) error {
	if enabled {
		return c.store.Set(KeyGuestMode, "true")
	}
	return c.store.Set(KeyGuestMode, "false")
}

// CompleteOnboarding records onboarding completion locally, and also on the
// backend when a real (non-guest) session is active.
func (c *Client) CompleteOnboarding(ctx context.Context) error {
	if err := c.store.Set(KeyGuestOnboarding, "true"); err != nil {
		return err
	}

	c.session.mu.Lock()
	authenticated := c.session.mode == ModeAuthenticated &&
		c.session.identity != nil && c.session.identity.ID != GuestUserID
	c.session.mu.Unlock()

	if !authenticated {
		return nil
	}

	_, err := c.UpdatePreferences(ctx, map[string]interface{}{
		"hasCompletedOnboarding": true,
	})
	return err
}

// OnboardingCompleted reports the persisted onboarding flag.
func (c *Client) OnboardingCompleted() bool {
	v, ok := c.store.Get(KeyGuestOnboarding)
	return ok && v == "true"
}

// wipeLocalSessionLocked discards every piece of local session state. Called
// with the session mutex held.
func (c *Client) wipeLocalSessionLocked() {
	if err := c.store.Remove(KeyAccessToken); err != nil {
		log.Printf("[Client] Failed to remove stored token: %v", err)
	}
	c.session.mode = ModeUnauthenticated
	c.session.identity = nil
}
