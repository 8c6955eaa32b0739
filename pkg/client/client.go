package client

import (
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"fictionverse/internal/model"
	"fictionverse/internal/supabase"
)

// Config configures a Fictionverse client.
type Config struct {
	// BaseURL is the API root including the service prefix,
	// e.g. "http://localhost:8080/fictionverse/v1".
	BaseURL string

	// AuthURL and AnonKey identify the authentication provider used by the
	// dormant sign-in path. The provider host is what the transport gate
	// blocks in guest mode.
	AuthURL string
	AnonKey string

	// Store holds the persisted session flags. Defaults to an in-memory
	// store when nil.
	Store LocalStore

	Timeout time.Duration
}

// Client is the Fictionverse API client plus its session controller. All API
// wrappers consult the session mode before building a request; in guest mode
// they branch to a local mock implementation that never touches the network.
type Client struct {
	api   *resty.Client
	auth  *supabase.Client
	store LocalStore

	session sessionState

	guest guestState
}

// guestState is the client-local world guest-mode writes land in. Nothing
// here is ever persisted server-side.
type guestState struct {
	mu      sync.Mutex
	stories map[string]*model.Story
	likes   map[string]bool
	prefs   *model.Preferences
	profile model.Profile
}

// New creates a client. The transport gate is installed on both the API and
// the auth provider connections.
func New(cfg Config) (*Client, error) {
	store := cfg.Store
	if store == nil {
		store = NewMemoryLocalStore()
	}

	authHost := ""
	if cfg.AuthURL != "" {
		u, err := url.Parse(cfg.AuthURL)
		if err != nil {
			return nil, err
		}
		authHost = u.Host
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		store: store,
		guest: guestState{
			stories: make(map[string]*model.Story),
			likes:   make(map[string]bool),
			profile: guestProfile(),
		},
	}

	guard := NewGuardedTransport(nil, authHost, c.guestFlagSet)

	c.api = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetTransport(guard)

	c.auth = supabase.NewClient(cfg.AuthURL, cfg.AnonKey, "")
	c.auth.SetTransport(guard)

	return c, nil
}

// guestFlagSet reads the persisted flag directly so the transport gate stays
// armed even before Initialize has run.
func (c *Client) guestFlagSet() bool {
	v, ok := c.store.Get(KeyGuestMode)
	return ok && v == "true"
}

// guestProfile synthesizes the fixed local identity used in guest mode.
func guestProfile() model.Profile {
	return model.Profile{
		ID:          GuestUserID,
		Username:    "guest",
		DisplayName: "Guest Writer",
		Avatar:      model.DefaultAvatar,
		JoinDate:    time.Now().UTC(),
	}
}
