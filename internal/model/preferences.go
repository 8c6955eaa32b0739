package model

import "errors"

// ErrPreferencesNotFound is returned when no preferences are stored for a
// user. Readers fall back to DefaultPreferences without persisting them.
var ErrPreferencesNotFound = errors.New("preferences not found")

// Themes accepted in preferences.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Preferences represents per-user settings stored under preferences:<userId>.
type Preferences struct {
	HasCompletedOnboarding bool   `json:"hasCompletedOnboarding"`
	Theme                  string `json:"theme"`
	Notifications          bool   `json:"notifications"`
}

// DefaultPreferences returns the documented defaults served before any
// explicit update has been persisted.
func DefaultPreferences() Preferences {
	return Preferences{
		HasCompletedOnboarding: false,
		Theme:                  ThemeDark,
		Notifications:          true,
	}
}
