package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by Get when the key is absent.
var ErrKeyNotFound = errors.New("key not found")

// Entry is a single key/value pair returned by prefix scans.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a durable mapping from string key to opaque JSON value.
// There are no transactions and no compare-and-swap: concurrent writers to the
// same key race and the later write wins in full. Each key is assumed to have a
// single logical owner.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all entries whose key starts with prefix, in unspecified
	// order. The scan is linear over all stored keys.
	List(ctx context.Context, prefix string) ([]Entry, error)
}

// Key prefixes for the entities kept in the store.
const (
	PrefixUser        = "user:"
	PrefixUsername    = "username:"
	PrefixStory       = "story:"
	PrefixPreferences = "preferences:"
	PrefixLike        = "like:"
)

func UserKey(userID string) string {
	return PrefixUser + userID
}

func UsernameKey(username string) string {
	return PrefixUsername + username
}

func StoryKey(storyID string) string {
	return PrefixStory + storyID
}

func PreferencesKey(userID string) string {
	return PrefixPreferences + userID
}

func LikeKey(userID, storyID string) string {
	return fmt.Sprintf("%s%s:%s", PrefixLike, userID, storyID)
}
