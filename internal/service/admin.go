package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"fictionverse/internal/kvstore"
	"fictionverse/internal/supabase"
)

// UserDirectory is the identity-provider surface the admin service needs.
type UserDirectory interface {
	AdminListUsers(ctx context.Context) ([]supabase.User, error)
	AdminDeleteUser(ctx context.Context, userID string) error
}

// KVCounts categorizes deleted keys by record kind.
type KVCounts struct {
	Users       int `json:"users"`
	Usernames   int `json:"usernames"`
	Stories     int `json:"stories"`
	Preferences int `json:"preferences"`
	Likes       int `json:"likes"`
	Total       int `json:"total"`
}

// ClearResult reports what a full wipe removed.
type ClearResult struct {
	AuthUsers int      `json:"authUsers"`
	KVStore   KVCounts `json:"kvStore"`
}

// AdminService implements destructive operator actions.
type AdminService struct {
	store     kvstore.Store
	directory UserDirectory
}

func NewAdminService(store kvstore.Store, directory UserDirectory) *AdminService {
	return &AdminService{
		store:     store,
		directory: directory,
	}
}

// ClearDatabase deletes every identity-provider user and every KV record.
// Per-user deletion failures are logged and skipped so one stuck account
// cannot block the wipe; KV deletion errors abort since a partial result
// would misreport the counts.
func (s *AdminService) ClearDatabase(ctx context.Context) (*ClearResult, error) {
	result := &ClearResult{}

	users, err := s.directory.AdminListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list auth users: %w", err)
	}
	for _, u := range users {
		if err := s.directory.AdminDeleteUser(ctx, u.ID); err != nil {
			log.Printf("[Admin] Failed to delete auth user=%s: %v", u.ID, err)
			continue
		}
		result.AuthUsers++
	}

	entries, err := s.store.List(ctx, "")
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		switch {
		case strings.HasPrefix(entry.Key, kvstore.PrefixUser):
			result.KVStore.Users++
		case strings.HasPrefix(entry.Key, kvstore.PrefixUsername):
			result.KVStore.Usernames++
		case strings.HasPrefix(entry.Key, kvstore.PrefixStory):
			result.KVStore.Stories++
		case strings.HasPrefix(entry.Key, kvstore.PrefixPreferences):
			result.KVStore.Preferences++
		case strings.HasPrefix(entry.Key, kvstore.PrefixLike):
			result.KVStore.Likes++
		}
		if err := s.store.Delete(ctx, entry.Key); err != nil {
			return nil, err
		}
		result.KVStore.Total++
	}

	log.Printf("[Admin] Database cleared: authUsers=%d kvKeys=%d", result.AuthUsers, result.KVStore.Total)
	return result, nil
}
