package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeGoTrue spins up an httptest server that mimics the provider's auth
// endpoints closely enough for the client paths under test.
func fakeGoTrue(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "anon-key", "service-key")
}

func TestClient_AdminGetUser(t *testing.T) {
	client := fakeGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("path = %s, want /auth/v1/user", r.URL.Path)
		}
		if got := r.Header.Get("apikey"); got != "service-key" {
			t.Errorf("apikey header = %q, want service key", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Errorf("Authorization = %q, want bearer user token", got)
		}
		json.NewEncoder(w).Encode(User{ID: "u1", Email: "u1@example.com"})
	})

	user, err := client.AdminGetUser(context.Background(), "user-token")
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "u1")
	}
}

func TestClient_GetUserWithTokenUsesAnonKey(t *testing.T) {
	client := fakeGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Errorf("apikey header = %q, want anon key", got)
		}
		json.NewEncoder(w).Encode(User{ID: "u2"})
	})

	user, err := client.GetUserWithToken(context.Background(), "user-token")
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if user.ID != "u2" {
		t.Errorf("user.ID = %q, want %q", user.ID, "u2")
	}
}

func TestClient_RefreshSession(t *testing.T) {
	client := fakeGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" {
			t.Errorf("path = %s, want /auth/v1/token", r.URL.Path)
		}
		if got := r.URL.Query().Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q, want refresh_token", got)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] != "the-token" {
			t.Errorf("refresh_token = %q, want the-token", body["refresh_token"])
		}
		json.NewEncoder(w).Encode(Session{
			AccessToken: "new-access",
			User:        &User{ID: "u3"},
		})
	})

	user, err := client.RefreshSession(context.Background(), "the-token")
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if user.ID != "u3" {
		t.Errorf("user.ID = %q, want %q", user.ID, "u3")
	}
}

func TestClient_RefreshSessionWithoutUserFails(t *testing.T) {
	client := fakeGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Session{AccessToken: "new-access"})
	})

	if _, err := client.RefreshSession(context.Background(), "the-token"); err == nil {
		t.Fatal("expected error when session has no user")
	}
}

func TestClient_ErrorResponseDecodesAPIError(t *testing.T) {
	client := fakeGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"msg":        "invalid JWT",
			"error_code": "bad_jwt",
		})
	})

	_, err := client.AdminGetUser(context.Background(), "bad-token")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.Status)
	}
	if apiErr.Message != "invalid JWT" {
		t.Errorf("message = %q, want %q", apiErr.Message, "invalid JWT")
	}
}

func TestClient_AdminCreateUser(t *testing.T) {
	client := fakeGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/admin/users" || r.Method != http.MethodPost {
			t.Errorf("got %s %s, want POST /auth/v1/admin/users", r.Method, r.URL.Path)
		}
		var params CreateUserParams
		json.NewDecoder(r.Body).Decode(&params)
		if !params.EmailConfirm {
			t.Error("expected email_confirm to be set")
		}
		if params.UserMetadata.Username != "alice" {
			t.Errorf("metadata username = %q, want alice", params.UserMetadata.Username)
		}
		json.NewEncoder(w).Encode(User{ID: "new-user", Email: params.Email})
	})

	user, err := client.AdminCreateUser(context.Background(), CreateUserParams{
		Email:        "alice@example.com",
		Password:     "secret",
		UserMetadata: UserMetadata{Username: "alice"},
		EmailConfirm: true,
	})
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if user.ID != "new-user" {
		t.Errorf("user.ID = %q, want new-user", user.ID)
	}
}

func TestClient_AdminListAndDeleteUsers(t *testing.T) {
	var deleted []string
	client := fakeGoTrue(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/admin/users":
			json.NewEncoder(w).Encode(map[string][]User{
				"users": {{ID: "u1"}, {ID: "u2"}},
			})
		case r.Method == http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	users, err := client.AdminListUsers(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	if err := client.AdminDeleteUser(context.Background(), "u1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "/auth/v1/admin/users/u1" {
		t.Errorf("deleted paths = %v, want [/auth/v1/admin/users/u1]", deleted)
	}
}
