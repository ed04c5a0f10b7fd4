package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(token)
	c.BaseURL = srv.URL
	return c
}

func TestListReposUser(t *testing.T) {
	var gotPath, gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]Repo{
			{FullName: "alice/users-service", CloneURL: "https://github.com/alice/users-service.git"},
			{FullName: "alice/secret", CloneURL: "https://github.com/alice/secret.git", Private: true},
		})
	}, "")

	urls, err := c.ListRepos(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("ListRepos: %v", err)
	}
	if gotPath != "/users/alice/repos" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "" {
		t.Errorf("unexpected Authorization header %q without token", gotAuth)
	}
	if len(urls) != 1 || urls[0] != "https://github.com/alice/users-service.git" {
		t.Errorf("urls = %v (private repo must be skipped without token)", urls)
	}
}

func TestListReposOrgWithToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/orgs/acme/repos" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]Repo{
			{FullName: "acme/internal", CloneURL: "https://github.com/acme/internal.git", Private: true},
		})
	}, "ghp_test")

	urls, err := c.ListRepos(context.Background(), "", "acme")
	if err != nil {
		t.Fatalf("ListRepos: %v", err)
	}
	if gotAuth != "Bearer ghp_test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(urls) != 1 {
		t.Errorf("urls = %v (private repo must be listed with token)", urls)
	}
}

func TestListReposPagination(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		var repos []Repo
		switch page {
		case "1":
			for i := 0; i < perPage; i++ {
				repos = append(repos, Repo{CloneURL: fmt.Sprintf("https://github.com/acme/repo-%d.git", i)})
			}
		case "2":
			repos = []Repo{{CloneURL: "https://github.com/acme/last.git"}}
		}
		_ = json.NewEncoder(w).Encode(repos)
	}, "")

	urls, err := c.ListRepos(context.Background(), "", "acme")
	if err != nil {
		t.Fatalf("ListRepos: %v", err)
	}
	if len(urls) != perPage+1 {
		t.Errorf("got %d urls, want %d", len(urls), perPage+1)
	}
	if urls[len(urls)-1] != "https://github.com/acme/last.git" {
		t.Errorf("last url = %q", urls[len(urls)-1])
	}
}

func TestListReposValidation(t *testing.T) {
	c := NewClient("")
	if _, err := c.ListRepos(context.Background(), "", ""); err == nil {
		t.Error("expected error when neither user nor org is set")
	}
	if _, err := c.ListRepos(context.Background(), "alice", "acme"); err == nil {
		t.Error("expected error when both user and org are set")
	}
}

func TestListReposAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	}, "")
	if _, err := c.ListRepos(context.Background(), "ghost", ""); err == nil {
		t.Error("expected error for 404 response")
	}
}
