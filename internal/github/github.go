// Package github lists repositories to scan via the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mehmetkoksal-w/routemap/internal/logger"
)

const defaultBaseURL = "https://api.github.com"

// perPage is the page size for repository listings.
const perPage = 100

// Repo is the subset of the GitHub repository payload we consume.
type Repo struct {
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	Private  bool   `json:"private"`
}

// Client is a minimal GitHub REST client.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient builds a client against api.github.com. An empty token yields
// unauthenticated requests, which only see public repositories.
func NewClient(token string) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListRepos returns clone URLs for every repository of the given user or
// organization. Exactly one of user and org must be set. Private repositories
// are skipped unless a token is configured.
func (c *Client) ListRepos(ctx context.Context, user, org string) ([]string, error) {
	if (user == "") == (org == "") {
		return nil, errors.New("exactly one of user or org must be provided")
	}

	var path string
	if user != "" {
		logger.Info("Getting repositories for user: %s", user)
		path = "/users/" + url.PathEscape(user) + "/repos"
	} else {
		logger.Info("Getting repositories for organization: %s", org)
		path = "/orgs/" + url.PathEscape(org) + "/repos"
	}

	var urls []string
	for page := 1; ; page++ {
		repos, err := c.listPage(ctx, path, page)
		if err != nil {
			return nil, err
		}
		if len(repos) == 0 {
			break
		}
		for _, repo := range repos {
			if repo.Private && c.Token == "" {
				continue
			}
			urls = append(urls, repo.CloneURL)
		}
		if len(repos) < perPage {
			break
		}
	}
	logger.Info("Found %d repositories", len(urls))
	return urls, nil
}

func (c *Client) listPage(ctx context.Context, path string, page int) ([]Repo, error) {
	endpoint := c.BaseURL + path + "?per_page=" + strconv.Itoa(perPage) + "&page=" + strconv.Itoa(page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("github API error: %s returned %s: %s", path, resp.Status, body)
	}

	var repos []Repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("decode github response: %w", err)
	}
	return repos, nil
}
