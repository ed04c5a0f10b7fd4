// Package gitutil provides utilities for interacting with git repositories.
package gitutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mehmetkoksal-w/routemap/internal/logger"
)

// IsGitRepo checks if the given path is inside a git repository.
func IsGitRepo(root string) bool {
	cmd := exec.Command("git", "-C", root, "rev-parse", "--git-dir")
	err := cmd.Run()
	return err == nil
}

// GetHeadCommit returns the current HEAD commit hash.
func GetHeadCommit(root string) (string, error) {
	cmd := exec.Command("git", "-C", root, "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Clone clones repoURL into a fresh temporary directory and returns its path.
// When a token is set and the URL points at github.com over https, the token
// is injected into the clone URL so private repositories work. The caller
// owns the returned directory and should remove it when done.
func Clone(ctx context.Context, repoURL, token string) (string, error) {
	dir, err := os.MkdirTemp("", "routemap-")
	if err != nil {
		return "", err
	}

	cloneURL := repoURL
	if token != "" && strings.Contains(repoURL, "github.com") && strings.HasPrefix(repoURL, "https://") {
		cloneURL = "https://" + token + "@" + strings.TrimPrefix(repoURL, "https://")
	}

	logger.Info("Cloning repository: %s", repoURL)
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", cloneURL, dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = os.RemoveAll(dir)
		// keep the token out of error output
		msg := string(out)
		if token != "" {
			msg = strings.ReplaceAll(msg, token, "***")
		}
		return "", fmt.Errorf("clone %s: %w: %s", repoURL, err, strings.TrimSpace(msg))
	}
	return dir, nil
}

// RepoNameFromURL derives a repository name from a clone URL or local path.
func RepoNameFromURL(repoURL string) string {
	name := strings.TrimSuffix(repoURL, "/")
	name = strings.TrimSuffix(name, ".git")
	if i := strings.LastIndexAny(name, "/\\:"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." {
		return "repository"
	}
	return name
}
