package remote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/etnz/flagship"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultGitHubURL is the GitHub REST API.
	DefaultGitHubURL = "https://api.github.com"
	// DefaultGitHubPath is the file the snapshot is committed to.
	DefaultGitHubPath = "flagship_data.json"
)

// GitHub stores snapshots as a file committed to a repository, through the
// contents API. The key of a blob is its path in the repository.
type GitHub struct {
	Client  *http.Client
	BaseURL string // defaults to DefaultGitHubURL
	Token   string // needs the "repo" scope
	Repo    string // owner/name
	Path    string // defaults to DefaultGitHubPath
}

type contentFile struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

func (g GitHub) contentsURL(key string) (string, error) {
	repo := strings.Trim(strings.TrimSpace(g.Repo), "/")
	if repo == "" || !strings.Contains(repo, "/") {
		return "", fmt.Errorf("%w: repository must be owner/name, got %q", flagship.ErrNotConfigured, g.Repo)
	}
	if strings.TrimSpace(g.Token) == "" {
		return "", fmt.Errorf("%w: github token is missing", flagship.ErrNotConfigured)
	}
	base := g.BaseURL
	if base == "" {
		base = DefaultGitHubURL
	}
	return fmt.Sprintf("%s/repos/%s/contents/%s", strings.TrimSuffix(base, "/"), repo, key), nil
}

func (g GitHub) header() http.Header {
	return http.Header{
		"Authorization":        {"Bearer " + strings.TrimSpace(g.Token)},
		"X-Github-Api-Version": {"2022-11-28"},
	}
}

func (g GitHub) get(ctx context.Context, key string) (contentFile, error) {
	var f contentFile
	u, err := g.contentsURL(key)
	if err != nil {
		return f, err
	}
	_, body, err := do(ctx, g.Client, http.MethodGet, u, nil, g.header())
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(body, &f); err != nil {
		return f, fmt.Errorf("invalid github contents response: %w", err)
	}
	return f, nil
}

func (g GitHub) put(ctx context.Context, key, sha string, data []byte) error {
	u, err := g.contentsURL(key)
	if err != nil {
		return err
	}
	body, err := json.Marshal(struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha,omitempty"`
	}{
		Message: "Sync data " + time.Now().UTC().Format(time.RFC3339),
		Content: base64.StdEncoding.EncodeToString(data),
		SHA:     sha,
	})
	if err != nil {
		return err
	}
	_, _, err = do(ctx, g.Client, http.MethodPut, u, body, g.header())
	return err
}

// Create commits data to Path, overwriting the file if it already exists.
func (g GitHub) Create(ctx context.Context, data []byte) (string, error) {
	key := g.Path
	if key == "" {
		key = DefaultGitHubPath
	}
	f, err := g.get(ctx, key)
	if err != nil && !errors.Is(err, flagship.ErrNotFound) {
		return "", err
	}
	if err := g.put(ctx, key, f.SHA, data); err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"repo": g.Repo, "path": key}).Info("created remote file")
	return key, nil
}

// Update commits data to the existing file key.
func (g GitHub) Update(ctx context.Context, key string, data []byte) error {
	f, err := g.get(ctx, key)
	if err != nil {
		return err
	}
	return g.put(ctx, key, f.SHA, data)
}

func (g GitHub) Fetch(ctx context.Context, key string) ([]byte, error) {
	f, err := g.get(ctx, key)
	if err != nil {
		return nil, err
	}
	if f.Encoding != "" && f.Encoding != "base64" {
		return nil, fmt.Errorf("unsupported github content encoding %q", f.Encoding)
	}
	// the api wraps base64 content every 60 characters
	return base64.StdEncoding.DecodeString(strings.ReplaceAll(f.Content, "\n", ""))
}
