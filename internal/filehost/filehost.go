// Package filehost commits lecture files to a GitHub repository and builds
// their public CDN links.
package filehost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
)

// ErrDisabled is returned when no GitHub token is configured.
var ErrDisabled = errors.New("filehost: disabled")

// DefaultCDN serves files straight from the repository through jsDelivr.
const DefaultCDN = "https://cdn.jsdelivr.net/gh/{owner}/{repo}@{branch}/{path}"

// Config selects the repository that stores lectures.
type Config struct {
	Token  string `yaml:"token" envconfig:"GITHUB_TOKEN"`
	Owner  string `yaml:"owner" envconfig:"GITHUB_OWNER"`
	Repo   string `yaml:"repo" envconfig:"GITHUB_REPO"`
	Branch string `yaml:"branch" envconfig:"GITHUB_BRANCH"`
	// CDN is the public URL template; {owner}, {repo}, {branch} and {path}
	// are substituted.
	CDN string `yaml:"cdn"`
}

// Normalize fills defaults.
func (c *Config) Normalize() {
	if c.Branch == "" {
		c.Branch = "main"
	}
	if c.CDN == "" {
		c.CDN = DefaultCDN
	}
}

// File is a committed file.
type File struct {
	Path string
	SHA  string
	URL  string
}

// Host talks to the GitHub contents API.
type Host struct {
	cfg    Config
	client *github.Client
}

// New builds a host. httpClient may be nil.
func New(cfg Config, httpClient *http.Client) *Host {
	cfg.Normalize()
	client := github.NewClient(httpClient)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	return &Host{cfg: cfg, client: client}
}

// Enabled reports whether uploads can be made.
func (h *Host) Enabled() bool {
	return h != nil && h.cfg.Token != "" && h.cfg.Owner != "" && h.cfg.Repo != ""
}

// Upload creates path with content in one commit.
func (h *Host) Upload(ctx context.Context, path string, content []byte, message string) (File, error) {
	if !h.Enabled() {
		return File{}, ErrDisabled
	}
	res, _, err := h.client.Repositories.CreateFile(ctx, h.cfg.Owner, h.cfg.Repo, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(h.cfg.Branch),
	})
	if err != nil {
		return File{}, fmt.Errorf("filehost: create %s: %w", path, err)
	}
	f := File{Path: path, URL: h.URL(path)}
	if res != nil && res.Content != nil {
		f.SHA = res.Content.GetSHA()
	}
	return f, nil
}

// Remove deletes a file committed by Upload.
func (h *Host) Remove(ctx context.Context, f File, message string) error {
	if !h.Enabled() {
		return ErrDisabled
	}
	_, _, err := h.client.Repositories.DeleteFile(ctx, h.cfg.Owner, h.cfg.Repo, f.Path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		SHA:     github.String(f.SHA),
		Branch:  github.String(h.cfg.Branch),
	})
	if err != nil {
		return fmt.Errorf("filehost: delete %s: %w", f.Path, err)
	}
	return nil
}

// URL returns the public link of path.
func (h *Host) URL(path string) string {
	escaped := (&url.URL{Path: path}).EscapedPath()
	return strings.NewReplacer(
		"{owner}", h.cfg.Owner,
		"{repo}", h.cfg.Repo,
		"{branch}", h.cfg.Branch,
		"{path}", escaped,
	).Replace(h.cfg.CDN)
}

var unsafeChars = strings.NewReplacer(
	"/", "-", `\`, "-", "?", "-", "%", "-", "*", "-",
	":", "-", "|", "-", `"`, "-", "<", "-", ">", "-",
)

// Sanitize replaces characters that are unsafe in a path segment.
func Sanitize(s string) string {
	return unsafeChars.Replace(strings.TrimSpace(s))
}

// LecturePath builds the repository path of a lecture file.
func LecturePath(section, class, subject, details, group string) string {
	return fmt.Sprintf("lectures/%s/%s/%s/%s - %s.pdf",
		Sanitize(section), Sanitize(class), Sanitize(subject), Sanitize(details), Sanitize(group))
}
