// Package selfupdate checks GitHub releases for a newer croki build
// and replaces the running binary in place.
package selfupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"
)

const (
	defaultOwner           = "croki-app"
	defaultRepo            = "croki"
	defaultBaseURL         = "https://api.github.com"
	defaultDownloadBaseURL = "https://github.com"
)

// Checker talks to the release endpoints.
type Checker struct {
	client          *http.Client
	owner           string
	repo            string
	baseURL         string
	downloadBaseURL string
	execPath        func() (string, error)
	logger          *log.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.client.Timeout = d }
}

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(u string) Option {
	return func(c *Checker) { c.baseURL = u }
}

// WithDownloadBaseURL overrides the asset download endpoint, for tests.
func WithDownloadBaseURL(u string) Option {
	return func(c *Checker) { c.downloadBaseURL = u }
}

// WithLogger routes update diagnostics to logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

// withExecPath overrides executable resolution, for tests.
func withExecPath(fn func() (string, error)) Option {
	return func(c *Checker) { c.execPath = fn }
}

// NewChecker builds a Checker against the croki release repository.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client:          &http.Client{Timeout: 30 * time.Second},
		owner:           defaultOwner,
		repo:            defaultRepo,
		baseURL:         defaultBaseURL,
		downloadBaseURL: defaultDownloadBaseURL,
		execPath:        os.Executable,
		logger:          log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckInput is the currently running version.
type CheckInput struct {
	Version string
}

// CheckResult describes the latest published release.
type CheckResult struct {
	UpdateAvailable bool
	LatestVersion   string
	ReleaseURL      string
}

type releaseResponse struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Check queries the latest release and compares it against the
// running version. Development builds always report no update.
func (c *Checker) Check(ctx context.Context, input *CheckInput) (*CheckResult, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from release API", resp.StatusCode)
	}

	var release releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("parse release response: %w", err)
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("release response has no tag name")
	}

	result := &CheckResult{
		LatestVersion: release.TagName,
		ReleaseURL:    release.HTMLURL,
	}

	current := canonical(input.Version)
	latest := canonical(release.TagName)
	if current == "" {
		// Dev or unparseable build: report the latest but never offer it.
		return result, nil
	}
	if latest != "" && semver.Compare(latest, current) > 0 {
		result.UpdateAvailable = true
	}
	return result, nil
}

// canonical normalizes a version string into semver form, or "" when
// it is not a release version.
func canonical(v string) string {
	if v == "" || v == "(devel)" {
		return ""
	}
	if v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}
