package update

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/mapsengine/gme-cli/internal/utils"
)

const (
	// GitHub repository for releases
	repoOwner = "mapsengine"
	repoName  = "gme-cli"
)

// ErrNoRelease is returned when the repository has no published release
var ErrNoRelease = errors.New("no releases found")

// Release is the subset of a GitHub release the CLI reports
type Release struct {
	TagName     string
	Name        string
	HTMLURL     string
	PublishedAt time.Time
}

// GetVersion extracts the version from a tag name (e.g., "v1.2.3" -> "1.2.3")
func (r *Release) GetVersion() string {
	return strings.TrimPrefix(r.TagName, "v")
}

// Checker looks up the latest published release
type Checker struct {
	gh    *gh.Client
	owner string
	repo  string
}

// NewChecker creates a Checker for the gme-cli release feed.
// httpClient may be nil.
func NewChecker(httpClient *http.Client) *Checker {
	if httpClient == nil {
		httpClient = utils.NewHTTPClient()
	}
	return &Checker{
		gh:    gh.NewClient(httpClient),
		owner: repoOwner,
		repo:  repoName,
	}
}

// WithBaseURL points the checker at another GitHub API root, such as an
// enterprise host.
func (c *Checker) WithBaseURL(base string) (*Checker, error) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	c.gh.BaseURL = u
	return c, nil
}

// LatestRelease fetches the latest release
func (c *Checker) LatestRelease(ctx context.Context) (*Release, error) {
	rel, resp, err := c.gh.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrNoRelease
		}
		return nil, fmt.Errorf("failed to fetch release: %w", err)
	}

	release := &Release{
		TagName: rel.GetTagName(),
		Name:    rel.GetName(),
		HTMLURL: rel.GetHTMLURL(),
	}
	if rel.PublishedAt != nil {
		release.PublishedAt = rel.PublishedAt.Time
	}
	return release, nil
}

// Result is the outcome of comparing the running version with the latest release
type Result struct {
	Current         string
	Latest          *Release
	UpdateAvailable bool
}

// Check compares current with the latest release
func (c *Checker) Check(ctx context.Context, current string) (*Result, error) {
	latest, err := c.LatestRelease(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{
		Current:         current,
		Latest:          latest,
		UpdateAvailable: CompareVersions(current, latest.GetVersion()) < 0,
	}, nil
}

// CompareVersions compares two semver versions
// Returns: -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) int {
	v1 = strings.TrimPrefix(v1, "v")
	v2 = strings.TrimPrefix(v2, "v")

	if v1 == v2 {
		return 0
	}
	// dev builds are always behind a release
	if v1 == "dev" {
		return -1
	}
	if v2 == "dev" {
		return 1
	}

	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")

	maxLen := len(parts1)
	if len(parts2) > maxLen {
		maxLen = len(parts2)
	}

	for i := 0; i < maxLen; i++ {
		var n1, n2 int
		if i < len(parts1) {
			fmt.Sscanf(parts1[i], "%d", &n1)
		}
		if i < len(parts2) {
			fmt.Sscanf(parts2[i], "%d", &n2)
		}

		if n1 < n2 {
			return -1
		}
		if n1 > n2 {
			return 1
		}
	}

	return 0
}
