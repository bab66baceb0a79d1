// Package update checks the latest published cubist release against the
// running build. Results are cached on disk so repeated version checks
// do not hit the GitHub API.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cubist-dev/cubist/internal/version"
)

const (
	releasesURL = "https://api.github.com/repos/cubist-dev/cubist/releases/latest"
	cacheMaxAge = 24 * time.Hour
)

// Info is the outcome of a release check.
type Info struct {
	LatestVersion   string    `json:"latest_version"`
	CurrentVersion  string    `json:"current_version"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
	UpdateAvailable bool      `json:"update_available"`
}

// CheckWithCache returns the most recent release check, refreshing it
// from GitHub once the cached result is older than a day. Cache write
// failures are ignored; the check itself still succeeds.
func CheckWithCache(ctx context.Context) (*Info, error) {
	if info := readCached(); info != nil {
		return info, nil
	}
	info, err := fetchLatest(ctx)
	if err != nil {
		return nil, err
	}
	_ = writeCache(info)
	return info, nil
}

func fetchLatest(ctx context.Context) (*Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "cubist/"+version.Version)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching latest release: status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
		HTMLURL string `json:"html_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := version.Version
	return &Info{
		LatestVersion:   latest,
		CurrentVersion:  current,
		ReleaseURL:      release.HTMLURL,
		CheckedAt:       time.Now(),
		UpdateAvailable: compareVersions(current, latest) < 0,
	}, nil
}

func cachePath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cubist", "release-check.json"), nil
}

// readCached returns the cached check when it is still fresh, nil
// otherwise. The current version is re-evaluated against the cached
// latest so a freshly upgraded binary reports correctly.
func readCached() *Info {
	path, err := cachePath()
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil
	}
	if time.Since(info.CheckedAt) >= cacheMaxAge {
		return nil
	}
	info.CurrentVersion = version.Version
	info.UpdateAvailable = compareVersions(info.CurrentVersion, info.LatestVersion) < 0
	return &info
}

func writeCache(info *Info) error {
	path, err := cachePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// compareVersions orders two release strings numerically per dotted
// component, returning -1, 0 or 1. Pre-release suffixes are stripped
// and a "dev" build always sorts newest.
func compareVersions(a, b string) int {
	a = strings.TrimPrefix(a, "v")
	b = strings.TrimPrefix(b, "v")
	if a == "dev" {
		return 1
	}
	if b == "dev" {
		return -1
	}

	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	for i := 0; i < max(len(pa), len(pb)); i++ {
		na, nb := 0, 0
		if i < len(pa) {
			base, _, _ := strings.Cut(pa[i], "-")
			na, _ = strconv.Atoi(base)
		}
		if i < len(pb) {
			base, _, _ := strings.Cut(pb[i], "-")
			nb, _ = strconv.Atoi(base)
		}
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
	}
	return 0
}
