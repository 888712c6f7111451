package buildinfo

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Set at build time with -ldflags "-X github.com/NeverVane/histpick/internal/buildinfo.Version=..."
var (
	Version = "0.1.0"
	Commit  = "dev"
	Date    = "unknown"
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version" yaml:"version" toml:"version"`
	Commit    string `json:"commit" yaml:"commit" toml:"commit"`
	Date      string `json:"date" yaml:"date" toml:"date"`
	GoVersion string `json:"go_version" yaml:"go_version" toml:"go_version"`
	Platform  string `json:"platform" yaml:"platform" toml:"platform"`
	Stable    bool   `json:"stable" yaml:"stable" toml:"stable"`
}

// Get returns build information, validating the embedded version string
func Get() (*Info, error) {
	v, err := Parse(Version)
	if err != nil {
		return nil, err
	}

	return &Info{
		Version:   v.String(),
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Stable:    v.Major() > 0 && v.Prerelease() == "",
	}, nil
}

// Parse parses a version string, accepting an optional leading "v"
func Parse(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("invalid build version %q: %w", version, err)
	}
	return v, nil
}

// String renders a one-line version description
func (i *Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s %s)", i.Version, i.Commit, i.Date, i.GoVersion, i.Platform)
}
