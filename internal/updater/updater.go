package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"nvmlsg/internal/config"
	"nvmlsg/internal/theme"

	"github.com/creativeprojects/go-selfupdate"
)

const (
	// CheckInterval is minimum time between automatic update checks
	CheckInterval = 24 * time.Hour

	// UpdateTimeout is maximum time for update operations
	UpdateTimeout = 5 * time.Minute

	// checksumFile is the release asset listing SHA256 sums of every binary
	checksumFile = "SHA256SUMS.txt"

	devVersion = "dev"
)

var (
	// ErrDisabled is returned when updates are turned off in the config file
	ErrDisabled = errors.New("updates are disabled in configuration")

	// ErrNoRepository is returned when update.repository is not set
	ErrNoRepository = errors.New("no release repository configured")

	// ErrDevelopmentBuild is returned when the running binary carries no release version
	ErrDevelopmentBuild = errors.New("development builds cannot be updated")
)

// Updater finds nvmlsg releases in the configured repository and installs them
// over the running binary.
type Updater struct {
	config         *config.Config
	currentVersion string

	releases   *selfupdate.Updater
	source     selfupdate.Source
	out        io.Writer
	executable func() (string, error)
}

// Option customizes an Updater
type Option func(*Updater)

// WithSource replaces the GitHub release source
func WithSource(src selfupdate.Source) Option {
	return func(u *Updater) { u.source = src }
}

// WithOutput sets where non-fatal warnings are written
func WithOutput(w io.Writer) Option {
	return func(u *Updater) { u.out = w }
}

// WithExecutable overrides how the path of the binary to replace is found
func WithExecutable(fn func() (string, error)) Option {
	return func(u *Updater) { u.executable = fn }
}

// NewUpdater returns an Updater for cfg, or ErrDisabled / ErrNoRepository
// when the configuration does not allow updating.
func NewUpdater(cfg *config.Config, version string, opts ...Option) (*Updater, error) {
	if !cfg.UpdateConfig.Enabled {
		return nil, ErrDisabled
	}
	if strings.TrimSpace(cfg.UpdateConfig.Repository) == "" {
		return nil, ErrNoRepository
	}

	u := &Updater{
		config:         cfg,
		currentVersion: cleanVersion(version),
		out:            io.Discard,
		executable:     runningExecutable,
	}
	for _, opt := range opts {
		opt(u)
	}

	releases, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:    u.source,
		Validator: &selfupdate.ChecksumValidator{UniqueFilename: checksumFile},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}
	u.releases = releases

	return u, nil
}

// CurrentVersion returns the running version without its "v" prefix
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}

// ShouldCheckForUpdate reports whether an automatic check is due
func (u *Updater) ShouldCheckForUpdate() bool {
	return shouldCheck(u.config.UpdateConfig, u.currentVersion, time.Now())
}

func shouldCheck(uc config.UpdateConfig, currentVersion string, now time.Time) bool {
	if !uc.Enabled || !uc.AutoCheck {
		return false
	}
	if isDevelopment(currentVersion) {
		return false
	}
	return now.Sub(uc.LastCheck) >= CheckInterval
}

// CheckForUpdate looks up the latest release for this platform.
// It returns nil when that release is not newer than the running one or was skipped.
func (u *Updater) CheckForUpdate(ctx context.Context) (*selfupdate.Release, error) {
	if isDevelopment(u.currentVersion) {
		return nil, ErrDevelopmentBuild
	}

	repo := u.config.UpdateConfig.Repository
	latest, found, err := u.releases.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil {
		return nil, fmt.Errorf("failed to query releases of %s: %w", repo, err)
	}
	if !found {
		return nil, fmt.Errorf("no %s/%s release with %s found in %s", runtime.GOOS, runtime.GOARCH, checksumFile, repo)
	}

	u.recordCheck(time.Now())

	if !u.offers(latest) {
		return nil, nil
	}
	return latest, nil
}

func (u *Updater) offers(latest *selfupdate.Release) bool {
	if latest.Version() == u.config.UpdateConfig.SkipVersion {
		return false
	}
	return latest.GreaterThan(u.currentVersion)
}

// recordCheck stores the check time so auto_check waits a full interval.
// A config that cannot be written only costs an extra check next run.
func (u *Updater) recordCheck(now time.Time) {
	u.config.UpdateConfig.LastCheck = now
	if err := u.config.Save(); err != nil {
		fmt.Fprintln(u.out, theme.WarningMessage("Could not save last update check: "+err.Error()))
	}
}

// PerformUpdate downloads release, verifies it against SHA256SUMS.txt and
// swaps it in for the running binary. The old binary is restored if the swap fails.
func (u *Updater) PerformUpdate(ctx context.Context, release *selfupdate.Release) error {
	exe, err := u.executable()
	if err != nil {
		return fmt.Errorf("failed to determine executable path: %w", err)
	}

	if err := u.releases.UpdateTo(ctx, release, exe); err != nil {
		return fmt.Errorf("failed to install nvmlsg %s: %w", release.Version(), err)
	}
	return nil
}

// SkipVersion marks a version as skipped by the user
func (u *Updater) SkipVersion(version string) error {
	u.config.UpdateConfig.SkipVersion = version
	return u.config.Save()
}

func runningExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}

func isDevelopment(version string) bool {
	return version == "" || version == devVersion
}

// cleanVersion removes 'v' prefix if present for consistent comparison
func cleanVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}
