package updater

import (
	"fmt"
	"io"
	"strings"

	"nvmlsg/internal/theme"

	"github.com/charmbracelet/huh"
	"github.com/creativeprojects/go-selfupdate"
)

// Actions offered by PromptForUpdate
const (
	ActionUpdate = "update"
	ActionSkip   = "skip"
	ActionLater  = "later"
)

// PromptForUpdate asks whether to install release now, skip it, or postpone
func (u *Updater) PromptForUpdate(release *selfupdate.Release) (string, error) {
	sizeMB := float64(release.AssetByteSize) / 1024 / 1024

	description := fmt.Sprintf(
		"Download size: %.1f MB\n\n%s",
		sizeMB,
		truncateChangelog(release.ReleaseNotes, 400),
	)

	var action string
	err := huh.NewSelect[string]().
		Title(theme.Subtitle.Render(fmt.Sprintf("nvmlsg update available: %s → %s", u.currentVersion, release.Version()))).
		Description(theme.Faint.Render(description)).
		Options(
			huh.NewOption(theme.SuccessStyle.Render("Update now"), ActionUpdate),
			huh.NewOption(theme.InfoStyle.Render("Skip this version"), ActionSkip),
			huh.NewOption(theme.WarningStyle.Render("Remind me later"), ActionLater),
		).
		Value(&action).
		Run()
	if err != nil {
		return "", err
	}

	if action == ActionSkip {
		if err := u.SkipVersion(release.Version()); err != nil {
			return action, fmt.Errorf("failed to save skip preference: %w", err)
		}
	}

	return action, nil
}

// ShowUpdateNotification prints a one-line hint about a newer release
func ShowUpdateNotification(w io.Writer, currentVersion, latestVersion string) {
	fmt.Fprintf(w, "\n%s Update available: %s → %s %s\n",
		theme.InfoStyle.Render("ℹ"),
		theme.Faint.Render(currentVersion),
		theme.CurrentStyle.Render(latestVersion),
		theme.Faint.Render("(run 'nvmlsg update')"))
}

// ShowUpdateSuccess displays success message after update
func ShowUpdateSuccess(w io.Writer, version string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.SuccessBox.Render(theme.SuccessStyle.Render("✓ Update Complete!")))
	fmt.Fprintf(w, "%s %s\n", theme.LabelStyle.Render("Version:"), theme.CurrentStyle.Render(version))
}

// ShowAlreadyUpToDate displays message when already on latest version
func ShowAlreadyUpToDate(w io.Writer, version string) {
	fmt.Fprintln(w, theme.SuccessMessage(fmt.Sprintf("You're already running the latest version (%s)", version)))
}

// truncateChangelog shortens release notes to at most maxLen bytes, breaking on a line or word
func truncateChangelog(changelog string, maxLen int) string {
	changelog = strings.TrimSpace(changelog)
	if changelog == "" {
		return "See release notes on GitHub for details."
	}

	if len(changelog) <= maxLen {
		return changelog
	}

	truncated := changelog[:maxLen]
	if idx := strings.LastIndex(truncated, "\n"); idx > maxLen/2 {
		truncated = truncated[:idx]
	} else if idx := strings.LastIndex(truncated, " "); idx > maxLen/2 {
		truncated = truncated[:idx]
	}

	return truncated + "..."
}
