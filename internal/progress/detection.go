package progress

import (
	"os"

	"golang.org/x/term"
)

// ciEnvs are set by common CI providers, where animated output only clutters logs
var ciEnvs = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"JENKINS_HOME",
	"BUILDKITE",
	"TF_BUILD",
}

// IsInteractive reports whether f is a terminal outside of CI, i.e. whether a spinner should be drawn on it
func IsInteractive(f *os.File) bool {
	if !IsTTY(f) {
		return false
	}

	for _, env := range ciEnvs {
		if os.Getenv(env) != "" {
			return false
		}
	}

	return true
}

// IsTTY checks if f is a terminal.
func IsTTY(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd is a small value, no overflow risk
}
