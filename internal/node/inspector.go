package node

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrNoInstallation is returned when neither nvm nor the system provides a usable runtime
	ErrNoInstallation = errors.New("no Node.js installation found")

	// ErrMissingExecutable is reported when an installation lacks bin/node or bin/npm
	ErrMissingExecutable = errors.New("missing node or npm executable")

	// ErrEmptyListing is reported when npm exits cleanly but prints nothing
	ErrEmptyListing = errors.New("npm returned an empty listing")
)

// listArgs asks npm for direct global installs only
var listArgs = []string{"list", "-g", "--depth=0"}

// Progress receives status text while installations are scanned
type Progress interface {
	Status(msg string)
}

// WarnFunc is called for every installation that is skipped
type WarnFunc func(version string, err error)

// Inspector lists global npm packages for each installation, one at a time
type Inspector struct {
	locator  *Locator
	runner   Runner
	progress Progress
	warn     WarnFunc
	environ  func() []string
}

// NewInspector creates an Inspector that runs commands through runner
func NewInspector(locator *Locator, runner Runner) *Inspector {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Inspector{
		locator: locator,
		runner:  runner,
		environ: os.Environ,
	}
}

// WithProgress sets the status receiver
func (in *Inspector) WithProgress(p Progress) *Inspector {
	in.progress = p
	return in
}

// WithWarnings sets the callback for skipped installations
func (in *Inspector) WithWarnings(fn WarnFunc) *Inspector {
	in.warn = fn
	return in
}

// ListAll inspects every nvm installation in order and falls back to the
// system runtime when none of them produced a listing.
func (in *Inspector) ListAll(ctx context.Context) ([]Record, error) {
	in.status("Discovering nvm Node.js versions...")

	installations, err := in.locator.Installations()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(installations))
	for _, inst := range installations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		in.status(fmt.Sprintf("Scanning %s for global packages...", inst.Version))

		rec, err := in.Inspect(ctx, inst)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			in.warning(inst.Version, err)
			continue
		}
		records = append(records, rec)
	}

	if len(records) > 0 {
		return records, nil
	}

	in.status("Checking system Node.js installation...")

	system, ok := in.locator.System()
	if !ok {
		return nil, ErrNoInstallation
	}

	in.status("Scanning system Node.js for global packages...")

	rec, err := in.InspectSystem(ctx, system)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrNoInstallation, err)
	}

	return []Record{rec}, nil
}

// Inspect lists the global packages of one nvm installation. The npm call is
// pinned to the installation's own prefix so another active version cannot leak in.
func (in *Inspector) Inspect(ctx context.Context, inst Installation) (Record, error) {
	if !fileExists(inst.Node) || !fileExists(inst.Npm) {
		return Record{}, fmt.Errorf("%w in %s", ErrMissingExecutable, inst.BinDir())
	}

	cmd := Command{
		Path: inst.Npm,
		Args: append(append([]string{}, listArgs...), "--prefix="+inst.Root),
		Dir:  inst.Root,
		Env:  InstallationEnv(in.environ(), inst),
	}

	out, err := in.runner.Run(ctx, cmd)
	if err != nil {
		return Record{}, err
	}

	packages := strings.TrimSpace(out)
	if packages == "" {
		return Record{}, ErrEmptyListing
	}

	return Record{
		Version:  inst.Version,
		Root:     inst.Root,
		Packages: packages,
	}, nil
}

// InspectSystem lists the global packages of the system runtime using the
// ambient environment and labels the record with "system-<node --version>".
func (in *Inspector) InspectSystem(ctx context.Context, inst Installation) (Record, error) {
	out, err := in.runner.Run(ctx, Command{Path: inst.Npm, Args: listArgs})
	if err != nil {
		return Record{}, err
	}

	packages := strings.TrimSpace(out)
	if packages == "" {
		return Record{}, ErrEmptyListing
	}

	version, err := in.runner.Run(ctx, Command{Path: inst.Node, Args: []string{"--version"}})
	if err != nil {
		return Record{}, err
	}

	return Record{
		Version:  "system-" + strings.TrimSpace(version),
		Root:     inst.Root,
		Packages: packages,
	}, nil
}

// InstallationEnv derives the child environment for an nvm installation:
// its bin directory is prepended to PATH and npm's prefix and NODE_PATH point inside it.
func InstallationEnv(base []string, inst Installation) []string {
	path := lookupEnv(base, "PATH")
	if path != "" {
		path = inst.BinDir() + string(os.PathListSeparator) + path
	} else {
		path = inst.BinDir()
	}

	return mergeEnv(base, [][2]string{
		{"PATH", path},
		{"NODE_PATH", filepath.Join(inst.Root, "lib", "node_modules")},
		{"NPM_CONFIG_PREFIX", inst.Root},
	})
}

// mergeEnv replaces or appends the given key/value pairs, keeping base order otherwise
func mergeEnv(base []string, overrides [][2]string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		overridden := false
		for _, o := range overrides {
			if envKeyEqual(key, o[0]) {
				overridden = true
				break
			}
		}
		if !overridden {
			env = append(env, kv)
		}
	}
	for _, o := range overrides {
		env = append(env, o[0]+"="+o[1])
	}
	return env
}

func lookupEnv(env []string, key string) string {
	value := ""
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if ok && envKeyEqual(k, key) {
			value = v
		}
	}
	return value
}

// envKeyEqual compares variable names, case-insensitively on Windows ("Path" vs "PATH")
func envKeyEqual(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (in *Inspector) status(msg string) {
	if in.progress != nil {
		in.progress.Status(msg)
	}
}

func (in *Inspector) warning(version string, err error) {
	if in.warn != nil {
		in.warn(version, err)
	}
}
