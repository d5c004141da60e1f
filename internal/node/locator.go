package node

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"golang.org/x/sys/execabs"
)

// versionDirPattern matches nvm installation directories like "v20.11.1"
var versionDirPattern = regexp.MustCompile(`^v\d+(\.\d+)*`)

// Locator finds Node.js installations managed by nvm, or the system runtime
type Locator struct {
	nvmDir   string
	lookPath func(file string) (string, error)
}

// NewLocator creates a Locator rooted at the given nvm directory.
// An empty nvmDir falls back to $NVM_DIR, then ~/.nvm.
func NewLocator(nvmDir string) *Locator {
	if nvmDir == "" {
		nvmDir = DefaultNvmDir()
	}
	return &Locator{
		nvmDir:   filepath.Clean(nvmDir),
		lookPath: execabs.LookPath,
	}
}

// DefaultNvmDir returns $NVM_DIR when set, otherwise ~/.nvm
func DefaultNvmDir() string {
	if dir := os.Getenv("NVM_DIR"); dir != "" {
		return dir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".nvm")
}

// VersionsDir returns the directory holding one subdirectory per installed version
func (l *Locator) VersionsDir() string {
	return filepath.Join(l.nvmDir, "versions", "node")
}

// Installations lists nvm-managed installations sorted by directory name.
// A missing versions directory yields an empty slice, not an error.
func (l *Locator) Installations() ([]Installation, error) {
	versionsDir := l.VersionsDir()

	entries, err := os.ReadDir(versionsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Installation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", versionsDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !IsVersionDirName(entry.Name()) {
			continue
		}

		// Stat follows symlinks so a link to a directory still qualifies
		info, err := os.Stat(filepath.Join(versionsDir, entry.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	installations := make([]Installation, 0, len(names))
	for _, name := range names {
		root := filepath.Join(versionsDir, name)
		installations = append(installations, Installation{
			Version: name,
			Root:    root,
			Node:    filepath.Join(binDir(root), "node"),
			Npm:     filepath.Join(binDir(root), "npm"),
		})
	}

	return installations, nil
}

// System resolves node and npm from the executable search path.
// ok is false when either one cannot be found.
func (l *Locator) System() (inst Installation, ok bool) {
	nodePath, err := l.lookPath("node")
	if err != nil || nodePath == "" {
		return Installation{}, false
	}
	npmPath, err := l.lookPath("npm")
	if err != nil || npmPath == "" {
		return Installation{}, false
	}

	return Installation{
		Root:   filepath.Dir(filepath.Dir(nodePath)),
		Node:   nodePath,
		Npm:    npmPath,
		System: true,
	}, true
}

// IsVersionDirName checks if a directory name follows nvm's version tag convention
func IsVersionDirName(name string) bool {
	return versionDirPattern.MatchString(name)
}

func binDir(root string) string {
	return filepath.Join(root, "bin")
}
