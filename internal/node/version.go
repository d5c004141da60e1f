package node

// Installation is a candidate Node.js runtime found by the Locator
type Installation struct {
	Version string // Directory name (e.g., "v20.11.1"); empty for the system runtime
	Root    string // Installation prefix
	Node    string // Path to the node executable
	Npm     string // Path to the npm executable
	System  bool   // Whether this was resolved from the executable search path
}

// BinDir returns the directory holding the installation's executables
func (i Installation) BinDir() string {
	return binDir(i.Root)
}

// Record holds the global package listing of one inspected installation
type Record struct {
	Version  string // "v20.11.1" or "system-v20.11.1"
	Root     string // Installation prefix
	Packages string // Trimmed output of "npm list -g --depth=0"
}
