package engine

// PathGuard validates that a path belongs to a watched directory before tag
// operations accept it. The shell-integration layer supplies the real
// implementation.
type PathGuard interface {
	IsPathInsideWatchedDirectory(path string) bool
}

// TempResolver maps a temp-copy path (produced by external staging, e.g.
// "open in explorer" result sets) back to the original file. Tag operations
// accept either form transparently.
type TempResolver interface {
	ResolveOriginalPath(tempPath string) (string, bool)
}

// allowAllGuard accepts every path. Used when no shell integration is wired.
type allowAllGuard struct{}

func (allowAllGuard) IsPathInsideWatchedDirectory(string) bool { return true }

// identityResolver treats every path as already original.
type identityResolver struct{}

func (identityResolver) ResolveOriginalPath(string) (string, bool) { return "", false }
