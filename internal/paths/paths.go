package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"profilegen/internal/config"
)

// Layout captures canonical locations inside an installation root.
type Layout struct {
	Root           string
	LibrariesDir   string
	NativesRoot    string
	NativesTempDir string
	AssetsRoot     string
	ProfilesRoot   string
	LogsDir        string
}

// Resolve determines the installation root from the --root flag, falling back
// to the configured root. Relative roots are resolved against the working
// directory.
func Resolve(rootFlag string, cfg config.Config) (Layout, error) {
	root := strings.TrimSpace(rootFlag)
	if root == "" {
		root = strings.TrimSpace(cfg.Root)
	}
	if root == "" {
		root = config.Default().Root
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("resolve installation root: %w", err)
	}
	return New(abs), nil
}

// New builds the layout for root without touching the filesystem.
func New(root string) Layout {
	return Layout{
		Root:           root,
		LibrariesDir:   filepath.Join(root, "libraries"),
		NativesRoot:    filepath.Join(root, "natives"),
		NativesTempDir: filepath.Join(root, "natives_temp"),
		AssetsRoot:     filepath.Join(root, "assets"),
		ProfilesRoot:   filepath.Join(root, "profiles"),
		LogsDir:        filepath.Join(root, "logs"),
	}
}

// NativesDir is where unpacked natives for a game version live.
func (l Layout) NativesDir(version string) string {
	return filepath.Join(l.NativesRoot, version)
}

// AssetsDir is the asset tree for the given asset set name.
func (l Layout) AssetsDir(name string) string {
	return filepath.Join(l.AssetsRoot, name)
}

// AssetObjectsDir holds hashed asset objects, bucketed by the hash prefix.
func (l Layout) AssetObjectsDir(name, prefix string) string {
	return filepath.Join(l.AssetsDir(name), "objects", prefix)
}

// AssetIndexesDir holds downloaded asset index files.
func (l Layout) AssetIndexesDir(name string) string {
	return filepath.Join(l.AssetsDir(name), "indexes")
}

// ProfileDir holds the client archive and descriptors for one profile.
func (l Layout) ProfileDir(name string) string {
	return filepath.Join(l.ProfilesRoot, name)
}

// LibraryDir returns the directory a repository path should be stored under.
// An empty path maps to the flat libraries directory.
func (l Layout) LibraryDir(repoPath string) string {
	dir := filepath.Dir(filepath.FromSlash(repoPath))
	if repoPath == "" || dir == "." {
		return l.LibrariesDir
	}
	return filepath.Join(l.LibrariesDir, dir)
}

// EnsureDirs creates the per-run directory hierarchy for a profile.
func (l Layout) EnsureDirs(version, assetsName, profileName string) error {
	dirs := []string{
		l.NativesDir(version),
		l.AssetsDir(assetsName),
		l.ProfileDir(profileName),
		l.LibrariesDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
