package question

import (
	"os"
	"path/filepath"
	"strings"
)

// Assets resolves image references against a root directory.
type Assets struct {
	root string
}

// NewAssets returns a resolver rooted at root ("." when empty).
func NewAssets(root string) *Assets {
	if root == "" {
		root = "."
	}
	return &Assets{root: filepath.Clean(root)}
}

// Root returns the image root directory.
func (a *Assets) Root() string { return a.root }

// Resolve returns the on-disk path of an image reference and checks that it
// exists. Absolute paths and paths already under the root are used as given.
func (a *Assets) Resolve(imagePath string) (string, error) {
	if strings.TrimSpace(imagePath) == "" {
		return "", ErrNoImage
	}
	full := a.join(imagePath)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", &MissingAssetError{Path: imagePath}
	}
	return full, nil
}

// Rel returns the reference relative to the root, slash separated, for URLs.
// ok is false when the path escapes the root.
func (a *Assets) Rel(imagePath string) (string, bool) {
	rel, err := filepath.Rel(a.root, a.join(imagePath))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (a *Assets) join(imagePath string) string {
	p := filepath.Clean(filepath.FromSlash(imagePath))
	if filepath.IsAbs(p) {
		return p
	}
	if a.root != "." && (p == a.root || strings.HasPrefix(p, a.root+string(filepath.Separator))) {
		return p
	}
	return filepath.Join(a.root, p)
}
