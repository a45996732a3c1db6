// Package cache maps repository references to reusable working copies
// directories, and purges them.
package cache

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// DefaultRoot is where clones are kept, relative to the current directory
const DefaultRoot = ".cache/gh-pages"

var appFs = afero.NewOsFs()

// Encode turns a repository reference into a directory name. The encoding
// (unpadded base64url) is reversible and never yields path separators.
func Encode(repo string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(repo))
}

// Decode is the inverse of Encode
func Decode(name string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(name)
	if err != nil {
		return "", fmt.Errorf("%s isn't a cache entry: %v", name, err)
	}
	return string(b), nil
}

// Dir returns the working copy path for repo under root
func Dir(root, repo string) string {
	if root == "" {
		root = DefaultRoot
	}
	return filepath.Join(root, Encode(repo))
}

// List returns the repository references having a working copy under root
func List(root string) ([]string, error) {
	if root == "" {
		root = DefaultRoot
	}

	exists, err := afero.DirExists(appFs, root)
	if err != nil || !exists {
		return nil, err
	}

	entries, err := afero.ReadDir(appFs, root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %v", root, err)
	}

	var repos []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		repo, err := Decode(e.Name())
		if err != nil {
			continue
		}
		repos = append(repos, repo)
	}

	sort.Strings(repos)
	return repos, nil
}

// Clean removes every working copy under root, and returns the
// repository references they were cloned from.
func Clean(root string) ([]string, error) {
	if root == "" {
		root = DefaultRoot
	}

	repos, err := List(root)
	if err != nil {
		return nil, err
	}

	err = appFs.RemoveAll(root)
	if err != nil {
		return nil, fmt.Errorf("failed to remove %s: %v", root, err)
	}

	return repos, nil
}
