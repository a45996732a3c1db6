// Package fileset selects the files to publish with glob patterns, and
// copies them into a working copy.
package fileset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// MaxParallelCopies bounds the number of files copied concurrently
var MaxParallelCopies = 8

// ErrBadPattern is returned for malformed glob patterns
var ErrBadPattern = errors.New("bad glob pattern")

// Select returns the sorted relative paths of the regular files under base
// matching any of patterns. Patterns use the doublestar syntax ("**/*.html");
// a leading "!" turns a pattern into an exclusion. Paths having a component
// starting with a dot are skipped unless dotfiles is set or the pattern names
// it with a leading dot (".nojekyll", ".well-known/*"). .git directories are
// never selected.
func Select(fs afero.Fs, base string, patterns []string, dotfiles bool) ([]string, error) {
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("can't find %s absolute path: %v", base, err)
	}

	var include, exclude []string
	for _, p := range patterns {
		p = filepath.ToSlash(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "!") {
			exclude = append(exclude, strings.TrimPrefix(p, "!"))
			continue
		}
		include = append(include, p)
	}

	for _, p := range append(include, exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
	}

	fsys := afero.NewIOFS(afero.NewBasePathFs(fs, base))
	selected := make(map[string]struct{})

	for _, p := range include {
		matches, err := doublestar.Glob(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("failed to match %q in %s: %v", p, base, err)
		}

		named := dotSegments(p)
		for _, m := range matches {
			if skipped(m, dotfiles, named) || excluded(m, exclude) {
				continue
			}

			info, err := fs.Stat(filepath.Join(base, filepath.FromSlash(m)))
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %v", m, err)
			}
			if info.IsDir() {
				continue
			}

			selected[filepath.FromSlash(m)] = struct{}{}
		}
	}

	files := make([]string, 0, len(selected))
	for f := range selected {
		files = append(files, f)
	}
	sort.Strings(files)

	return files, nil
}

func skipped(name string, dotfiles bool, named []string) bool {
	for _, part := range strings.Split(path.Clean(name), "/") {
		if part == ".git" {
			return true
		}
		if dotfiles || !isDot(part) {
			continue
		}
		if !matchesAny(part, named) {
			return true
		}
	}
	return false
}

func isDot(part string) bool {
	return strings.HasPrefix(part, ".") && part != "." && part != ".."
}

// dotSegments returns the pattern components starting with a dot
func dotSegments(pattern string) []string {
	var segs []string
	for _, seg := range strings.Split(pattern, "/") {
		if isDot(seg) {
			segs = append(segs, seg)
		}
	}
	return segs
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

func excluded(name string, patterns []string) bool {
	return matchesAny(name, patterns)
}

// Copy copies files (relative to src) into dst, keeping their relative
// location and mode. The first failure cancels the remaining copies.
func Copy(ctx context.Context, fs afero.Fs, files []string, src, dst string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxParallelCopies)

	for _, f := range files {
		f := f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return copyFile(fs, filepath.Join(src, f), filepath.Join(dst, f))
		})
	}

	return g.Wait()
}

func copyFile(fs afero.Fs, from, to string) error {
	dir := filepath.Clean(filepath.Dir(to))

	err := fs.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("can't create directory %s: %v", dir, err)
	}

	in, err := fs.Open(from)
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", from, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %v", from, err)
	}

	out, err := fs.OpenFile(to, os.O_RDWR|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", to, err)
	}

	_, err = io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s to %s: %v", from, to, err)
	}

	err = out.Close()
	if err != nil {
		return fmt.Errorf("failed to close %s: %v", to, err)
	}

	// an existing file keeps its old mode on open
	return fs.Chmod(to, info.Mode().Perm())
}
