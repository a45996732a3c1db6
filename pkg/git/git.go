package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var (
	// DefaultCmd is the git executable we'll use when none is provided
	DefaultCmd = "git"

	// DefaultRemote is the remote name used when none is provided
	DefaultRemote = "origin"
)

var appFs = afero.NewOsFs()

type logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

// Git runs git commands against one working directory
type Git struct {
	// Cwd is the working directory of every command
	Cwd string

	// Cmd is the git executable name or path
	Cmd string

	Logger logger
	Runner Runner

	// Rules are tried before DefaultRules when classifying failures
	Rules []Rule

	// Timeout bounds each command. Zero means no timeout.
	Timeout time.Duration
}

// CloneOptions tunes Clone
type CloneOptions struct {
	// Branch to clone. It may not exist yet on the remote.
	Branch string

	// Remote is the name given to the cloned repository
	Remote string

	// Depth makes a shallow clone when > 0
	Depth int

	// Tagging disables shallow clones: tags need the full history
	Tagging bool
}

// New returns a Git bound to cwd. cmd may be empty.
func New(log logger, cwd, cmd string) *Git {
	if cmd == "" {
		cmd = DefaultCmd
	}

	return &Git{
		Cwd:    cwd,
		Cmd:    cmd,
		Logger: log,
		Runner: DefaultRunner,
	}
}

// bind returns a copy of g working in dir
func (g *Git) bind(dir string) *Git {
	c := *g
	c.Cwd = dir
	return &c
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	g.Logger.Debugf("running %s %s in %s", g.Cmd, strings.Join(args, " "), g.Cwd)

	res, err := g.Runner.Run(ctx, g.Cwd, g.Cmd, args)
	if err != nil {
		cerr := &CommandError{
			Subcommand: args[0],
			Args:       args,
			ExitCode:   res.ExitCode,
			Stdout:     res.Stdout,
			Stderr:     res.Stderr,
			Err:        err,
		}
		cerr.Outcome = Classify(cerr, g.Rules)
		return "", cerr
	}

	return strings.TrimSpace(res.Stdout), nil
}

// Exec runs an arbitrary git subcommand and returns its trimmed output
func (g *Git) Exec(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("git: missing subcommand")
	}
	return g.run(ctx, args...)
}

// Clone clones repo into dir and returns a Git bound to dir. An existing,
// non empty dir is assumed to be a previous clone and is reused untouched.
func (g *Git) Clone(ctx context.Context, repo, dir string, opts CloneOptions) (*Git, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("can't find %s absolute path (broken cwd?): %v", dir, err)
	}

	if exists, _ := afero.DirExists(appFs, dir); exists {
		empty, err := afero.IsEmpty(appFs, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %v", dir, err)
		}
		if !empty {
			// without its own .git, commands would run in an enclosing repository
			if ok, _ := afero.Exists(appFs, filepath.Join(dir, ".git")); !ok {
				return nil, fmt.Errorf("%w: %s", ErrNotWorkingCopy, dir)
			}
			g.Logger.Debugf("reusing existing clone in %s", dir)
			return g.bind(dir), nil
		}
	}

	err = appFs.MkdirAll(filepath.Dir(dir), 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %v", filepath.Dir(dir), err)
	}

	remote := opts.Remote
	if remote == "" {
		remote = DefaultRemote
	}

	args := []string{"clone", repo, dir, "--branch", opts.Branch, "--single-branch", "--origin", remote}
	if opts.Depth > 0 && !opts.Tagging {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}

	_, err = g.run(ctx, args...)
	if err == nil {
		return g.bind(dir), nil
	}

	// the branch may not exist yet, or the remote may be empty
	g.Logger.Debugf("clone of branch %s failed (%v), retrying without branch", opts.Branch, err)
	_, err = g.run(ctx, "clone", repo, dir, "--origin", remote)
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s into %s: %w", repo, dir, err)
	}

	return g.bind(dir), nil
}

// RemoteURL returns the url configured for the named remote
func (g *Git) RemoteURL(ctx context.Context, remote string) (string, error) {
	url, err := g.run(ctx, "config", "--get", "remote."+remote+".url")
	if err != nil {
		return "", fmt.Errorf("%w: %s in %s: %w", ErrRemoteNotSet, remote, g.Cwd, err)
	}

	if url == "" {
		return "", fmt.Errorf("%w: %s in %s", ErrRemoteNotSet, remote, g.Cwd)
	}

	return url, nil
}

// Clean drops untracked files and uncommitted changes
func (g *Git) Clean(ctx context.Context) error {
	_, err := g.run(ctx, "clean", "-f", "-d")
	if err != nil {
		return err
	}

	// nothing to reset to on a fresh, empty clone
	if !g.hasRef(ctx, "HEAD") {
		return nil
	}

	_, err = g.run(ctx, "reset", "--hard")
	return err
}

// Fetch updates remote-tracking refs, without merging
func (g *Git) Fetch(ctx context.Context, remote string) error {
	_, err := g.run(ctx, "fetch", remote)
	return err
}

// Checkout makes branch the current branch, reset to remote/branch. When
// the remote branch doesn't exist yet, the branch is created as an orphan.
// The remote itself is asked, since a reused clone may only track other
// branches.
func (g *Git) Checkout(ctx context.Context, remote, branch string) error {
	treeish := remote + "/" + branch
	ref := "refs/heads/" + branch

	_, err := g.run(ctx, "ls-remote", "--exit-code", "--heads", remote, ref)
	switch {
	case err == nil:
		refspec := "+" + ref + ":refs/remotes/" + treeish
		if _, err = g.run(ctx, "fetch", remote, refspec); err != nil {
			return err
		}
		if _, err = g.run(ctx, "checkout", "--no-track", "-B", branch, treeish); err != nil {
			return err
		}
		if _, err = g.run(ctx, "clean", "-f", "-d"); err != nil {
			return err
		}
		_, err = g.run(ctx, "reset", "--hard", treeish)
		return err

	case IsOutcome(err, OutcomeMissingBranch):
		if g.hasRef(ctx, ref) {
			_, err = g.run(ctx, "checkout", branch)
			return err
		}
		g.Logger.Debugf("%s doesn't exist, creating an orphan branch", treeish)
		_, err = g.run(ctx, "checkout", "--orphan", branch)
		return err

	default:
		return err
	}
}

// Rm removes paths from both the index and the working tree. Paths
// matching nothing are ignored.
func (g *Git) Rm(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	args := append([]string{"rm", "--ignore-unmatch", "-r", "-f", "--"}, paths...)
	_, err := g.run(ctx, args...)
	if IsOutcome(err, OutcomeNoMatch) {
		return nil
	}

	return err
}

// Add stages paths
func (g *Git) Add(ctx context.Context, paths ...string) error {
	_, err := g.run(ctx, append([]string{"add"}, paths...)...)
	return err
}

// SetIdentity sets the working copy's committer name and email
func (g *Git) SetIdentity(ctx context.Context, name, email string) error {
	if _, err := g.run(ctx, "config", "user.email", email); err != nil {
		return err
	}

	_, err := g.run(ctx, "config", "user.name", name)
	return err
}

// Commit commits the staged changes. Having nothing to commit isn't an error.
func (g *Git) Commit(ctx context.Context, message string) error {
	_, err := g.run(ctx, "commit", "-m", message)
	if IsOutcome(err, OutcomeNothingToCommit) {
		g.Logger.Infof("Nothing to commit in %s", g.Cwd)
		return nil
	}

	return err
}

// Tag tags the current commit
func (g *Git) Tag(ctx context.Context, name string) error {
	_, err := g.run(ctx, "tag", name)
	return err
}

// Push force pushes branch and tags to remote
func (g *Git) Push(ctx context.Context, remote, branch string) error {
	_, err := g.run(ctx, "push", "--tags", "--force", remote, branch)
	return err
}

func (g *Git) hasRef(ctx context.Context, ref string) bool {
	_, err := g.run(ctx, "rev-parse", "--verify", "--quiet", ref)
	return err == nil
}
