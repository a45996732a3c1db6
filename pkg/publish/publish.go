// Package publish pushes the content of a local directory to a branch of a
// git repository, through a cached working copy of that repository.
//
// A publish is an ordered list of stages (clone, verify, clean, fetch,
// checkout, remove, copy, add, commit, tag, push) run over a shared state;
// the first failing stage stops the publish.
package publish

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/bpineau/ghpages/config"
	"github.com/bpineau/ghpages/pkg/cache"
	"github.com/bpineau/ghpages/pkg/fileset"
	"github.com/bpineau/ghpages/pkg/git"
)

var (
	// ErrNotDirectory is returned when the base path isn't a directory
	ErrNotDirectory = errors.New(`the "base" option must be an existing directory`)

	// ErrNoFiles is returned when the source patterns match nothing
	ErrNoFiles = errors.New(`the pattern in the "src" property didn't match any files`)

	// ErrSilenced replaces any publish error in silent mode
	ErrSilenced = errors.New("Unspecified error (run without silent option for detail)")
)

// RemoteMismatchError is returned when a reused working copy was cloned
// from another repository than the one we publish to.
type RemoteMismatchError struct {
	Got  string
	Want string
	Path string
}

func (e *RemoteMismatchError) Error() string {
	return fmt.Sprintf("remote url mismatch. Got %q but expected %q in %s. "+
		"Try running the `gh-pages clean` command first.", e.Got, e.Want, e.Path)
}

type logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Publisher publishes directories to git branches
type Publisher struct {
	Logger logger

	// Fs is used to select and copy files. Must be the OS filesystem
	// outside of tests, since git works on the real one.
	Fs afero.Fs

	// Git runs in the current directory. Working copies are derived from it.
	Git *git.Git

	// CacheDir holds working copies not given an explicit path
	CacheDir string

	// DryRun stops after files selection and repository resolution
	DryRun bool
}

// New returns a Publisher configured after conf
func New(conf *config.GhpConfig) *Publisher {
	g := git.New(conf.Logger, "", "")
	g.Timeout = conf.Timeout
	g.Rules = conf.Classifications

	return &Publisher{
		Logger:   conf.Logger,
		Fs:       afero.NewOsFs(),
		Git:      g,
		CacheDir: conf.CacheDir,
		DryRun:   conf.DryRun,
	}
}

// state is shared by the stages of a single publish
type state struct {
	base     string
	cfg      config.PublishConfig
	files    []string
	identity *config.User
	repo     string

	// local runs in the current directory, wc in the working copy
	local *git.Git
	wc    *git.Git
}

type stage struct {
	name string
	run  func(ctx context.Context, st *state) error

	// skip, when set, tells if the stage is irrelevant for this publish
	skip func(st *state) bool

	// mutates stages are skipped in dry-run mode
	mutates bool
}

func (p *Publisher) stages() []stage {
	return []stage{
		{name: "validate", run: p.validate},
		{name: "resolve repository", run: p.resolveRepo},
		{name: "clone", run: p.clone, mutates: true},
		{name: "verify remote", run: p.verifyRemote, mutates: true},
		{name: "clean", run: p.clean, mutates: true},
		{name: "fetch", run: p.fetch, mutates: true},
		{name: "checkout", run: p.checkout, mutates: true},
		{name: "remove files", run: p.removeStale, mutates: true,
			skip: func(st *state) bool { return st.cfg.Add }},
		{name: "copy files", run: p.copyFiles, mutates: true},
		{name: "add", run: p.stageAll, mutates: true},
		{name: "configure identity", run: p.configureIdentity, mutates: true},
		{name: "commit", run: p.commit, mutates: true},
		{name: "tag", run: p.tag, mutates: true,
			skip: func(st *state) bool { return st.cfg.Tag == "" }},
		{name: "push", run: p.push, mutates: true,
			skip: func(st *state) bool { return st.cfg.NoPush }},
	}
}

// Run publishes the files of base according to cfg. cfg may hold only the
// overridden options: defaults are applied to it.
func (p *Publisher) Run(ctx context.Context, base string, cfg config.PublishConfig) error {
	cfg, err := config.NewPublishConfig(cfg)
	if err != nil {
		return err
	}

	st := &state{base: base, cfg: cfg}

	for _, s := range p.stages() {
		if s.mutates && p.DryRun {
			continue
		}

		if s.skip != nil && s.skip(st) {
			p.Logger.Debugf("Skipping %s", s.name)
			continue
		}

		err = s.run(ctx, st)
		if err != nil {
			p.Logger.Debugf("%s failed: %v", s.name, err)
			return err
		}
	}

	if p.DryRun {
		p.Logger.Infof("Dry run: would publish %d files from %s to branch %s of %s",
			len(st.files), st.base, st.cfg.Branch, st.repo)
	}

	return nil
}

// Publish runs a publish and calls done exactly once with its outcome. In
// silent mode, failures are reported as ErrSilenced; details are only
// logged at debug level.
func (p *Publisher) Publish(ctx context.Context, base string, cfg config.PublishConfig, done func(error)) {
	err := p.Run(ctx, base, cfg)
	if err != nil && cfg.Silent {
		p.Logger.Debugf("Publish failed: %v", err)
		err = ErrSilenced
	}

	if done == nil {
		if err != nil {
			p.Logger.Errorf("%v", err)
		}
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.Logger.Errorf("Publish callback panicked: %v", r)
		}
	}()

	done(err)
}

func (p *Publisher) validate(ctx context.Context, st *state) error {
	info, err := p.Fs.Stat(st.base)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotDirectory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, st.base)
	}

	st.files, err = fileset.Select(p.Fs, st.base, st.cfg.Src, st.cfg.Dotfiles)
	if err != nil {
		return err
	}
	if len(st.files) == 0 {
		return ErrNoFiles
	}
	p.Logger.Debugf("Selected %d files in %s", len(st.files), st.base)

	st.identity, err = st.cfg.Identity()
	return err
}

func (p *Publisher) resolveRepo(ctx context.Context, st *state) error {
	local := *p.Git
	local.Cmd = st.cfg.Git
	st.local = &local

	repo := st.cfg.Repo
	if repo == "" {
		url, err := st.local.RemoteURL(ctx, st.cfg.Remote)
		if err != nil {
			return fmt.Errorf("failed to get repo URL from options or current directory: %w", err)
		}
		repo = url
	}

	// git records local repositories with their absolute path
	if isDir, _ := afero.DirExists(p.Fs, repo); isDir {
		abs, err := filepath.Abs(repo)
		if err != nil {
			return fmt.Errorf("can't find %s absolute path: %v", repo, err)
		}
		repo = abs
	}

	st.repo = repo
	return nil
}

func (p *Publisher) clone(ctx context.Context, st *state) error {
	dir := st.cfg.Clone
	if dir == "" {
		dir = cache.Dir(p.CacheDir, st.repo)
	}

	p.Logger.Infof("Cloning into %s", dir)
	p.Logger.Debugf("Cloning %s into %s", st.repo, dir)

	wc, err := st.local.Clone(ctx, st.repo, dir, git.CloneOptions{
		Branch:  st.cfg.Branch,
		Remote:  st.cfg.Remote,
		Depth:   st.cfg.CloneDepth(),
		Tagging: st.cfg.Tag != "",
	})
	if errors.Is(err, git.ErrNotWorkingCopy) {
		return fmt.Errorf("%w. Remove it, or try running the `gh-pages clean` command first", err)
	}
	if err != nil {
		return err
	}

	st.wc = wc
	return nil
}

func (p *Publisher) verifyRemote(ctx context.Context, st *state) error {
	url, err := st.wc.RemoteURL(ctx, st.cfg.Remote)
	if err != nil {
		return err
	}

	if url != st.repo {
		return &RemoteMismatchError{Got: url, Want: st.repo, Path: st.wc.Cwd}
	}

	return nil
}

func (p *Publisher) clean(ctx context.Context, st *state) error {
	// only required if someone mucks with the checkout between runs
	p.Logger.Infof("Cleaning")
	return st.wc.Clean(ctx)
}

func (p *Publisher) fetch(ctx context.Context, st *state) error {
	p.Logger.Infof("Fetching %s", st.cfg.Remote)
	return st.wc.Fetch(ctx, st.cfg.Remote)
}

func (p *Publisher) checkout(ctx context.Context, st *state) error {
	p.Logger.Infof("Checking out %s/%s", st.cfg.Remote, st.cfg.Branch)
	return st.wc.Checkout(ctx, st.cfg.Remote, st.cfg.Branch)
}

func (p *Publisher) removeStale(ctx context.Context, st *state) error {
	p.Logger.Infof("Removing files")

	if st.cfg.Only == "." {
		return st.wc.Rm(ctx, st.cfg.Dest)
	}

	dest := filepath.Join(st.wc.Cwd, st.cfg.Dest)
	matches, err := fileset.Select(p.Fs, dest, []string{st.cfg.Only}, true)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(st.cfg.Dest, m))
	}

	return st.wc.Rm(ctx, paths...)
}

func (p *Publisher) copyFiles(ctx context.Context, st *state) error {
	p.Logger.Infof("Copying files")
	return fileset.Copy(ctx, p.Fs, st.files, st.base, filepath.Join(st.wc.Cwd, st.cfg.Dest))
}

func (p *Publisher) stageAll(ctx context.Context, st *state) error {
	p.Logger.Infof("Adding all")
	return st.wc.Add(ctx, ".")
}

func (p *Publisher) configureIdentity(ctx context.Context, st *state) error {
	user := st.identity

	if user == nil && st.cfg.LocalUser {
		name, err := st.local.Exec(ctx, "config", "user.name")
		if err != nil {
			return fmt.Errorf("failed to read local user.name: %w", err)
		}
		email, err := st.local.Exec(ctx, "config", "user.email")
		if err != nil {
			return fmt.Errorf("failed to read local user.email: %w", err)
		}
		user = &config.User{Name: name, Email: email}
	}

	if user == nil {
		return nil
	}

	p.Logger.Debugf("Committing as %s <%s>", user.Name, user.Email)
	return st.wc.SetIdentity(ctx, user.Name, user.Email)
}

func (p *Publisher) commit(ctx context.Context, st *state) error {
	p.Logger.Infof("Committing")
	return st.wc.Commit(ctx, st.cfg.Message)
}

func (p *Publisher) tag(ctx context.Context, st *state) error {
	p.Logger.Infof("Tagging %s", st.cfg.Tag)

	err := st.wc.Tag(ctx, st.cfg.Tag)
	switch {
	case err == nil:
	case git.IsOutcome(err, git.OutcomeTagExists):
		p.Logger.Infof("Tag %s already exists, continuing", st.cfg.Tag)
	default:
		p.Logger.Warnf("Tagging failed, continuing: %v", err)
	}

	return nil
}

func (p *Publisher) push(ctx context.Context, st *state) error {
	p.Logger.Infof("Pushing to %s/%s", st.cfg.Remote, st.cfg.Branch)
	return st.wc.Push(ctx, st.cfg.Remote, st.cfg.Branch)
}
