// Package config holds the publisher configuration: process wide settings
// (GhpConfig) and the options of one publish (PublishConfig).
package config

import (
	"errors"
	"fmt"
	"net/mail"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/sirupsen/logrus"

	"github.com/bpineau/ghpages/pkg/cache"
	"github.com/bpineau/ghpages/pkg/git"
)

var (
	// ErrInvalidAuthor is returned for author strings we can't parse
	ErrInvalidAuthor = errors.New("the author is invalid")

	// ErrInvalidUser is returned for incomplete explicit identities
	ErrInvalidUser = errors.New("the user is invalid")
)

// GhpConfig is the process wide configuration, passed to the publisher
type GhpConfig struct {
	// When DryRun is true, we compute and log what would be published, but
	// don't run any git command
	DryRun bool

	// Logger should be used to send all logs
	Logger *logrus.Logger

	// CacheDir is where working copies are kept between runs
	CacheDir string

	// Timeout bounds each git command. Zero means no timeout.
	Timeout time.Duration

	// Classifications extends the builtin git failures classification table
	Classifications []git.Rule
}

// Init validates the configuration and resolves the cache directory
func (c *GhpConfig) Init() error {
	if c.CacheDir == "" {
		c.CacheDir = cache.DefaultRoot
	}

	dir, err := filepath.Abs(c.CacheDir)
	if err != nil {
		return fmt.Errorf("can't find cache dir absolute path (broken cwd?): %v", err)
	}
	c.CacheDir = dir

	for _, r := range c.Classifications {
		switch r.Outcome {
		case git.OutcomeFailed, git.OutcomeNothingToCommit, git.OutcomeTagExists,
			git.OutcomeNoMatch, git.OutcomeMissingBranch:
		default:
			return fmt.Errorf("unknown outcome %q in classification rule for %q", r.Outcome, r.Subcommand)
		}
		if r.Subcommand == "" {
			return fmt.Errorf("classification rule without subcommand (outcome %q)", r.Outcome)
		}
	}

	return nil
}

// User is an explicit commit identity
type User struct {
	Name  string
	Email string
}

// PublishConfig holds the options of one publish. Build it with
// NewPublishConfig, and don't modify it afterwards.
type PublishConfig struct {
	// Dest is the target directory, relative to the working copy root
	Dest string

	// Add only adds and updates files, never removing published ones
	Add bool

	// Src selects the files to publish (glob patterns, relative to the base)
	Src []string

	// Only selects what is removed before copying. It is matched against
	// the previously published files, in Dest inside the working copy, not
	// against the source directory. "." means the whole Dest directory.
	Only string

	Branch  string
	Remote  string
	Message string

	// Tag is created on the published commit when set
	Tag string

	// NoPush stops after the local commit
	NoPush bool

	// Dotfiles includes files and directories starting with a dot
	Dotfiles bool

	// User, Author and LocalUser set the commit identity, by precedence
	User      *User
	Author    string
	LocalUser bool

	// Silent hides errors details (remote urls, credentials...)
	Silent bool

	// Depth is the clone depth. Zero means the default, negative means
	// the full history.
	Depth int

	// Clone is the working copy path. Derived from Repo when empty.
	Clone string

	// Repo is the repository to publish to. When empty, we use the url of
	// Remote in the current directory repository.
	Repo string

	// Git is the git executable
	Git string
}

// Defaults returns the options used for everything not overridden
func Defaults() PublishConfig {
	return PublishConfig{
		Dest:    ".",
		Src:     []string{"**/*"},
		Only:    ".",
		Branch:  "gh-pages",
		Remote:  "origin",
		Message: "Updates",
		Depth:   1,
		Git:     "git",
	}
}

// NewPublishConfig merges overrides onto Defaults()
func NewPublishConfig(overrides PublishConfig) (PublishConfig, error) {
	cfg := overrides
	cfg.Src = append([]string(nil), overrides.Src...)

	err := mergo.Merge(&cfg, Defaults())
	if err != nil {
		return PublishConfig{}, fmt.Errorf("failed to apply default options: %v", err)
	}

	return cfg, nil
}

// CloneDepth returns the depth to clone with, 0 meaning full history
func (c PublishConfig) CloneDepth() int {
	if c.Depth < 0 {
		return 0
	}
	return c.Depth
}

// Identity returns the explicit commit identity, if any. An explicit User
// takes precedence over an Author string. LocalUser isn't resolved here.
func (c PublishConfig) Identity() (*User, error) {
	if c.User != nil {
		if c.User.Name == "" || c.User.Email == "" {
			return nil, fmt.Errorf("%w: both name and email are required", ErrInvalidUser)
		}
		return c.User, nil
	}

	if c.Author != "" {
		return ParseAuthor(c.Author)
	}

	return nil, nil
}

// ParseAuthor parses an RFC 5322 address like "Author Name <author@address.com>"
func ParseAuthor(author string) (*User, error) {
	addr, err := mail.ParseAddress(author)
	if err != nil || addr.Name == "" {
		return nil, fmt.Errorf("%w: %q (must be RFC 5322 format like \"Author Name <author@address.com>\")",
			ErrInvalidAuthor, author)
	}

	return &User{Name: addr.Name, Email: addr.Address}, nil
}
