package git

import "strings"

// Outcome tags a failed git command with what the failure actually means.
type Outcome string

const (
	// OutcomeFailed is a genuine failure
	OutcomeFailed Outcome = "failed"

	// OutcomeNothingToCommit means the index matches HEAD
	OutcomeNothingToCommit Outcome = "nothing-to-commit"

	// OutcomeTagExists means the requested tag name is already taken
	OutcomeTagExists Outcome = "tag-exists"

	// OutcomeNoMatch means a pathspec matched no file
	OutcomeNoMatch Outcome = "no-match"

	// OutcomeMissingBranch means the requested branch doesn't exist remotely
	OutcomeMissingBranch Outcome = "missing-branch"
)

// Rule maps a (subcommand, exit code, output substring) triple to an Outcome.
// A zero ExitCode matches any non-zero exit code, and an empty Contains
// matches any output.
type Rule struct {
	Subcommand string  `mapstructure:"subcommand"`
	ExitCode   int     `mapstructure:"exit-code"`
	Contains   string  `mapstructure:"contains"`
	Outcome    Outcome `mapstructure:"outcome"`
}

// DefaultRules holds the messages emitted by current git releases.
var DefaultRules = []Rule{
	{Subcommand: "commit", ExitCode: 1, Contains: "nothing to commit", Outcome: OutcomeNothingToCommit},
	{Subcommand: "commit", ExitCode: 1, Contains: "nothing added to commit", Outcome: OutcomeNothingToCommit},
	{Subcommand: "commit", ExitCode: 1, Contains: "no changes added to commit", Outcome: OutcomeNothingToCommit},
	{Subcommand: "tag", Contains: "already exists", Outcome: OutcomeTagExists},
	{Subcommand: "rm", Contains: "did not match any files", Outcome: OutcomeNoMatch},
	{Subcommand: "ls-remote", ExitCode: 2, Outcome: OutcomeMissingBranch},
	{Subcommand: "clone", Contains: "not found in upstream", Outcome: OutcomeMissingBranch},
}

func (r Rule) matches(e *CommandError) bool {
	if !strings.EqualFold(r.Subcommand, e.Subcommand) {
		return false
	}

	if r.ExitCode != 0 && r.ExitCode != e.ExitCode {
		return false
	}

	if r.Contains == "" {
		return true
	}

	needle := strings.ToLower(r.Contains)
	return strings.Contains(strings.ToLower(e.Stderr), needle) ||
		strings.Contains(strings.ToLower(e.Stdout), needle)
}

// Classify returns the Outcome of the first matching rule. extra rules are
// tried before DefaultRules, so a config file can override the builtins.
func Classify(e *CommandError, extra []Rule) Outcome {
	if e == nil {
		return OutcomeFailed
	}

	for _, rules := range [][]Rule{extra, DefaultRules} {
		for _, r := range rules {
			if r.matches(e) {
				return r.Outcome
			}
		}
	}

	return OutcomeFailed
}
