// Package git drives the git command on behalf of a working copy: clone,
// fetch, checkout, clean, rm, add, commit, tag and push.
//
// It requires the git command in $PATH (or the executable named by Git.Cmd).
// git's exit codes and messages are translated into CommandError values,
// and the few failures that are expected during a publish ("nothing to
// commit", "tag already exists", ...) are recognized by a rules table in
// classify.go rather than by ad hoc string matching in callers.
package git
