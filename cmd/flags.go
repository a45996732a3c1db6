package cmd

import (
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bpineau/ghpages/config"
	"github.com/bpineau/ghpages/pkg/cache"
)

var cfgFile string

func bindPFlag(flags *pflag.FlagSet, key string, cmd string) {
	if err := viper.BindPFlag(key, flags.Lookup(cmd)); err != nil {
		log.Fatal("Failed to bind cli argument:", err)
	}
}

func init() {
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(cleanCmd)

	// settings shared by all subcommands
	pf := RootCmd.PersistentFlags()

	defaultCfg := "/etc/" + appName + "/" + appName + ".yaml"
	pf.StringVarP(&cfgFile, "config", "c", defaultCfg, "Configuration file")

	pf.Bool("dry-run", false, "Dry-run mode: show what would be published, don't run git")
	bindPFlag(pf, "dry-run", "dry-run")

	pf.String("cache-dir", cache.DefaultRoot, "Where working copies are kept between runs")
	bindPFlag(pf, "cache-dir", "cache-dir")

	pf.Duration("timeout", 0, "Timeout for each git command (0 to disable)")
	bindPFlag(pf, "timeout", "timeout")

	pf.String("log-level", "info", "Log level")
	bindPFlag(pf, "log.level", "log-level")

	pf.String("log-output", "stderr", "Log output (stdout, stderr, syslog, test or file:<path>)")
	bindPFlag(pf, "log.output", "log-output")

	pf.String("log-server", "", "Log server (if using syslog)")
	bindPFlag(pf, "log.server", "log-server")

	// publish options
	def := config.Defaults()
	f := RootCmd.Flags()

	f.StringP("dist", "d", "", "Base directory for all source files")
	bindPFlag(f, "dist", "dist")

	f.StringSliceP("src", "s", def.Src, "Pattern used to select which files to publish")
	bindPFlag(f, "src", "src")

	f.StringP("branch", "b", def.Branch, "Name of the branch you are pushing to")
	bindPFlag(f, "branch", "branch")

	f.StringP("dest", "e", def.Dest, "Target directory within the destination branch (relative to the root)")
	bindPFlag(f, "dest", "dest")

	f.BoolP("add", "a", false, "Only add, and never remove existing files")
	bindPFlag(f, "add", "add")

	f.BoolP("silent", "x", false, "Do not output the repository url")
	bindPFlag(f, "silent", "silent")

	f.StringP("message", "m", def.Message, "Commit message")
	bindPFlag(f, "message", "message")

	f.StringP("git", "g", def.Git, "Path to git executable")
	bindPFlag(f, "git", "git")

	f.BoolP("dotfiles", "t", false, "Include dotfiles")
	bindPFlag(f, "dotfiles", "dotfiles")

	f.String("tag", "", "Add tag to commit")
	bindPFlag(f, "tag", "tag")

	f.StringP("repo", "r", "", "URL of the repository you are pushing to")
	bindPFlag(f, "repo", "repo")

	f.IntP("depth", "p", def.Depth, "Depth for clone (negative for the full history)")
	bindPFlag(f, "depth", "depth")

	f.StringP("remote", "o", def.Remote, "The name of the remote")
	bindPFlag(f, "remote", "remote")

	f.StringP("remove", "v", def.Only, "Remove published files (relative to --dest) that match the given pattern (ignored with --add)")
	bindPFlag(f, "remove", "remove")

	f.BoolP("no-push", "n", false, "Commit only (with no push)")
	bindPFlag(f, "no-push", "no-push")

	f.StringP("user", "u", "", `The name and email of the user, like "Your Name <email@example.com>"`)
	bindPFlag(f, "user", "user")

	f.String("user-name", "", "Committer name (with --user-email, overrides --user)")
	bindPFlag(f, "user-name", "user-name")

	f.String("user-email", "", "Committer email (with --user-name, overrides --user)")
	bindPFlag(f, "user-email", "user-email")

	f.Bool("local-user", false, "Commit as the user configured in the current directory repository")
	bindPFlag(f, "local-user", "local-user")

	f.String("clone-dir", "", "Working copy path (defaults to a directory in the cache)")
	bindPFlag(f, "clone-dir", "clone-dir")
}
