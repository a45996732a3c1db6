package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bpineau/ghpages/config"
	"github.com/bpineau/ghpages/pkg/git"
	glog "github.com/bpineau/ghpages/pkg/log"
	"github.com/bpineau/ghpages/pkg/run"
)

const appName = "gh-pages"

// ErrMissingDist is returned when no directory to publish was given
var ErrMissingDist = errors.New("the --dist option is required")

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   appName,
	Short: "Publish files to a gh-pages branch",
	Long: "Publish the files of a local directory to a branch (gh-pages by default)\n" +
		"of a git repository, through a cached working copy of that repository.",

	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfigFile,

	RunE: func(cmd *cobra.Command, args []string) error {
		base := viper.GetString("dist")
		if base == "" {
			return ErrMissingDist
		}

		conf, err := newConfig()
		if err != nil {
			return err
		}

		return run.Run(conf, base, publishConfig())
	},
}

// Execute adds all child commands to the root command and sets their flags.
func Execute() error {
	return RootCmd.Execute()
}

// newConfig builds the process wide configuration
func newConfig() (*config.GhpConfig, error) {
	logger, err := glog.New(viper.GetString("log.level"),
		viper.GetString("log.server"), viper.GetString("log.output"))
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %v", err)
	}

	var rules []git.Rule
	if err = viper.UnmarshalKey("classifications", &rules); err != nil {
		return nil, fmt.Errorf("failed to read classifications: %v", err)
	}

	conf := &config.GhpConfig{
		DryRun:          viper.GetBool("dry-run"),
		Logger:          logger,
		CacheDir:        viper.GetString("cache-dir"),
		Timeout:         viper.GetDuration("timeout"),
		Classifications: rules,
	}

	if err = conf.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize the configuration: %v", err)
	}

	return conf, nil
}

// publishConfig gathers the publish options. Defaults are applied later.
func publishConfig() config.PublishConfig {
	opts := config.PublishConfig{
		Dest:      viper.GetString("dest"),
		Add:       viper.GetBool("add"),
		Src:       viper.GetStringSlice("src"),
		Only:      viper.GetString("remove"),
		Branch:    viper.GetString("branch"),
		Remote:    viper.GetString("remote"),
		Message:   viper.GetString("message"),
		Tag:       viper.GetString("tag"),
		NoPush:    viper.GetBool("no-push"),
		Dotfiles:  viper.GetBool("dotfiles"),
		Author:    viper.GetString("user"),
		LocalUser: viper.GetBool("local-user"),
		Silent:    viper.GetBool("silent"),
		Depth:     viper.GetInt("depth"),
		Clone:     viper.GetString("clone-dir"),
		Repo:      viper.GetString("repo"),
		Git:       viper.GetString("git"),
	}

	name, email := viper.GetString("user-name"), viper.GetString("user-email")
	if name != "" || email != "" {
		opts.User = &config.User{Name: name, Email: email}
	}

	return opts
}
