// Package run wires a configuration to the publisher, and runs a publish.
package run

import (
	"context"

	"github.com/bpineau/ghpages/config"
	"github.com/bpineau/ghpages/pkg/cache"
	"github.com/bpineau/ghpages/pkg/publish"
)

// Run publishes the base directory. The returned error is the one handed to
// the publish completion callback.
func Run(conf *config.GhpConfig, base string, opts config.PublishConfig) error {
	var result error
	done := make(chan struct{})

	pub := publish.New(conf)
	pub.Publish(context.Background(), base, opts, func(err error) {
		defer close(done)
		result = err
	})
	<-done

	if result != nil {
		return result
	}

	if !conf.DryRun {
		conf.Logger.Info("Published")
	}

	return nil
}

// Clean removes every cached working copy
func Clean(conf *config.GhpConfig) error {
	if conf.DryRun {
		repos, err := cache.List(conf.CacheDir)
		for _, repo := range repos {
			conf.Logger.Infof("Would remove the clone of %s", repo)
		}
		return err
	}

	repos, err := cache.Clean(conf.CacheDir)
	if err != nil {
		return err
	}

	for _, repo := range repos {
		conf.Logger.Debugf("Removed the clone of %s", repo)
	}
	conf.Logger.Infof("Removed %d cached clones from %s", len(repos), conf.CacheDir)

	return nil
}
