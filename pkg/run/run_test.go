package run

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpineau/ghpages/config"
	"github.com/bpineau/ghpages/pkg/cache"
	"github.com/bpineau/ghpages/pkg/log"
	"github.com/bpineau/ghpages/pkg/publish"
)

func testConfig(t *testing.T) *config.GhpConfig {
	logger, err := log.New("debug", "", "test")
	require.NoError(t, err)

	conf := &config.GhpConfig{
		Logger:   logger,
		CacheDir: filepath.Join(t.TempDir(), "cache"),
		DryRun:   true,
	}
	require.NoError(t, conf.Init())
	return conf
}

func TestRunDryRun(t *testing.T) {
	conf := testConfig(t)
	site := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(site, "index.html"), []byte("<html/>"), 0644))

	err := Run(conf, site, config.PublishConfig{Repo: "https://example.com/site.git"})
	assert.NoError(t, err)

	_, err = os.Stat(conf.CacheDir)
	assert.True(t, os.IsNotExist(err), "dry run shouldn't create the cache")
}

func TestRunErrors(t *testing.T) {
	conf := testConfig(t)

	err := Run(conf, filepath.Join(t.TempDir(), "missing"), config.PublishConfig{Repo: "r"})
	assert.ErrorIs(t, err, publish.ErrNotDirectory)

	err = Run(conf, "/nonexistent", config.PublishConfig{Repo: "r", Silent: true})
	assert.ErrorIs(t, err, publish.ErrSilenced)
}

func TestClean(t *testing.T) {
	conf := testConfig(t)
	require.NoError(t, Clean(conf), "cleaning a missing cache should succeed")

	dir := cache.Dir(conf.CacheDir, "https://example.com/site.git")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))

	require.NoError(t, Clean(conf))
	assert.DirExists(t, dir, "dry run shouldn't remove anything")

	conf.DryRun = false
	require.NoError(t, Clean(conf))
	assert.NoDirExists(t, conf.CacheDir)
}
