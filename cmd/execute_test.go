package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// most of cli binding code is executed through the magical init() mecanism
func TestRootCmd(t *testing.T) {
	RootCmd.SetOutput(new(bytes.Buffer))

	RootCmd.SetArgs([]string{"--config", "/dev/null", "--log-output", "test"})
	err := Execute()
	assert.ErrorIs(t, err, ErrMissingDist)

	site := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(site, "index.html"), []byte("<html/>"), 0644))
	cache := filepath.Join(t.TempDir(), "cache")

	RootCmd.SetArgs([]string{
		"--config",
		"/dev/null",
		"--dry-run",
		"--log-level",
		"warning",
		"--log-output",
		"test",
		"--cache-dir",
		cache,
		"--dist",
		site,
		"--repo",
		"https://example.com/site.git",
		"--src",
		"**/*.html,**/*.css",
		"--user",
		"Jane Doe <jane@example.com>",
		"--timeout",
		"30s",
	})
	assert.NoError(t, Execute(), "dry run should succeed")
	assert.NoDirExists(t, cache)

	RootCmd.SetArgs([]string{"--dist", site, "--user", "not an address"})
	assert.Error(t, Execute(), "Execute() should fail with an invalid author")

	RootCmd.SetArgs([]string{"--dist", site, "--config"})
	assert.Error(t, Execute(), "Execute() should fail with missing flags arguments")

	RootCmd.SetArgs([]string{"--dist", site, "--config", "\\/non/existent/path"})
	assert.Error(t, Execute(), "Execute() should fail with unreachable config file path")

	// flags values survive across executions
	require.NoError(t, RootCmd.PersistentFlags().Set("config", "/dev/null"))
}

func TestPublishConfig(t *testing.T) {
	require.NoError(t, RootCmd.ParseFlags([]string{
		"--user-name", "Jane", "--user-email", "jane@example.com",
		"--remove", "*.html", "--no-push", "--depth=-1",
	}))

	opts := publishConfig()
	assert.Equal(t, "Jane", opts.User.Name)
	assert.Equal(t, "jane@example.com", opts.User.Email)
	assert.Equal(t, "*.html", opts.Only)
	assert.True(t, opts.NoPush)
	assert.Equal(t, 0, opts.CloneDepth())
	assert.Equal(t, "gh-pages", opts.Branch)
}

func TestVersion(t *testing.T) {
	out := new(bytes.Buffer)
	RootCmd.SetOutput(out)
	RootCmd.SetArgs([]string{"version"})
	if err := RootCmd.Execute(); err != nil {
		t.Errorf("version subcommand shouldn't fail: %+v", err)
	}
	assert.Contains(t, out.String(), appName+" version "+version)
}

func TestConfigFileMessage(t *testing.T) {
	out := new(bytes.Buffer)
	RootCmd.SetOutput(out)
	RootCmd.SetArgs([]string{"version", "--config", "/dev/null"})
	require.NoError(t, Execute())
	assert.Contains(t, out.String(), "Using config file: /dev/null")
}

func TestClean(t *testing.T) {
	RootCmd.SetOutput(new(bytes.Buffer))
	RootCmd.SetArgs([]string{"clean", "--log-output", "test", "--cache-dir", t.TempDir()})
	assert.NoError(t, Execute())

	RootCmd.SetArgs([]string{"clean", "extra-arg"})
	assert.Error(t, Execute(), "clean doesn't take arguments")
}
