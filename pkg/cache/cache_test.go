package cache

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repos = []string{
	"https://github.com/user/repo.git",
	"git@github.com:user/repo.git",
	"/srv/git/site.git",
	"file:///srv/git/site.git?a=b&c=d",
	"https://example.com/r%20epo",
	"https://example.com/r epo",
}

func TestEncodeRoundTrip(t *testing.T) {
	seen := make(map[string]string)
	for _, repo := range repos {
		name := Encode(repo)
		assert.NotContains(t, name, "/")
		assert.NotContains(t, name, "=")

		back, err := Decode(name)
		require.NoError(t, err)
		assert.Equal(t, repo, back)

		prev, dup := seen[name]
		assert.False(t, dup, "%s and %s collide", repo, prev)
		seen[name] = repo
	}

	_, err := Decode("not base64!")
	assert.Error(t, err)
}

func TestDir(t *testing.T) {
	assert.Equal(t, filepath.Join("root", Encode(repos[0])), Dir("root", repos[0]))
	assert.True(t, strings.HasPrefix(Dir("", repos[0]), DefaultRoot))
	assert.Equal(t, Dir("a", repos[1]), Dir("a", repos[1]), "Dir should be stable")
}

func TestClean(t *testing.T) {
	appFs = afero.NewMemMapFs()
	defer func() { appFs = afero.NewOsFs() }()

	repos, err := Clean("/nonexistent")
	require.NoError(t, err, "cleaning a missing cache isn't an error")
	assert.Empty(t, repos)

	for _, r := range []string{"b-repo", "a-repo"} {
		require.NoError(t, appFs.MkdirAll(filepath.Join(Dir("/c", r), ".git"), 0755))
	}
	require.NoError(t, appFs.MkdirAll("/c/@@@", 0755))
	require.NoError(t, afero.WriteFile(appFs, "/c/stray-file", []byte{42}, 0644))

	listed, err := List("/c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a-repo", "b-repo"}, listed)

	repos, err = Clean("/c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a-repo", "b-repo"}, repos)

	exists, err := afero.Exists(appFs, "/c")
	require.NoError(t, err)
	assert.False(t, exists)
}
