package filewalker

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, "/proj/"+f, []byte("-- "+f+"\n"), 0o644))
	}
	return fs
}

func TestWalkExcludesRecursiveGlob(t *testing.T) {
	fs := newTree(t, "a/x.lua", "a/b/y.lua", "c/z.lua")

	excludes, err := NewPatternSet("a/**")
	require.NoError(t, err)

	files, err := NewWalker(fs, "lua", excludes).Walk("/proj")
	require.NoError(t, err)
	assert.Equal(t, []string{"c/z.lua"}, files)
}

func TestWalkWithoutPatternsSelectsEverySourceFile(t *testing.T) {
	fs := newTree(t, "a/x.lua", "a/b/y.lua", "c/z.lua", "c/readme.md", "core.lua.bak")

	for _, excludes := range []*PatternSet{nil, {}} {
		files, err := NewWalker(fs, ".lua", excludes).Walk("/proj")
		require.NoError(t, err)
		assert.Equal(t, []string{"a/b/y.lua", "a/x.lua", "c/z.lua"}, files)
	}
}

func TestWalkSkipsHiddenEntries(t *testing.T) {
	fs := newTree(t, ".git/hooks/x.lua", ".hidden.lua", "lib/.cache/y.lua", "lib/ok.lua")

	files, err := NewWalker(fs, "", nil).Walk("/proj")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/ok.lua"}, files)
}

func TestWalkCustomExtension(t *testing.T) {
	fs := newTree(t, "Addon.toc", "Addon.lua", "sub/Other.toc")

	files, err := NewWalker(fs, "toc", nil).Walk("/proj")
	require.NoError(t, err)
	assert.Equal(t, []string{"Addon.toc", "sub/Other.toc"}, files)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := NewWalker(afero.NewMemMapFs(), "lua", nil).Walk("/nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nope")
}

func TestWalkRootIsFile(t *testing.T) {
	fs := newTree(t, "single.lua")
	_, err := NewWalker(fs, "lua", nil).Walk("/proj/single.lua")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestOpen(t *testing.T) {
	fs := newTree(t, "a/x.lua")
	w := NewWalker(fs, "lua", nil)

	f, err := w.Open("/proj", "a/x.lua")
	require.NoError(t, err)
	defer f.Close()

	_, err = w.Open("/proj", "a/missing.lua")
	assert.Error(t, err)
}
