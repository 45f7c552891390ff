package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locale-uploader/internal/upload"
)

func addonFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/addon/Core.lua":        "print(L[\"Hello\"])\nL[\"Bye\"] = \"Goodbye\"\n",
		"/addon/Options.lua":     "L[\"Hello\"] = \"Hi there\"\n",
		"/addon/libs/Lib.lua":    "L[\"Lib\"] = \"ignored\"\n",
		"/addon/Addon.toc":       "## Title: Addon\n",
		"/addon/locale/enUS.lua": "local L = {}\n",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func runCmd(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CF_API_KEY", "")
	var out bytes.Buffer
	cmd := NewRootCmd(fs)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDryRunPrintsMergedTable(t *testing.T) {
	out, err := runCmd(t, addonFs(t), "--root", "/addon", "-d", "-e", "libs/**")
	require.NoError(t, err)

	want := "L[\"Hello\"] = \"Hi there\"\n" +
		"L[\"Bye\"] = \"Goodbye\"\n"
	assert.Equal(t, want, out)
}

func TestDryRunStructural(t *testing.T) {
	out, err := runCmd(t, addonFs(t), "--root", "/addon", "-d", "--strategy", "structural", "-e", "libs/**\nlocale/**")
	require.NoError(t, err)
	assert.Contains(t, out, "L[\"Hello\"] = \"Hi there\"\n")
	assert.NotContains(t, out, "Lib")
}

func TestUploadRequiresKey(t *testing.T) {
	_, err := runCmd(t, addonFs(t), "--root", "/addon", "-i", "1234")
	assert.ErrorIs(t, err, upload.ErrMissingAPIKey)
}

func TestUploadRequiresProjectID(t *testing.T) {
	_, err := runCmd(t, addonFs(t), "--root", "/addon", "-k", "secret")
	require.ErrorIs(t, err, upload.ErrMissingProjectID)
	assert.Contains(t, err.Error(), "X-Curse-Project-ID")
}

func TestInvalidArguments(t *testing.T) {
	cases := [][]string{
		{"--root", "/addon", "-d", "--strategy", "tokens"},
		{"--root", "/addon", "-d", "-p", "L\\[(.+)\\]"},
		{"--root", "/addon", "-d", "-e", "[a-"},
		{"--root", "/missing", "-d"},
		{"-d", "--root", "/addon", "positional"},
	}
	for _, args := range cases {
		_, err := runCmd(t, addonFs(t), args...)
		assert.Error(t, err, args)
	}
}

func TestInvalidMetadataIsRejectedBeforeUpload(t *testing.T) {
	_, err := runCmd(t, addonFs(t), "--root", "/addon", "-k", "secret", "-i", "1", "-l", "xxXX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid language")
}
