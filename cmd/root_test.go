package cmd

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catrerrors "github.com/conneroisu/catr/internal/errors"
	"github.com/conneroisu/catr/internal/testutils"
	"github.com/conneroisu/catr/internal/version"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := execute(context.Background(), root)

	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestRootCommandStdinDefault(t *testing.T) {
	testutils.CreateTempWorkspace(t)

	res := runCLI(t, "x\ny\n")

	require.NoError(t, res.err)
	assert.Equal(t, "x\ny\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestRootCommandNumbering(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	testutils.WriteFiles(t, dir, map[string]string{"in.txt": "a\n\nb\n"})

	testCases := []struct {
		name     string
		args     []string
		expected string
	}{
		{"plain", []string{"in.txt"}, "a\n\nb\n"},
		{"short number", []string{"-n", "in.txt"}, "     1\ta\n     2\t\n     3\tb\n"},
		{"long number after file", []string{"in.txt", "--number"}, "     1\ta\n     2\t\n     3\tb\n"},
		{"short nonblank", []string{"-b", "in.txt"}, "     1\ta\n\n     2\tb\n"},
		{"long nonblank", []string{"--number-nonblank", "in.txt"}, "     1\ta\n\n     2\tb\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := runCLI(t, "", tc.args...)
			require.NoError(t, res.err)
			assert.Equal(t, tc.expected, res.stdout)
			assert.Empty(t, res.stderr)
		})
	}
}

func TestRootCommandConflictingFlags(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	testutils.WriteFiles(t, dir, map[string]string{"in.txt": "a\n"})

	res := runCLI(t, "from stdin\n", "-n", "-b", "in.txt")

	require.Error(t, res.err)
	assert.True(t, catrerrors.IsUsageError(res.err))
	assert.Empty(t, res.stdout)
	assert.True(t, strings.HasPrefix(res.stderr, "Error: "))
	assert.Contains(t, res.stderr, "--help")
	assert.Equal(t, 1, strings.Count(res.stderr, "Error:"))
}

func TestRootCommandUnknownFlag(t *testing.T) {
	testutils.CreateTempWorkspace(t)

	res := runCLI(t, "", "--frobnicate")

	require.Error(t, res.err)
	assert.True(t, catrerrors.IsUsageError(res.err))
	assert.Contains(t, res.stderr, "frobnicate")
}

func TestRootCommandMissingFileStillSucceeds(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	testutils.WriteFiles(t, dir, map[string]string{
		"one.txt":   "1\n",
		"three.txt": "3\n",
	})

	res := runCLI(t, "", "one.txt", "two.txt", "three.txt")

	require.NoError(t, res.err)
	assert.Equal(t, "1\n3\n", res.stdout)
	assert.Equal(t, "two.txt: no such file or directory\n", res.stderr)
}

func TestRootCommandMixesStdinAndFiles(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	testutils.WriteFiles(t, dir, map[string]string{"f.txt": "file\n"})

	res := runCLI(t, "piped\n", "-n", "f.txt", "-", "f.txt")

	require.NoError(t, res.err)
	assert.Equal(t, "     1\tfile\n     1\tpiped\n     1\tfile\n", res.stdout)
}

func TestRootCommandReadErrorIsFatal(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	testutils.WriteFiles(t, dir, map[string]string{
		"bad.txt": "ok\n\xc3\x28\n",
		"ok.txt":  "never\n",
	})

	res := runCLI(t, "", "bad.txt", "ok.txt")

	require.Error(t, res.err)
	assert.True(t, catrerrors.IsReadError(res.err))
	assert.Equal(t, "ok\n", res.stdout)
	assert.Equal(t, "Error: bad.txt: encoding: invalid UTF-8\n", res.stderr)
}

func TestRootCommandConfigFile(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	testutils.WriteFiles(t, dir, map[string]string{
		".catr.yml": "number-nonblank: true\n",
		"in.txt":    "a\n\nb\n",
	})

	res := runCLI(t, "", "in.txt")
	require.NoError(t, res.err)
	assert.Equal(t, "     1\ta\n\n     2\tb\n", res.stdout)

	// Command-line numbering replaces the file's choice.
	res = runCLI(t, "", "-n", "in.txt")
	require.NoError(t, res.err)
	assert.Equal(t, "     1\ta\n     2\t\n     3\tb\n", res.stdout)
}

func TestRootCommandExplicitConfigMissing(t *testing.T) {
	testutils.CreateTempWorkspace(t)

	res := runCLI(t, "x\n", "--config", "nope.yml")

	require.Error(t, res.err)
	assert.False(t, catrerrors.IsUsageError(res.err))
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "nope.yml")
}

func TestRootCommandEnvironment(t *testing.T) {
	testutils.CreateTempWorkspace(t)
	t.Setenv("CATR_NUMBER", "true")

	res := runCLI(t, "a\n\n")

	require.NoError(t, res.err)
	assert.Equal(t, "     1\ta\n     2\t\n", res.stdout)
}

func TestRootCommandDebugLogging(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	testutils.WriteFiles(t, dir, map[string]string{"in.txt": "a\n"})

	res := runCLI(t, "", "--log-level", "debug", "--log-format", "json", "in.txt")

	require.NoError(t, res.err)
	assert.Equal(t, "a\n", res.stdout)
	assert.Contains(t, res.stderr, `"msg":"configuration loaded"`)
	assert.Contains(t, res.stderr, `"msg":"source drained"`)
	assert.Contains(t, res.stderr, `"source":"in.txt"`)
	assert.Contains(t, res.stderr, `"msg":"run complete"`)
}

func TestRootCommandInvalidLogLevel(t *testing.T) {
	testutils.CreateTempWorkspace(t)

	res := runCLI(t, "", "--log-level", "chatty")

	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "log-level")
}

func TestRootCommandIdempotent(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	testutils.WriteFiles(t, dir, map[string]string{"in.txt": "one\n\ntwo\n"})

	first := runCLI(t, "", "-b", "in.txt")
	second := runCLI(t, "", "-b", "in.txt")

	require.NoError(t, first.err)
	require.NoError(t, second.err)
	assert.Equal(t, first.stdout, second.stdout)
}

func TestRootCommandVersion(t *testing.T) {
	testutils.CreateTempWorkspace(t)

	res := runCLI(t, "", "--version")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "catr version")
	assert.Contains(t, res.stdout, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionTemplateMarksDevelopmentBuilds(t *testing.T) {
	oldVersion := version.Version
	defer func() { version.Version = oldVersion }()

	version.Version = "v1.4.0"
	assert.NotContains(t, versionTemplate(), "development build")

	version.Version = "dev-0123456"
	assert.Contains(t, versionTemplate(), "development build")
}

func TestRootCommandCancelled(t *testing.T) {
	dir := testutils.CreateTempWorkspace(t)
	testutils.WriteFiles(t, dir, map[string]string{"in.txt": "a\n"})

	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"in.txt"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := execute(ctx, root)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, stdout.String())
	assert.Equal(t, "Error: interrupted\n", stderr.String())
}
