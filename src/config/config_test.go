package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, shouldExit, err := Parse(nil, new(bytes.Buffer))
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, &Config{
		Backend:   BackendBnB,
		TimeLimit: 30 * time.Second,
		Patterns:  DefaultPatterns,
		Dir:       ".",
		LogLevel:  "info",
		LogFormat: "console",
	}, cfg)
}

func TestParse_Help(t *testing.T) {
	for _, arg := range []string{"-h", "--help"} {
		out := new(bytes.Buffer)
		cfg, shouldExit, err := Parse([]string{arg}, out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
		assert.Contains(t, out.String(), "--no-download")
	}
}

func TestParse_Flags(t *testing.T) {
	cfg, _, err := Parse([]string{
		"--no-download", "--no-install",
		"--backend", "PB",
		"--time-limit", "2s",
		"--pattern", "a/*.dat", "--pattern", "b/*.dat",
		"--dir", "/data",
		"--report", "out.yaml",
		"--metrics-file", "out.prom",
		"--log-level", "debug",
		"--log-format", "json",
	}, new(bytes.Buffer))
	require.NoError(t, err)

	assert.Equal(t, &Config{
		NoDownload:  true,
		NoInstall:   true,
		Backend:     BackendPB,
		TimeLimit:   2 * time.Second,
		Patterns:    []string{"a/*.dat", "b/*.dat"},
		Dir:         "/data",
		Report:      "out.yaml",
		MetricsFile: "out.prom",
		LogLevel:    "debug",
		LogFormat:   "json",
	}, cfg)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"--bogus"}},
		{name: "unknown backend", args: []string{"--backend", "cplex"}},
		{name: "bad duration", args: []string{"--time-limit", "soon"}},
		{name: "zero time limit", args: []string{"--time-limit", "0s"}},
		{name: "bad log level", args: []string{"--log-level", "loud"}},
		{name: "bad log format", args: []string{"--log-format", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.args, new(bytes.Buffer))
			require.Error(t, err)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}

func TestParse_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpcs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: highs\ntime-limit: 45s\nno-download: true\n"), 0o600))

	cfg, _, err := Parse([]string{"--config", path, "--time-limit", "5s"}, new(bytes.Buffer))
	require.NoError(t, err)

	assert.Equal(t, BackendHiGHS, cfg.Backend)
	assert.True(t, cfg.NoDownload)
	// Flags set on the command line win over the file.
	assert.Equal(t, 5*time.Second, cfg.TimeLimit)
}

func TestParse_MissingConfigFile(t *testing.T) {
	_, _, err := Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}, new(bytes.Buffer))
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
}

func TestParse_Environment(t *testing.T) {
	t.Setenv("KPCS_BACKEND", "lpsolve")
	t.Setenv("KPCS_NO_DOWNLOAD", "true")

	cfg, _, err := Parse(nil, new(bytes.Buffer))
	require.NoError(t, err)
	assert.Equal(t, BackendLPSolve, cfg.Backend)
	assert.True(t, cfg.NoDownload)
}
