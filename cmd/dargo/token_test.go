package main

import (
	"bytes"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kuldippatel.dev/dargo/internal/auth"
	"kuldippatel.dev/dargo/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		configPath, tokenTTL, tokenHost, initForce = "", 0, "", false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestInitThenToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dargo.ini")

	_, err := run(t, "--config", path, "token")
	require.Error(t, err)

	out, err := run(t, "--config", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.AuthSecret, 64)

	_, err = run(t, "--config", path, "init")
	require.Error(t, err)

	out, err = run(t, "--config", path, "token", "--host", "10.0.0.2:8080")
	require.NoError(t, err)

	page, err := url.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2:8080", page.Host)
	assert.NoError(t, auth.Verify(cfg.AuthSecret, page.Query().Get("token")))
}

func TestInitForceRotatesSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dargo.ini")

	_, err := run(t, "--config", path, "init")
	require.NoError(t, err)
	before, err := config.Load(path)
	require.NoError(t, err)

	_, err = run(t, "--config", path, "init", "--force")
	require.NoError(t, err)
	after, err := config.Load(path)
	require.NoError(t, err)

	assert.NotEqual(t, before.AuthSecret, after.AuthSecret)
}
