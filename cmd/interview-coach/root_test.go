package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, loadEnv(filepath.Join(dir, "missing.env")))
	require.NoError(t, loadEnv(""))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("INTERVIEW_COACH_TEST_VAR=from-file\n"), 0o644))
	t.Setenv("INTERVIEW_COACH_TEST_VAR", "")
	require.NoError(t, os.Unsetenv("INTERVIEW_COACH_TEST_VAR"))

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "from-file", os.Getenv("INTERVIEW_COACH_TEST_VAR"))
}

func TestLoadEnv_KeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("INTERVIEW_COACH_TEST_KEEP=from-file\n"), 0o644))
	t.Setenv("INTERVIEW_COACH_TEST_KEEP", "from-shell")

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "from-shell", os.Getenv("INTERVIEW_COACH_TEST_KEEP"))
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"serve", "reports", "events"} {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, found.Name())
	}
}
