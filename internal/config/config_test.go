package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	raw := `server:
  port: "8080"
  mode: "debug"
list_store:
  base_url: "https://lists.example.test/v1.0"
  site_id: "board"
  token: ""
  request_timeout_seconds: 30
jwt:
  secret: "unit-test-secret"
  expire_hours: 24
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(raw), 0o644))
	return dir
}

func TestLoadConfig_PrefixedEnvOverridesToken(t *testing.T) {
	t.Setenv("SUGGESTION_BOARD_LIST_STORE_TOKEN", "token-from-env")

	cfg, err := LoadConfig(writeTestConfig(t))
	require.NoError(t, err)
	assert.Equal(t, "token-from-env", cfg.ListStore.Token)
}

func TestLoadConfig_AppliesBoardDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Board.VoteQuota)
	assert.Equal(t, 20, cfg.Board.PageSize)
	assert.Equal(t, 200, cfg.Board.ScanPageSize)
	assert.Equal(t, "Suggestions", cfg.Board.SuggestionsList)
}
