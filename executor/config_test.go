package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfedgeai/taskcat/pkg/common"
)

func TestLoadConfigLocal(t *testing.T) {
	t.Setenv("INPUT_FOLDER", "/tmp/in")
	t.Setenv("OUTPUT_FOLDER", "/tmp/out")
	cfg, err := LoadConfig("", false, "http://ignored", "ignored")
	require.NoError(t, err)
	assert.Equal(t, common.LocalServerURL, cfg.ServerURL)
	assert.Empty(t, cfg.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigRemote(t *testing.T) {
	t.Setenv("INPUT_FOLDER", "/tmp/in")
	t.Setenv("OUTPUT_FOLDER", "/tmp/out")
	cfg, err := LoadConfig("", true, "https://cat.example.com/", "secret")
	require.NoError(t, err)
	assert.Equal(t, "https://cat.example.com", cfg.ServerURL)
	assert.Equal(t, "secret", cfg.APIKey)

	cfg.ServerURL = ""
	assert.Error(t, cfg.Validate())
}

func TestConfigValidateFolders(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
}
