package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevel(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	Setup(Config{Level: "debug"})
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	Setup(Config{Level: "nonsense"})
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}

func TestSetupFile(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "taskcat.log")
	Setup(Config{Level: "info", LogFile: path, MaxSizeMB: 1})
	log.Infof("hello %s", "file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}
