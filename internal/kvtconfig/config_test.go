package kvtconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pingcap-incubator/kvtgraph/internal/kvt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
}

func TestLoadOverridesModeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kvtgraph.toml")
	require.NoError(t, os.WriteFile(path, []byte(`Mode = "2pl"`+"\n"), 0o644))

	conf, err := Load(path)
	require.NoError(t, err)
	mode, err := conf.ParseMode()
	require.NoError(t, err)
	assert.Equal(t, kvt.TwoPL, mode)
}

func TestParseModeRejectsUnknownMode(t *testing.T) {
	conf := &Config{Mode: "raft"}
	_, err := conf.ParseMode()
	assert.Error(t, err)
}
