package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	c, err := Setup(Conf{Level: "WARN"})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	_, err = Setup(Conf{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	_, err = Setup(Conf{Level: "loud"})
	assert.Error(t, err)
}

func TestSetupFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	path := filepath.Join(t.TempDir(), "arstats.log")

	c, err := Setup(Conf{Level: "debug", Path: path})
	require.NoError(t, err)
	log.Debug().Str("source", "x.csv").Msg("hello")
	require.NoError(t, c.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"source":"x.csv"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestTo(t *testing.T) {
	var buf bytes.Buffer
	To(&buf)
	log.Warn().Msg("skipping file")
	assert.Contains(t, buf.String(), "skipping file")
	assert.Contains(t, buf.String(), "WRN")
}
