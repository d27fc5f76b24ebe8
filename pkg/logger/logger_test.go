package logger

import (
	"bytes"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("JSONFormat_WritesStructuredEntries", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(Config{Level: "debug", Format: "json", Output: &buf})
		require.NoError(t, err)

		log.Named("pipeline").Info("Filtered catalogue")
		require.NoError(t, log.Sync())

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "Filtered catalogue", entry["msg"])
		assert.Equal(t, "pipeline", entry["logger"])
		assert.Equal(t, "info", entry["level"])
	})

	t.Run("LevelFiltersLowerEntries", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(Config{Level: "warn", Output: &buf})
		require.NoError(t, err)

		log.Info("hidden")
		assert.Zero(t, buf.Len())
	})

	t.Run("InvalidLevel_ReturnsError", func(t *testing.T) {
		_, err := New(Config{Level: "loud"})
		assert.Error(t, err)
	})
}
