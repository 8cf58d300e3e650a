package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaywire/relay/internal/block"
	"github.com/relaywire/relay/internal/config"
)

const sampleConfig = `{
  "connectors": [
    { "type": "MQTT", "config": {"host": "localhost", "port": 1883, "topics": ["sensors/#"]}, "to": [{"kind": "block", "index": 0}] },
    { "type": "OSCSend", "config": {"host": "127.0.0.1", "port": 9000} }
  ],
  "blocks": [
    { "type": "ConvertBody", "to": [{"kind": "block", "index": 1}], "config": "Json" },
    { "type": "ConvertBody", "to": [{"kind": "sink", "index": 1}], "config": "Osc" }
  ]
}`

func TestLoadDecodesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	assert.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := config.Load(path)
	assert.NoError(t, err)

	assert.Len(t, cfg.Connectors, 2)
	assert.Equal(t, "MQTT", cfg.Connectors[0].Type)
	assert.Equal(t, []block.Connection{{Kind: block.ConnectionBlock, Index: 0}}, cfg.Connectors[0].To)
	assert.Equal(t, "OSCSend", cfg.Connectors[1].Type)
	assert.Nil(t, cfg.Connectors[1].To)

	assert.Len(t, cfg.Blocks, 2)
	assert.Equal(t, "ConvertBody", cfg.Blocks[0].Type)
	assert.Equal(t, []block.Connection{{Kind: block.ConnectionBlock, Index: 1}}, cfg.Blocks[0].To)
	assert.Equal(t, []block.Connection{{Kind: block.ConnectionSink, Index: 1}}, cfg.Blocks[1].To)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
