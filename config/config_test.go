package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/scplayer/config"
)

func TestFromString(t *testing.T) {
	t.Parallel()

	t.Run("empty_document_yields_defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.FromString("")
		require.NoError(t, err)
		assert.Equal(t, config.Default(), *cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.FromString(`
search_limit: 25
channel_layout: preserve
credential_entry: track
descriptor_cache_ttl: 10m
`)
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.SearchLimit)
		assert.Equal(t, config.ChannelLayoutPreserve, cfg.ChannelLayout)
		assert.Equal(t, config.CredentialEntryTrack, cfg.CredentialEntry)
		assert.Equal(t, 10*time.Minute, cfg.DescriptorCacheTTL)
		assert.Equal(t, 5, cfg.MaxScriptCandidates)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		tests := []string{
			"channel_layout: surround",
			"credential_entry: cookie",
			"max_script_candidates: 0",
			"search_limit: -1",
			"api_base_url: ftp://example.com",
			"origin: ''",
			"user_agent: ''",
			"download_dir: ''",
			"search_limit: [",
		}
		for _, test := range tests {
			_, err := config.FromString(test)
			assert.Error(t, err, test)
		}
	})
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	filePath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte("download_dir: /tmp/music\n"), 0o600))

	cfg, err := config.FromFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/music", cfg.DownloadDir)

	_, err = config.FromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
