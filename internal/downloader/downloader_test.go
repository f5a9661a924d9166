package downloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nemcli/internal/config"
)

func validPortalConfig() config.PortalConfig {
	return config.PortalConfig{
		BaseURL:    "https://portal.example.com",
		ReportName: "NEM12 Daily Extract",
		Email:      "ops@example.com",
		Password:   "secret",
		Headless:   true,
		Timeout:    time.Minute,
	}
}

func TestNewValidatesConfig(t *testing.T) {
	t.Run("accepts complete config", func(t *testing.T) {
		dl, err := New(validPortalConfig(), nil)
		require.NoError(t, err)
		assert.NotNil(t, dl)
	})

	t.Run("rejects missing credentials", func(t *testing.T) {
		cfg := validPortalConfig()
		cfg.Password = ""
		_, err := New(cfg, nil)
		assert.Error(t, err)
	})

	t.Run("rejects missing report name", func(t *testing.T) {
		cfg := validPortalConfig()
		cfg.ReportName = ""
		_, err := New(cfg, nil)
		assert.Error(t, err)
	})
}

func TestDownloadName(t *testing.T) {
	dl, err := New(validPortalConfig(), nil)
	require.NoError(t, err)

	name := dl.downloadName(SideBefore, ".csv")
	assert.Regexp(t, `^NEM12_Daily_Extract_before_\d{8}_\d{6}\.csv$`, name)

	name = dl.downloadName(SideAfter, "")
	assert.Regexp(t, `^NEM12_Daily_Extract_after_\d{8}_\d{6}\.csv$`, name)
}

func TestWaitForDownload(t *testing.T) {
	t.Run("finds completed file", func(t *testing.T) {
		dir := t.TempDir()
		// In-progress download markers are ignored.
		require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.csv.crdownload"), []byte("x"), 0o644))

		go func() {
			time.Sleep(100 * time.Millisecond)
			os.WriteFile(filepath.Join(dir, "report.csv"), []byte("100,NEM12\n"), 0o644)
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		path, err := waitForDownload(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "report.csv"), path)
	})

	t.Run("times out when nothing arrives", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_, err := waitForDownload(ctx, t.TempDir())
		assert.Error(t, err)
	})
}
