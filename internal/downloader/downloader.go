// Package downloader automates the metering portal to fetch NEM12 report
// files for one side of a comparison: sign in, open the NEM12 report page,
// search for the configured report, and save the download into the before-
// or after-production directory.
package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"

	"nemcli/internal/config"
)

// Side names the production side a download belongs to.
type Side string

const (
	SideBefore Side = "before"
	SideAfter  Side = "after"
)

// Portal page selectors. The portal markup is stable; adjust here if the
// vendor changes the layout.
const (
	selEmail     = `input[name="email"]`
	selPassword  = `input[name="password"]`
	selSignIn    = `button[type="submit"]`
	selDashboard = `#dashboard`
	selSearchBox = `input[name="reportSearch"]`
	selResultRow = `table#reports tbody tr`
)

// Downloader drives a headless browser session against the portal.
type Downloader struct {
	cfg    config.PortalConfig
	logger *slog.Logger
}

// New validates the portal configuration and returns a downloader.
// Missing credentials are rejected before any browser is launched.
func New(cfg config.PortalConfig, logger *slog.Logger) (*Downloader, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return nil, fmt.Errorf("portal credentials are not configured")
	}
	if cfg.ReportName == "" {
		return nil, fmt.Errorf("portal report name is not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{cfg: cfg, logger: logger}, nil
}

// FetchReport downloads the configured report into destDir and returns the
// saved file path, named "<report>_<side>_<timestamp>.csv". The whole
// session is bounded by the configured portal timeout.
func (d *Downloader) FetchReport(ctx context.Context, destDir string, side Side) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.cfg.Headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, d.cfg.Timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "nemcli-download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := chromedp.Run(runCtx, d.portalTasks(tmpDir)); err != nil {
		return "", fmt.Errorf("portal automation failed: %w", err)
	}

	downloaded, err := waitForDownload(runCtx, tmpDir)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(destDir, d.downloadName(side, filepath.Ext(downloaded)))
	if err := os.Rename(downloaded, dest); err != nil {
		// Rename fails across filesystems; fall back to copy.
		if err := copyFile(downloaded, dest); err != nil {
			return "", fmt.Errorf("failed to move download: %w", err)
		}
	}

	d.logger.Info("report downloaded",
		slog.String("report", d.cfg.ReportName),
		slog.String("side", string(side)),
		slog.String("path", dest))
	return dest, nil
}

// portalTasks is the scripted session: login, navigate, search, download.
func (d *Downloader) portalTasks(downloadDir string) chromedp.Tasks {
	loginURL := strings.TrimRight(d.cfg.BaseURL, "/") + "/login"
	resultLink := fmt.Sprintf(`//tr[contains(., %q)]//a[contains(., "Download")]`, d.cfg.ReportName)

	return chromedp.Tasks{
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(downloadDir),
		d.step("navigate to login", chromedp.Navigate(loginURL)),
		chromedp.WaitVisible(selEmail, chromedp.ByQuery),
		d.step("enter credentials", chromedp.Tasks{
			chromedp.SendKeys(selEmail, d.cfg.Email, chromedp.ByQuery),
			chromedp.SendKeys(selPassword, d.cfg.Password, chromedp.ByQuery),
		}),
		d.step("sign in", chromedp.Click(selSignIn, chromedp.ByQuery)),
		chromedp.WaitVisible(selDashboard, chromedp.ByQuery),
		d.step("open reports menu", chromedp.Click(`//a[contains(., "Reports")]`, chromedp.BySearch)),
		d.step("open NEM12 report page", chromedp.Click(`//a[contains(., "NEM12 Report")]`, chromedp.BySearch)),
		chromedp.WaitVisible(selSearchBox, chromedp.ByQuery),
		d.step("search report", chromedp.Tasks{
			chromedp.SendKeys(selSearchBox, d.cfg.ReportName+"\n", chromedp.ByQuery),
			chromedp.WaitVisible(selResultRow, chromedp.ByQuery),
		}),
		d.step("trigger download", chromedp.Click(resultLink, chromedp.BySearch)),
	}
}

// step wraps an action with start/finish logging. Credentials never appear
// in step names or attributes.
func (d *Downloader) step(name string, act chromedp.Action) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		start := time.Now()
		d.logger.Debug("portal step", slog.String("step", name))
		err := act.Do(ctx)
		if err != nil {
			d.logger.Error("portal step failed",
				slog.String("step", name),
				slog.Duration("elapsed", time.Since(start)),
				slog.Any("error", err))
			return fmt.Errorf("step %q: %w", name, err)
		}
		return nil
	})
}

// waitForDownload polls the staging directory until a completed file
// appears. Chrome writes in-progress downloads with a .crdownload suffix.
func waitForDownload(ctx context.Context, dir string) (string, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timed out waiting for download: %w", ctx.Err())
		case <-ticker.C:
			entries, err := os.ReadDir(dir)
			if err != nil {
				return "", fmt.Errorf("failed to read staging directory: %w", err)
			}
			for _, e := range entries {
				if e.IsDir() || strings.HasSuffix(e.Name(), ".crdownload") {
					continue
				}
				return filepath.Join(dir, e.Name()), nil
			}
		}
	}
}

// downloadName builds the destination filename for one side.
func (d *Downloader) downloadName(side Side, ext string) string {
	if ext == "" {
		ext = ".csv"
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, d.cfg.ReportName)
	return fmt.Sprintf("%s_%s_%s%s", safe, side, time.Now().Format("20060102_150405"), ext)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
