// Command downloader fetches NEM12 report files from the metering portal
// into the before- or after-production directory, ready for comparison.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"nemcli/internal/config"
	"nemcli/internal/downloader"
	"nemcli/internal/infrastructure"
)

func main() {
	side := flag.String("side", "before", "which production side this download is: before | after")
	outDir := flag.String("out", "", "destination directory (defaults from config by side)")
	report := flag.String("report", "", "report name to search for (defaults from config)")
	headless := flag.Bool("headless", true, "run the browser headless")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	var dlSide downloader.Side
	switch *side {
	case "before":
		dlSide = downloader.SideBefore
	case "after":
		dlSide = downloader.SideAfter
	default:
		logger.Error("invalid -side value, want before or after", slog.String("side", *side))
		os.Exit(1)
	}

	if *outDir == "" {
		if dlSide == downloader.SideBefore {
			*outDir = cfg.Paths.BeforeDir
		} else {
			*outDir = cfg.Paths.AfterDir
		}
	}

	portalCfg := cfg.Portal
	portalCfg.Headless = *headless
	if *report != "" {
		portalCfg.ReportName = *report
	}

	dl, err := downloader.New(portalCfg, logger)
	if err != nil {
		logger.Error("downloader setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	path, err := dl.FetchReport(context.Background(), *outDir, dlSide)
	if err != nil {
		logger.Error("download failed",
			slog.String("side", *side),
			slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("download complete", slog.String("path", path))
}
