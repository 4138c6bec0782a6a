// Command coedit renders a project file to a video from the command
// line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/baileyeubanks/coedit/config"
	"github.com/baileyeubanks/coedit/internal/encoder"
	"github.com/baileyeubanks/coedit/internal/export"
	"github.com/baileyeubanks/coedit/internal/progress"
	"github.com/baileyeubanks/coedit/internal/project"
)

func main() {
	projectPath := flag.String("project", "", "Path to the project JSON file (required)")
	outPath := flag.String("out", "", "Output file path (defaults to <project>.<format>)")
	fps := flag.Float64("fps", 0, "Output frame rate")
	width := flag.Int("width", 0, "Output width in pixels")
	height := flag.Int("height", 0, "Output height in pixels")
	bitrate := flag.String("bitrate", "", "Output bitrate, e.g. 8M")
	format := flag.String("format", "", "Output container: mp4, webm or gif")
	configPath := flag.String("config", "./config/config.yaml", "Path to the configuration file")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *projectPath == "" {
		slog.Error("Missing required flag: -project")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if *fps <= 0 {
		*fps = cfg.Export.FPS
	}
	if *width <= 0 {
		*width = cfg.Canvas.Width
	}
	if *height <= 0 {
		*height = cfg.Canvas.Height
	}
	if *bitrate == "" {
		*bitrate = cfg.Export.Bitrate
	}
	if *format == "" {
		*format = cfg.Export.Format
	}

	f, err := os.Open(*projectPath)
	if err != nil {
		slog.Error("Failed to open project", "path", *projectPath, "error", err)
		os.Exit(1)
	}
	doc, err := project.Decode(f)
	f.Close()
	if err != nil {
		slog.Error("Failed to parse project", "path", *projectPath, "error", err)
		os.Exit(1)
	}

	output := *outPath
	if output == "" {
		base := filepath.Base(*projectPath)
		output = base[:len(base)-len(filepath.Ext(base))] + "." + *format
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Warn("Interrupt received, cancelling export")
		cancel()
	}()

	req := export.Request{
		Elements:   doc.Elements,
		Duration:   doc.Duration,
		Width:      *width,
		Height:     *height,
		FPS:        *fps,
		Bitrate:    *bitrate,
		Format:     *format,
		Background: cfg.Canvas.Background,
		OutputPath: output,
	}

	bar := progressbar.NewOptions(
		req.TotalFrames(),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan][1/2][reset] Rendering frames..."),
	)

	tracker := progress.NewTracker()
	tracker.AddListener(func(e progress.Event) {
		switch e.Stage {
		case progress.StageCompositing:
			if e.FrameDetails != nil {
				_ = bar.Set(e.FrameDetails.FrameNumber)
			}
		case progress.StageEncoding:
			_ = bar.Finish()
			fmt.Println("\nEncoding...")
		}
	})

	orchestrator := export.NewOrchestrator(encoder.NewFFmpegEncoder(), nil, cfg.Export.StagingDir)
	if err := orchestrator.Export(ctx, req, tracker); err != nil {
		slog.Error("Export failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\nWrote %s\n", output)
}
