package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Canvas   CanvasConfig   `yaml:"canvas"`
	Editing  EditingConfig  `yaml:"editing"`
	Export   ExportConfig   `yaml:"export"`
	Playback PlaybackConfig `yaml:"playback"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
}

type CanvasConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
}

type EditingConfig struct {
	PixelsPerSecond float64 `yaml:"pixels_per_second"`
	SnapThresholdPx float64 `yaml:"snap_threshold_px"`
	SnapEnabled     bool    `yaml:"snap_enabled"`
	HistoryDepth    int     `yaml:"history_depth"`
}

type ExportConfig struct {
	FPS        float64 `yaml:"fps"`
	Bitrate    string  `yaml:"bitrate"`
	Format     string  `yaml:"format"`
	StagingDir string  `yaml:"staging_dir"`
}

type PlaybackConfig struct {
	TickIntervalMs   int `yaml:"tick_interval_ms"`
	DriftToleranceMs int `yaml:"drift_tolerance_ms"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	OutputDir string `yaml:"output_dir"`

	// GCS storage options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Set defaults if not provided
	if config.Canvas.Width == 0 {
		config.Canvas.Width = 1920
	}

	if config.Canvas.Height == 0 {
		config.Canvas.Height = 1080
	}

	if config.Canvas.Background == "" {
		config.Canvas.Background = "#000000"
	}

	if config.Editing.PixelsPerSecond == 0 {
		config.Editing.PixelsPerSecond = 60
	}

	if config.Editing.SnapThresholdPx == 0 {
		config.Editing.SnapThresholdPx = 8
	}

	if config.Editing.HistoryDepth == 0 {
		config.Editing.HistoryDepth = 50
	}

	if config.Export.FPS == 0 {
		config.Export.FPS = 30
	}

	if config.Export.Bitrate == "" {
		config.Export.Bitrate = "8M"
	}

	if config.Export.Format == "" {
		config.Export.Format = "mp4"
	}

	if config.Playback.TickIntervalMs == 0 {
		config.Playback.TickIntervalMs = 33
	}

	if config.Playback.DriftToleranceMs == 0 {
		config.Playback.DriftToleranceMs = 120
	}

	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "local"
	}

	if config.Storage.OutputDir == "" {
		config.Storage.OutputDir = "output"
	}

	return config, nil
}
