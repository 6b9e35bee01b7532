// Package config loads the aircanvas configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides applied after the file is read.
const (
	EnvAddr        = "AIRCANVAS_ADDR"
	EnvDB          = "AIRCANVAS_DB"
	EnvWebDir      = "AIRCANVAS_WEB_DIR"
	EnvCamera      = "AIRCANVAS_CAMERA"
	EnvColorCycle  = "AIRCANVAS_COLOR_CYCLE"
	EnvLogLevel    = "AIRCANVAS_LOG_LEVEL"
	EnvLogFormat   = "AIRCANVAS_LOG_FORMAT"
	EnvLogFile     = "AIRCANVAS_LOG_FILE"
	EnvTray        = "AIRCANVAS_TRAY"
	EnvAdvertise   = "AIRCANVAS_ADVERTISE"
	defaultDirName = ".aircanvas"
)

type ServerConfig struct {
	Addr       string        `yaml:"addr"`
	StaticDir  string        `yaml:"static_dir"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type CameraConfig struct {
	DeviceID int  `yaml:"device_id"`
	Width    int  `yaml:"width"`
	Height   int  `yaml:"height"`
	Mirror   bool `yaml:"mirror"`
}

type DetectorConfig struct {
	MaxHands        int     `yaml:"max_hands"`
	MinConfidence   float64 `yaml:"min_confidence"`
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`
}

type PipelineConfig struct {
	IdleFPS         int     `yaml:"idle_fps"`
	ActiveFPS       int     `yaml:"active_fps"`
	IdleTimeoutMs   int     `yaml:"idle_timeout_ms"`
	MotionThreshold float64 `yaml:"motion_threshold"`
	FrameWeight     float64 `yaml:"frame_weight"`
	DrawLandmarks   bool    `yaml:"draw_landmarks"`
	ColorCycle      string  `yaml:"color_cycle"` // "hold" or "edge"
	BrushRadius     int     `yaml:"brush_radius"`
	EraserRadius    int     `yaml:"eraser_radius"`
	JPEGQuality     int     `yaml:"jpeg_quality"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type DiscoveryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
}

type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Camera    CameraConfig    `yaml:"camera"`
	Detector  DetectorConfig  `yaml:"detector"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Logging   LoggingConfig   `yaml:"logging"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Tray      TrayConfig      `yaml:"tray"`
}

// Defaults returns the built-in configuration. dataDir holds the database.
func Defaults(dataDir string) Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080", SessionTTL: 24 * time.Hour},
		Storage: StorageConfig{Path: filepath.Join(dataDir, "aircanvas.db")},
		Camera:  CameraConfig{DeviceID: 0, Width: 640, Height: 480, Mirror: true},
		Detector: DetectorConfig{
			MaxHands:        1,
			MinConfidence:   0.7,
			MinTrackingConf: 0.5,
		},
		Pipeline: PipelineConfig{
			IdleFPS:         5,
			ActiveFPS:       15,
			IdleTimeoutMs:   2000,
			MotionThreshold: 1.0,
			FrameWeight:     0.7,
			DrawLandmarks:   true,
			ColorCycle:      "edge",
			BrushRadius:     10,
			EraserRadius:    30,
			JPEGQuality:     80,
		},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Discovery: DiscoveryConfig{Enabled: false, Instance: "aircanvas"},
	}
}

// DataDir returns ~/.aircanvas.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, defaultDirName), nil
}

// Load reads path on top of Defaults(dataDir). A missing file is not an
// error. Environment overrides are applied last, then the result is validated.
func Load(path, dataDir string) (Config, error) {
	cfg := Defaults(dataDir)

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(EnvWebDir); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := os.Getenv(EnvCamera); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCamera, err)
		}
		cfg.Camera.DeviceID = id
	}
	if v := os.Getenv(EnvColorCycle); v != "" {
		cfg.Pipeline.ColorCycle = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv(EnvTray); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTray, err)
		}
		cfg.Tray.Enabled = b
	}
	if v := os.Getenv(EnvAdvertise); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAdvertise, err)
		}
		cfg.Discovery.Enabled = b
	}
	return nil
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		errs = append(errs, fmt.Errorf("camera size %dx%d must be positive", c.Camera.Width, c.Camera.Height))
	}
	if c.Detector.MaxHands != 1 {
		errs = append(errs, fmt.Errorf("detector.max_hands must be 1, got %d", c.Detector.MaxHands))
	}
	if c.Pipeline.IdleFPS <= 0 || c.Pipeline.ActiveFPS <= 0 {
		errs = append(errs, errors.New("pipeline fps must be positive"))
	}
	if c.Pipeline.FrameWeight <= 0 || c.Pipeline.FrameWeight >= 1 {
		errs = append(errs, fmt.Errorf("pipeline.frame_weight %.2f must be in (0,1)", c.Pipeline.FrameWeight))
	}
	if c.Pipeline.ColorCycle != "hold" && c.Pipeline.ColorCycle != "edge" {
		errs = append(errs, fmt.Errorf("pipeline.color_cycle %q must be hold or edge", c.Pipeline.ColorCycle))
	}
	if c.Pipeline.BrushRadius <= 0 || c.Pipeline.EraserRadius <= c.Pipeline.BrushRadius {
		errs = append(errs, fmt.Errorf("eraser_radius %d must exceed brush_radius %d", c.Pipeline.EraserRadius, c.Pipeline.BrushRadius))
	}
	if c.Pipeline.JPEGQuality < 1 || c.Pipeline.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("pipeline.jpeg_quality %d must be in [1,100]", c.Pipeline.JPEGQuality))
	}
	return errors.Join(errs...)
}
