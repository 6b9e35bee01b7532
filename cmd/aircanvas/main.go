package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/aircanvas/internal/app"
	"github.com/ayusman/aircanvas/internal/auth"
	"github.com/ayusman/aircanvas/internal/capture"
	"github.com/ayusman/aircanvas/internal/config"
	"github.com/ayusman/aircanvas/internal/detector"
	"github.com/ayusman/aircanvas/internal/discovery"
	"github.com/ayusman/aircanvas/internal/gesture"
	"github.com/ayusman/aircanvas/internal/logging"
	"github.com/ayusman/aircanvas/internal/server"
	"github.com/ayusman/aircanvas/internal/store"
	"github.com/ayusman/aircanvas/internal/tray"
)

const version = "0.1.0"

// purgeInterval is how often expired login sessions are removed.
const purgeInterval = time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "aircanvas: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}

	configPath := flag.String("config", filepath.Join(dataDir, "config.yaml"), "path to the YAML config file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("aircanvas", version)
		return nil
	}

	cfg, err := config.Load(*configPath, dataDir)
	if err != nil {
		return err
	}

	log := logging.Init(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	defer logging.Close()
	log.Info("starting aircanvas", "version", version, "config", *configPath)

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	authSvc := auth.NewService(st, auth.WithTTL(cfg.Server.SessionTTL))

	appCfg, err := sessionConfig(cfg)
	if err != nil {
		return err
	}
	sessions := app.NewManager(appCfg, cameraFactory(cfg.Camera), detectorFactory(cfg.Detector, log))
	defer sessions.CloseAll()

	webDir := cfg.Server.StaticDir
	if webDir == "" {
		webDir = findWebDir(dataDir)
	}
	if webDir != "" {
		log.Info("serving static files", "dir", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Auth:      authSvc,
		Sessions:  sessions,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeLoop(ctx, authSvc, log)

	if cfg.Discovery.Enabled {
		adv, err := advertise(cfg)
		if err != nil {
			log.Warn("mDNS advertisement disabled", "error", err)
		} else {
			defer adv.Shutdown()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx, cfg.Server.Addr)
	}()

	if cfg.Tray.Enabled {
		// The tray owns the main thread until it quits.
		t := newTray(sessions, cfg.Server.Addr, stop)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
		stop()
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("server: %w", err)
	}
	log.Info("shut down")
	return nil
}

// sessionConfig maps the file configuration onto drawing session settings.
func sessionConfig(cfg config.Config) (app.Config, error) {
	policy, err := gesture.ParseCyclePolicy(cfg.Pipeline.ColorCycle)
	if err != nil {
		return app.Config{}, err
	}

	c := app.DefaultConfig()
	c.Mirror = cfg.Camera.Mirror
	c.DrawLandmarks = cfg.Pipeline.DrawLandmarks
	c.FrameWeight = cfg.Pipeline.FrameWeight
	c.CyclePolicy = policy
	c.BrushRadius = cfg.Pipeline.BrushRadius
	c.EraserRadius = cfg.Pipeline.EraserRadius
	c.IdleFPS = cfg.Pipeline.IdleFPS
	c.ActiveFPS = cfg.Pipeline.ActiveFPS
	c.IdleTimeout = time.Duration(cfg.Pipeline.IdleTimeoutMs) * time.Millisecond
	c.MotionThreshold = cfg.Pipeline.MotionThreshold
	c.JPEGQuality = cfg.Pipeline.JPEGQuality
	return c, nil
}

func cameraFactory(cc config.CameraConfig) app.CameraFactory {
	return func() capture.Camera {
		return capture.NewCamera(capture.Options{
			DeviceID: cc.DeviceID,
			Width:    cc.Width,
			Height:   cc.Height,
		})
	}
}

// detectorFactory starts a MediaPipe detector per session, falling back to
// a detector that never sees a hand when the hand service is not installed.
func detectorFactory(dc config.DetectorConfig, log *slog.Logger) app.DetectorFactory {
	return func() (detector.Detector, error) {
		det, err := detector.NewMediaPipeDetector(detector.Config{
			MaxHands:        dc.MaxHands,
			MinConfidence:   dc.MinConfidence,
			MinTrackingConf: dc.MinTrackingConf,
		})
		if errors.Is(err, detector.ErrScriptNotFound) {
			log.Warn("hand service not found, gestures disabled", "error", err)
			return detector.NewMockDetector(), nil
		}
		if err != nil {
			return nil, err
		}
		return det, nil
	}
}

func advertise(cfg config.Config) (*discovery.Advertiser, error) {
	port, err := discovery.PortFromAddr(cfg.Server.Addr)
	if err != nil {
		return nil, err
	}
	return discovery.Advertise(cfg.Discovery.Instance, port, version)
}

func newTray(sessions *app.Manager, addr string, quit func()) *tray.Tray {
	t := tray.New()
	t.OnToggle(sessions.SetEnabled)
	t.OnClear(sessions.ClearAll)
	t.SessionCount(sessions.Len)
	t.OnOpen(func() {
		if err := tray.OpenBrowser(browserURL(addr)); err != nil {
			logging.WithComponent("tray").Warn("open browser", "error", err)
		}
	})
	t.OnQuit(quit)
	return t
}

// browserURL turns a listen address into a local URL.
func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func purgeLoop(ctx context.Context, a *auth.Service, log *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.PurgeExpired()
			if err != nil {
				log.Warn("purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				log.Info("purged expired sessions", "count", n)
			}
		}
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
