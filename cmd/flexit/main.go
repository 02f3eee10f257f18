package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/flexit/internal/capture"
	"github.com/ayusman/flexit/internal/config"
	"github.com/ayusman/flexit/internal/detector"
	"github.com/ayusman/flexit/internal/logging"
	"github.com/ayusman/flexit/internal/metrics"
	"github.com/ayusman/flexit/internal/server"
	"github.com/ayusman/flexit/internal/server/api"
	"github.com/ayusman/flexit/internal/session"
	"github.com/ayusman/flexit/internal/store"
	"github.com/ayusman/flexit/internal/tracker"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %s", err)
	}

	logCloser := logging.Setup(logging.SetupParams{
		LogFileName:   cfg.LogFile,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})
	defer logCloser.Close()

	log.Info("flexit - pose tracking and rep counting")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager(cfg.MetricsNamespace, cfg.MetricsSubsystem, reg)

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create data directory: %s", err)
		}
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize store: %s", err)
	}
	defer st.Close()

	sessions := session.NewManager(session.ManagerConfig{
		Thresholds: cfg.Thresholds(),
		Recorder:   st,
		Metrics:    metricsManager,
	})
	if err := api.LoadThresholds(st, sessions); err != nil {
		log.Warnf("ignoring saved thresholds: %s", err)
	}

	t := tracker.New(tracker.Config{
		Camera:   capture.NewCamera(cfg.Camera),
		Detector: newDetector(cfg.Detector),
		Sessions: sessions,
		Options:  session.Options{MinVisibility: cfg.MinVisibility},
	})
	if cfg.Tracking {
		if err := t.Start(); err != nil {
			log.Errorf("camera tracking unavailable: %s", err)
		}
	}

	staticDir := cfg.StaticDir
	if info, err := os.Stat(staticDir); err != nil || !info.IsDir() {
		log.Warnf("static dir %q not found, web client disabled", staticDir)
		staticDir = ""
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Sessions:  sessions,
		Tracker:   t,
		Metrics:   metricsManager,
		Gatherer:  reg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
		log.Errorf("server failed: %s", err)
	}

	if t.Running() {
		if _, err := t.Stop(); err != nil {
			log.Errorf("stop tracker: %s", err)
		}
	}
	if err := sessions.EndAll(); err != nil {
		log.Errorf("record open sessions: %s", err)
	}

	log.Info("bye")
}

// newDetector prefers the MediaPipe subprocess and falls back to a mock that
// never sees anyone.
func newDetector(cfg detector.Config) detector.Detector {
	mp, err := detector.NewMediaPipeDetector(cfg)
	if err == nil {
		log.Info("using MediaPipe pose detection")
		return mp
	}

	log.Warnf("MediaPipe not available (%s), using mock detector", err)
	return detector.NewMockDetector()
}
