package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/engMANP/carat/internal/calllog"
	"github.com/engMANP/carat/internal/collector"
	"github.com/engMANP/carat/internal/config"
	dbussvc "github.com/engMANP/carat/internal/dbus"
	"github.com/engMANP/carat/internal/registry"
	"github.com/engMANP/carat/internal/sampler"
	"github.com/engMANP/carat/internal/storage"
)

// topicHandler wraps an slog.Handler and filters records by a "topic" attribute.
// Records without a topic attribute always pass through (startup messages, errors).
// Records with a topic only pass if that topic is enabled.
type topicHandler struct {
	inner  slog.Handler
	topics map[string]bool
	topic  string // set when WithAttrs includes a "topic" key
}

func (h *topicHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.inner.Enabled(context.Background(), level)
}

func (h *topicHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.topics["all"] {
		return h.inner.Handle(ctx, r)
	}
	topic := h.topic
	if topic == "" {
		// Check record-level attrs as fallback.
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == "topic" {
				topic = a.Value.String()
				return false
			}
			return true
		})
	}
	if topic != "" && !h.topics[topic] {
		return nil
	}
	return h.inner.Handle(ctx, r)
}

func (h *topicHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	topic := h.topic
	for _, a := range attrs {
		if a.Key == "topic" {
			topic = a.Value.String()
		}
	}
	return &topicHandler{inner: h.inner.WithAttrs(attrs), topics: h.topics, topic: topic}
}

func (h *topicHandler) WithGroup(name string) slog.Handler {
	return &topicHandler{inner: h.inner.WithGroup(name), topics: h.topics, topic: h.topic}
}

func main() {
	configPath := flag.String("config", "/etc/carat-sampler/config.toml", "path to the TOML config file")
	verbose := flag.Bool("verbose", false, "enable all verbose logging (equivalent to -log=all)")
	logFlag := flag.String("log", "", "comma-separated log topics: sample,battery,calls,dbus (or 'all')")
	resetDB := flag.Bool("reset-db", false, "delete the database and start fresh")
	flag.Parse()

	topics := make(map[string]bool)
	if *verbose {
		topics["all"] = true
	}
	if *logFlag != "" {
		for _, t := range strings.Split(*logFlag, ",") {
			topics[strings.TrimSpace(t)] = true
		}
	}

	handler := &topicHandler{
		inner:  slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		topics: topics,
	}
	logger := slog.New(handler)

	sampleLog := logger.With("topic", "sample")
	batteryLog := logger.With("topic", "battery")
	callsLog := logger.With("topic", "calls")

	cfg, err := config.Load(*configPath)
	if os.IsNotExist(err) {
		logger.Info("no config file, using defaults", "path", *configPath)
		cfg = config.DefaultConfig()
	} else if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755); err != nil {
		logger.Error("create data dir", "err", err)
		os.Exit(1)
	}

	if *resetDB {
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(cfg.Storage.DBPath + suffix); err != nil && !os.IsNotExist(err) {
				logger.Error("delete database", "err", err)
				os.Exit(1)
			}
		}
		logger.Info("database deleted", "path", cfg.Storage.DBPath)
		return
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	var calls calllog.Source
	if cfg.Storage.CallLogPath != "" {
		src, err := calllog.OpenSource(cfg.Storage.CallLogPath)
		if err != nil {
			callsLog.Warn("call log unavailable", "path", cfg.Storage.CallLogPath, "err", err)
		} else {
			defer src.Close()
			calls = src
		}
	}

	reg := registry.Load(cfg.Registry.SystemAppDirs, cfg.Registry.UserAppDirs)
	logger.Info("application registry loaded", "entries", reg.Len())

	asm := sampler.New(
		sampler.PlatformReaders(),
		collector.StatSource{},
		calls,
		reg,
		time.Duration(cfg.Sampler.RateWindowMS)*time.Millisecond,
		sampleLog,
	)

	worker := sampler.NewWorker(asm,
		time.Duration(cfg.Sampler.AssembleTimeoutSeconds)*time.Second,
		func(s *sampler.Sample) {
			if err := store.InsertSample(s); err != nil {
				logger.Error("store sample", "err", err)
				return
			}
			sampleLog.Info("sample stored",
				"uuid", s.UUID,
				"trigger", s.TriggeredBy,
				"battery_level", s.Battery.Level,
				"cpu_usage", s.CPU.Usage,
				"cpu_usage_valid", s.CPU.UsageValid)
		},
		sampleLog,
	)
	worker.Start()
	defer worker.Close()

	svc := dbussvc.NewService(store, worker.Submit, worker.Latest)
	conn, err := svc.Export()
	if err != nil {
		logger.Error("export dbus service", "err", err)
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("D-Bus service registered", "name", "org.caratproject.Sampler")

	// Battery change events trigger samples between ticks.
	var batteryCh <-chan struct{}
	watcher, err := collector.NewBatteryWatcher(batteryLog)
	if err != nil {
		logger.Warn("battery watcher unavailable", "err", err)
	} else {
		batteryCh = watcher.Changed()
		defer watcher.Close()
	}

	ticker := time.NewTicker(time.Duration(cfg.Sampler.TickIntervalSeconds) * time.Second)
	defer ticker.Stop()

	cleanup := time.NewTicker(time.Duration(cfg.Cleanup.IntervalHours) * time.Hour)
	defer cleanup.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("carat-sampler started",
		"tick_interval_secs", cfg.Sampler.TickIntervalSeconds,
		"rate_window_ms", cfg.Sampler.RateWindowMS)
	worker.Submit(sampler.TriggerTimer)
	for {
		select {
		case <-ticker.C:
			worker.Submit(sampler.TriggerTimer)
		case <-batteryCh:
			batteryLog.Info("battery change signal")
			worker.Submit(sampler.TriggerBatteryChange)
		case <-cleanup.C:
			before := time.Now().AddDate(0, 0, -cfg.Cleanup.RetentionDays).Unix()
			deleted, err := store.DeleteOlderThan(before)
			if err != nil {
				logger.Error("cleanup", "err", err)
			} else if deleted > 0 {
				logger.Info("old samples deleted", "count", deleted)
			}
		case <-sigCh:
			logger.Info("shutting down")
			return
		}
	}
}
