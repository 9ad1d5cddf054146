package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-playground/engine"
	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/config"
	"github.com/Carmen-Shannon/oxy-playground/engine/logger"
	"github.com/Carmen-Shannon/oxy-playground/engine/preview"
	"github.com/Carmen-Shannon/oxy-playground/engine/profiler"
	"github.com/Carmen-Shannon/oxy-playground/engine/reload"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/Carmen-Shannon/oxy-playground/engine/watcher"
	"github.com/Carmen-Shannon/oxy-playground/engine/window"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "Path to a config file (yaml, json or toml)")
	scenePath := flag.String("scene", "", "Scene descriptor (overrides scene.path)")
	flag.Parse()

	v, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *scenePath != "" {
		v.Set("scene.path", *scenePath)
	}
	if flag.NArg() > 0 {
		v.Set("scene.path", flag.Arg(0))
	}
	cfg := config.FromViper(v)

	if err := logger.Init("playground", v); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.L()

	if err := run(cfg, log); err != nil {
		log.Error("playground stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	idle := time.Duration(-1)
	if cfg.Scene.PollInterval > 0 {
		idle = cfg.Scene.PollInterval
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithRedrawInterval(idle),
	)
	if err != nil {
		return err
	}

	gpu, err := renderer.NewRenderer(win.SurfaceDescriptor(), win.Width(), win.Height(),
		renderer.WithVSync(cfg.Window.VSync),
		renderer.WithLogger(log.Named("renderer")),
	)
	if err != nil {
		return err
	}
	defer gpu.Release()

	pool := worker.NewDynamicWorkerPool(cfg.Workers, 256, time.Second)
	coordinator := reload.NewCoordinator(cfg.Scene.Path,
		reload.WithCompiler(gpu),
		reload.WithUploader(gpu),
		reload.WithWorkerPool(pool),
		reload.WithSkinInfluences(cfg.Animation.SkinInfluences),
		reload.WithTracker(watcher.NewTracker(watcher.WithLogger(log.Named("watcher")))),
		reload.WithLogger(log.Named("reload")),
	)

	eng := engine.NewEngine(coordinator,
		engine.WithWindow(win),
		engine.WithRenderer(gpu),
		engine.WithCamera(camera.NewCamera(camera.WithViewport(win.Width(), win.Height()))),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithLogger(log.Named("profiler")))),
		engine.WithPreview(preview.NewRenderer(
			preview.WithSize(cfg.Preview.Width, cfg.Preview.Height),
			preview.WithSupersample(cfg.Preview.Supersample),
		), cfg.Preview.Output),
		engine.WithAnimation(cfg.Animation),
		engine.WithIdleInterval(idle),
		engine.WithLogger(log.Named("engine")),
	)

	log.Info("playground started",
		zap.String("scene", cfg.Scene.Path),
		zap.Int("workers", cfg.Workers),
		zap.Bool("vsync", cfg.Window.VSync),
	)
	return eng.Run()
}
