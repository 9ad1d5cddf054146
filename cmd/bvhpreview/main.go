package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-playground/engine/animation"
	"github.com/Carmen-Shannon/oxy-playground/engine/bvh"
	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/config"
	"github.com/Carmen-Shannon/oxy-playground/engine/kinematics"
	"github.com/Carmen-Shannon/oxy-playground/engine/logger"
	"github.com/Carmen-Shannon/oxy-playground/engine/preview"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "Path to a config file (yaml, json or toml)")
	output := flag.String("output", "", "Output file; with -frames > 1 a frame number is inserted before the extension")
	frames := flag.Int("frames", 0, "Number of frames spread evenly over the clip (default: preview.frames)")
	azimuth := flag.Float64("azimuth", 0, "View azimuth in degrees")
	inclination := flag.Float64("inclination", 0, "View inclination in degrees")
	inPlace := flag.Bool("in-place", false, "Reset root translations to their rest offsets")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: bvhpreview [flags] motion.bvh")
		os.Exit(2)
	}

	v, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *output != "" {
		v.Set("preview.output", *output)
	}
	if *frames > 0 {
		v.Set("preview.frames", *frames)
	}
	if *inPlace {
		v.Set("animation.in_place", true)
	}
	cfg := config.FromViper(v)

	if err := logger.Init("bvhpreview", v); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	view := camera.OrbitingWorldToCamera(camera.DefaultEyeDistance, *azimuth*degrees, *inclination*degrees)
	if err := render(flag.Arg(0), cfg, view); err != nil {
		logger.Error("preview failed", zap.String("path", flag.Arg(0)), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

const degrees = math.Pi / 180

func render(path string, cfg config.Config, view mgl64.Mat4) error {
	skeleton, clip, err := bvh.NewParser().ParseFile(path)
	if err != nil {
		return err
	}
	logger.Info("clip loaded",
		zap.String("path", path),
		zap.Int("bones", skeleton.Len()),
		zap.Int("frames", clip.FrameCount()),
		zap.Float64("seconds", clip.Duration()),
	)

	sampler := animation.NewSampler(animation.WithInPlace(cfg.Animation.InPlace))
	r := preview.NewRenderer(
		preview.WithSize(cfg.Preview.Width, cfg.Preview.Height),
		preview.WithSupersample(cfg.Preview.Supersample),
	)

	n := cfg.Preview.Frames
	pool := worker.NewDynamicWorkerPool(cfg.Workers, 256, time.Second)
	var wg sync.WaitGroup
	errs := make([]error, n)
	start := time.Now()
	for i := range n {
		t := clip.Duration() * float64(i) / float64(n)
		out := outputName(cfg.Preview.Output, i, n)
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				errs[i] = writeFrame(r, out, sampler, skeleton, clip, t, view)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	logger.Info("previews written", zap.Int("frames", n), zap.Duration("elapsed", time.Since(start)))
	return nil
}

func writeFrame(r preview.Renderer, out string, sampler animation.Sampler, skeleton *animation.Skeleton, clip *animation.Clip, t float64, view mgl64.Mat4) error {
	local := animation.SampleFor(sampler, skeleton, clip, t)
	if local == nil {
		local = animation.RestPose(skeleton)
	}
	world, err := kinematics.EvaluateTRS(skeleton, local)
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := r.Encode(f, kinematics.Segments(skeleton, world), view); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// outputName inserts a zero-padded frame number before the extension when more than one
// frame is written.
func outputName(base string, i, n int) string {
	if n == 1 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(base, ext), i, ext)
}
