// Package config loads playground settings from an optional config file, environment
// variables prefixed with OXY_ and built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. OXY_SCENE_PATH.
const EnvPrefix = "OXY"

// Config is the typed view of the settings the binaries consume.
type Config struct {
	Scene     SceneConfig
	Window    WindowConfig
	Animation AnimationConfig
	Preview   PreviewConfig
	Workers   int
}

// SceneConfig locates the scene descriptor and controls how often it is polled.
type SceneConfig struct {
	Path         string
	PollInterval time.Duration
}

// WindowConfig sizes the playground window.
type WindowConfig struct {
	Width  int
	Height int
	Title  string
	VSync  bool
}

// AnimationConfig controls clip playback.
type AnimationConfig struct {
	InPlace        bool
	ShowSkeleton   bool
	SkinInfluences int
	Speed          float64
}

// PreviewConfig controls the offline pose preview renderer.
type PreviewConfig struct {
	Width       int
	Height      int
	Supersample int
	Frames      int
	Output      string
}

// Load reads settings into a new viper instance. An empty path skips the config file and
// uses defaults plus environment overrides only.
//
// Parameters:
//   - path: the config file path (any format viper understands), or ""
//
// Returns:
//   - *viper.Viper: the populated configuration
//   - error: an error if the file exists but cannot be read or parsed
func Load(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return v, nil
}

// SetDefaults installs the default value of every key the playground reads.
//
// Parameters:
//   - v: the viper instance to populate
func SetDefaults(v *viper.Viper) {
	v.SetDefault("scene.path", "scene.json")
	v.SetDefault("scene.poll_interval_ms", 250)

	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.title", "oxy playground")
	v.SetDefault("window.vsync", true)

	v.SetDefault("animation.in_place", false)
	v.SetDefault("animation.show_skeleton", true)
	v.SetDefault("animation.skin_influences", 4)
	v.SetDefault("animation.speed", 1.0)

	v.SetDefault("preview.width", 256)
	v.SetDefault("preview.height", 256)
	v.SetDefault("preview.supersample", 2)
	v.SetDefault("preview.frames", 1)
	v.SetDefault("preview.output", "pose.webp")

	v.SetDefault("workers", 4)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.stdout", true)
	v.SetDefault("logger.dir", "")
	v.SetDefault("logger.rotation", true)
	v.SetDefault("logger.maxsize", 10)
	v.SetDefault("logger.maxage", 7)
	v.SetDefault("logger.maxbackups", 3)
	v.SetDefault("logger.localtime", true)
	v.SetDefault("logger.compress", false)
}

// FromViper maps v into a Config, clamping values that would break consumers.
//
// Parameters:
//   - v: the populated configuration
//
// Returns:
//   - Config: the typed settings
func FromViper(v *viper.Viper) Config {
	c := Config{
		Scene: SceneConfig{
			Path:         v.GetString("scene.path"),
			PollInterval: time.Duration(v.GetInt("scene.poll_interval_ms")) * time.Millisecond,
		},
		Window: WindowConfig{
			Width:  v.GetInt("window.width"),
			Height: v.GetInt("window.height"),
			Title:  v.GetString("window.title"),
			VSync:  v.GetBool("window.vsync"),
		},
		Animation: AnimationConfig{
			InPlace:        v.GetBool("animation.in_place"),
			ShowSkeleton:   v.GetBool("animation.show_skeleton"),
			SkinInfluences: v.GetInt("animation.skin_influences"),
			Speed:          v.GetFloat64("animation.speed"),
		},
		Preview: PreviewConfig{
			Width:       v.GetInt("preview.width"),
			Height:      v.GetInt("preview.height"),
			Supersample: v.GetInt("preview.supersample"),
			Frames:      v.GetInt("preview.frames"),
			Output:      v.GetString("preview.output"),
		},
		Workers: v.GetInt("workers"),
	}

	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Animation.SkinInfluences < 1 {
		c.Animation.SkinInfluences = 1
	}
	if c.Animation.SkinInfluences > 4 {
		c.Animation.SkinInfluences = 4
	}
	if c.Preview.Supersample < 1 {
		c.Preview.Supersample = 1
	}
	if c.Preview.Frames < 1 {
		c.Preview.Frames = 1
	}
	if c.Scene.PollInterval < 0 {
		c.Scene.PollInterval = 0
	}
	return c
}
