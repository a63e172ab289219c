// Package config loads GoToken settings from a YAML file.
//
// The file is chosen by the --config flag or, failing that, the
// GOTOKEN_CONFIG environment variable. Without either, Default is used.
// Fields missing from the file keep their default values.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xob0t/GoToken/pkg/border"
	"github.com/xob0t/GoToken/pkg/canvas"
	"github.com/xob0t/GoToken/pkg/codec"
	"github.com/xob0t/GoToken/pkg/render"
	"github.com/xob0t/GoToken/pkg/shadow"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "GOTOKEN_CONFIG"

// Config is the top-level configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Render RenderConfig `yaml:"render"`
	Border BorderConfig `yaml:"border"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`

	// MaxUploadMB caps the size of a multipart request body.
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// RenderConfig holds the processor-wide render parameters.
type RenderConfig struct {
	// Quality is the lossy WebP quality, 0..100.
	Quality float32 `yaml:"quality"`

	// Lossless switches WebP output to lossless.
	Lossless bool `yaml:"lossless"`

	// Resample names the resampling filter: catmullrom, bilinear or lanczos3.
	Resample string `yaml:"resample"`

	FallbackRingWidth int    `yaml:"fallback_ring_width"`
	FallbackRingColor string `yaml:"fallback_ring_color"`

	ImageShadow ShadowConfig `yaml:"image_shadow"`
	RingShadow  ShadowConfig `yaml:"ring_shadow"`
}

// ShadowConfig is the YAML form of shadow.Spec.
type ShadowConfig struct {
	Color   string  `yaml:"color"`
	Opacity float32 `yaml:"opacity"`
	Blur    float32 `yaml:"blur"`
	OffsetX int32   `yaml:"offset_x"`
	OffsetY int32   `yaml:"offset_y"`
}

// BorderConfig names a ring atlas to load at startup. Bundle wins over
// Image and Meta when both are set.
type BorderConfig struct {
	Image  string `yaml:"image"`
	Meta   string `yaml:"meta"`
	Bundle string `yaml:"bundle"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 20,
		},
		Render: RenderConfig{
			Quality:           codec.DefaultOptions.Quality,
			Resample:          canvas.CatmullRom.Name(),
			FallbackRingWidth: 20,
			FallbackRingColor: "#dcdcdc",
			ImageShadow:       shadowConfig(shadow.ImageDefault),
			RingShadow:        shadowConfig(shadow.RingDefault),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func shadowConfig(s shadow.Spec) ShadowConfig {
	return ShadowConfig{
		Color:   fmt.Sprintf("#%02x%02x%02x", s.Color.R, s.Color.G, s.Color.B),
		Opacity: s.Opacity,
		Blur:    s.BlurRadius,
		OffsetX: s.OffsetX,
		OffsetY: s.OffsetY,
	}
}

// Load reads the config at path. An empty path falls back to $GOTOKEN_CONFIG,
// and then to Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePaths makes relative border paths relative to the config file.
func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{&c.Border.Image, &c.Border.Meta, &c.Border.Bundle} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate checks every field that can be checked without touching disk.
func (c *Config) Validate() error {
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}
	if !(c.Render.Quality >= 0 && c.Render.Quality <= 100) {
		return fmt.Errorf("render.quality %v out of range [0,100]", c.Render.Quality)
	}
	if c.Render.FallbackRingWidth <= 0 {
		return fmt.Errorf("render.fallback_ring_width must be positive")
	}
	if _, err := c.RenderOptions(); err != nil {
		return err
	}
	if (c.Border.Image == "") != (c.Border.Meta == "") {
		return fmt.Errorf("border.image and border.meta must be set together")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// RenderOptions converts the render section into processor options.
func (c *Config) RenderOptions() (render.Options, error) {
	r := c.Render
	opts := render.DefaultOptions()

	res, err := canvas.ParseResampler(r.Resample)
	if err != nil {
		return opts, fmt.Errorf("render.resample: %w", err)
	}
	opts.Resampler = res

	if opts.ImageShadow, err = r.ImageShadow.spec(); err != nil {
		return opts, fmt.Errorf("render.image_shadow: %w", err)
	}
	if opts.RingShadow, err = r.RingShadow.spec(); err != nil {
		return opts, fmt.Errorf("render.ring_shadow: %w", err)
	}
	if opts.FallbackRingColor, err = border.ParseTint(r.FallbackRingColor); err != nil {
		return opts, fmt.Errorf("render.fallback_ring_color: %w", err)
	}

	opts.FallbackRingWidth = r.FallbackRingWidth
	opts.Encode = codec.Options{Format: codec.FormatWebP, Quality: r.Quality, Lossless: r.Lossless}
	return opts, nil
}

func (s ShadowConfig) spec() (shadow.Spec, error) {
	c, err := border.ParseTint(s.Color)
	if err != nil {
		return shadow.Spec{}, err
	}
	spec := shadow.Spec{
		Color:      c,
		Opacity:    s.Opacity,
		BlurRadius: s.Blur,
		OffsetX:    s.OffsetX,
		OffsetY:    s.OffsetY,
	}
	return spec, spec.Validate()
}

// LoadBorder loads the configured atlas into p. Nothing happens when no
// atlas is configured.
func (c *Config) LoadBorder(p *render.Processor) error {
	b := c.Border
	switch {
	case b.Bundle != "":
		a, err := border.OpenBundle(b.Bundle)
		if err != nil {
			return err
		}
		p.SetAtlas(a)
	case b.Image != "":
		sheet, err := os.ReadFile(b.Image)
		if err != nil {
			return fmt.Errorf("read border image: %w", err)
		}
		meta, err := os.ReadFile(b.Meta)
		if err != nil {
			return fmt.Errorf("read border meta: %w", err)
		}
		return p.LoadBorder(sheet, meta)
	}
	return nil
}

// Logger builds a slog logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// Example is the annotated config written by `gotoken init`.
const Example = `# GoToken configuration.
server:
  addr: ":8080"
  max_upload_mb: 20

render:
  quality: 90            # lossy WebP quality, 0..100
  lossless: false
  resample: catmullrom   # catmullrom | bilinear | lanczos3
  fallback_ring_width: 20
  fallback_ring_color: "#dcdcdc"
  image_shadow: { color: "#000000", opacity: 0.4, blur: 3.0, offset_x: 5, offset_y: 5 }
  ring_shadow:  { color: "#000000", opacity: 0.8, blur: 10.0, offset_x: 7, offset_y: 12 }

# Optional ring atlas loaded at startup. Paths are relative to this file.
border:
  image: ""
  meta: ""
  bundle: ""

log:
  level: info   # debug | info | warn | error
  format: text  # text | json
`
