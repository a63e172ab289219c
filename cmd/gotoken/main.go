// GoToken — circular avatar token renderer.
//
// Usage:
//
//	gotoken render -o <file> --image <path> [options]
//	gotoken sizes
//	gotoken serve [--addr :8080]
//	gotoken init
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/xob0t/GoToken/clients/server"
	"github.com/xob0t/GoToken/pkg/border"
	"github.com/xob0t/GoToken/pkg/canvas"
	"github.com/xob0t/GoToken/pkg/codec"
	"github.com/xob0t/GoToken/pkg/config"
	"github.com/xob0t/GoToken/pkg/render"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "render":
		err = runRender(args)
	case "sizes":
		err = runSizes(args)
	case "serve":
		err = runServe(args)
	case "init":
		err = runInit(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		if strings.HasPrefix(cmd, "-") {
			// Bare flags render.
			err = runRender(os.Args[1:])
		} else {
			err = fmt.Errorf("unknown command %q", cmd)
		}
	}
	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		fatal(err)
	}
}

// setup loads the config and builds a processor with the configured atlas.
func setup(configPath string) (*config.Config, *render.Processor, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	render.SetLogger(cfg.Logger(os.Stderr))

	opts, err := cfg.RenderOptions()
	if err != nil {
		return nil, nil, err
	}
	return cfg, render.NewProcessor(opts), nil
}

func runRender(args []string) error {
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)

	var (
		output, imagePath, maskPath, configPath string
		size, ringColor                         string
		atlasPath, atlasMeta, bundlePath        string
		canvasSize, radius                      uint32
		oversized, flip, ring                   bool
		scale                                   float32
		posX, posY                              int32
	)

	fs.StringVarP(&output, "output", "o", "", "Output file path (.webp or .png)")
	fs.StringVar(&imagePath, "image", "", "Subject picture")
	fs.StringVar(&maskPath, "mask", "", "Mask: raw RGBA (size*size*4 bytes) or an image of canvas size")
	fs.StringVar(&size, "size", "medium", "Size preset: "+strings.Join(canvas.PresetNames(), ", "))
	fs.Uint32Var(&canvasSize, "canvas", 0, "Explicit canvas size in pixels (overrides --size)")
	fs.Uint32Var(&radius, "radius", 0, "Stencil radius with --canvas (default canvas/3)")
	fs.BoolVar(&oversized, "oversized", false, "Double the canvas around the token")
	fs.Float32Var(&scale, "scale", 1, "Picture scale factor")
	fs.Int32Var(&posX, "x", 0, "Picture horizontal offset")
	fs.Int32Var(&posY, "y", 0, "Picture vertical offset")
	fs.BoolVar(&flip, "flip", false, "Mirror the picture horizontally")
	fs.BoolVar(&ring, "ring", true, "Draw the ring")
	fs.StringVar(&ringColor, "ring-color", "", "Ring tint: #rrggbb or 'auto' (default: atlas color)")
	fs.StringVar(&atlasPath, "atlas", "", "Ring atlas sprite sheet")
	fs.StringVar(&atlasMeta, "atlas-meta", "", "Ring atlas metadata JSON")
	fs.StringVar(&bundlePath, "bundle", "", "Ring atlas bundle (.zip)")
	fs.StringVar(&configPath, "config", "", "Config file (default $"+config.EnvVar+")")
	fs.Usage = printUsage

	if err := fs.Parse(args); err != nil {
		return err
	}
	if output == "" || imagePath == "" {
		printUsage()
		return fmt.Errorf("--output and --image are required")
	}

	cfg, p, err := setup(configPath)
	if err != nil {
		return err
	}
	if bundlePath != "" || atlasPath != "" || atlasMeta != "" {
		cfg.Border = config.BorderConfig{Image: atlasPath, Meta: atlasMeta, Bundle: bundlePath}
		if bundlePath == "" && (atlasPath == "" || atlasMeta == "") {
			return fmt.Errorf("--atlas and --atlas-meta must be given together")
		}
	}
	if err := cfg.LoadBorder(p); err != nil {
		return err
	}

	s := render.Settings{
		Transform:  canvas.Transform{PosX: posX, PosY: posY, Scale: scale, Flipped: flip},
		Dimensions: canvas.Dimensions{Oversized: oversized},
		Ring:       ring,
		RingColor:  ringColor,
	}
	if fs.Changed("canvas") {
		s.Dimensions.Size = canvasSize
		s.Dimensions.StencilRadius = radius
		if !fs.Changed("radius") {
			s.Dimensions.StencilRadius = uint32(float64(canvasSize)/3 + 0.5)
		}
	} else {
		s.Preset = size
	}
	if s, err = s.Resolved(); err != nil {
		return err
	}

	req := render.Request{Settings: s}
	if req.Image, err = os.ReadFile(imagePath); err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if maskPath != "" {
		data, err := os.ReadFile(maskPath)
		if err != nil {
			return fmt.Errorf("read mask: %w", err)
		}
		if req.Mask, err = codec.MaskBytes(data, int(s.Dimensions.Size)); err != nil {
			return err
		}
	}

	img, err := p.RenderImage(req)
	if err != nil {
		return err
	}
	if err := codec.WriteFile(output, img, p.Options().Encode); err != nil {
		return err
	}
	fmt.Printf("Done: %s (%dx%d)\n", output, s.Dimensions.Size, s.Dimensions.Size)
	return nil
}

func runSizes(args []string) error {
	fs := pflag.NewFlagSet("sizes", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCANVAS\tRADIUS\tOVERSIZED CANVAS")
	for _, name := range canvas.PresetNames() {
		d, _ := canvas.FromPreset(name, false)
		o, _ := canvas.FromPreset(name, true)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", name, d.Size, d.StencilRadius, o.Size)
	}
	return tw.Flush()
}

func runServe(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	var addr, configPath string
	var open bool
	fs.StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	fs.StringVar(&configPath, "config", "", "Config file (default $"+config.EnvVar+")")
	fs.BoolVar(&open, "open", false, "Open the API in a browser")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, p, err := setup(configPath)
	if err != nil {
		return err
	}
	if err := cfg.LoadBorder(p); err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(p, cfg.Server.MaxUploadMB, render.Logger())
	return srv.Run(ctx, addr, open)
}

func runInit(args []string) error {
	fs := pflag.NewFlagSet("init", pflag.ContinueOnError)
	var configOut, metaOut string
	var force bool
	fs.StringVar(&configOut, "config", "gotoken.yaml", "Output path for the sample config")
	fs.StringVar(&metaOut, "meta", "rings.json", "Output path for the sample atlas metadata")
	fs.BoolVar(&force, "force", false, "Overwrite existing files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	for path, content := range map[string]string{
		configOut: config.Example,
		metaOut:   border.ExampleMetadata(),
	} {
		if !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force)", path)
			}
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	fmt.Printf("Created: %s, %s\n", configOut, metaOut)
	fmt.Println("Run: gotoken render -o token.webp --image face.png --config " + configOut)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`GoToken — Circular Avatar Token Renderer

USAGE:
    gotoken render -o <file> --image <path> [options]
    gotoken sizes
    gotoken serve [--addr :8080] [--config <path>] [--open]
    gotoken init [--config gotoken.yaml] [--meta rings.json] [--force]

RENDER:
    -o, --output <path>    Output file (.webp or .png)
    --image <path>         Subject picture (png, jpeg, gif, webp, bmp, tiff)
    --mask <path>          Raw RGBA mask or mask image; painted pixels stay over the ring
    --size <name>          Size preset (default: medium); see 'gotoken sizes'
    --canvas <px>          Explicit canvas size, with optional --radius <px>
    --oversized            Double the canvas around the token
    --scale <f>            Picture scale (default: 1)
    --x, --y <px>          Picture offset
    --flip                 Mirror the picture
    --ring=false           Skip the ring
    --ring-color <c>       #rrggbb or 'auto'
    --atlas <png> --atlas-meta <json> | --bundle <zip>
                           Ring atlas (default: config, then plain fallback ring)
    --config <path>        Config file (default: $GOTOKEN_CONFIG)

EXAMPLES:
    gotoken init
    gotoken sizes
    gotoken render -o token.webp --image face.png
    gotoken render -o token.png --image face.png --size large --scale 1.5 --y -40
    gotoken render -o token.webp --image face.png --bundle rings.zip --ring-color auto
    gotoken serve --addr :9000
`)
}
