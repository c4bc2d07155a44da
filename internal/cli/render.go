package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qretty/internal/config"
	"github.com/cristianadrielbraun/qretty/pkg/encoder"
	"github.com/cristianadrielbraun/qretty/pkg/qretty"
	"github.com/cristianadrielbraun/qretty/pkg/raster"
	"github.com/cristianadrielbraun/qretty/pkg/verify"
)

// renderOpts holds the render flags. Flags left unset keep the configured
// value.
type renderOpts struct {
	output string
	data   string
	check  bool

	level      string
	size       int
	pixelScale float64
	style      string
	effects    bool
	fg, bg     string
	encoder    string
	rasterizer string

	gradient   string
	from, to   string
	background bool
	strength   float64
	softness   float64

	icon         string
	iconMode     string
	iconScale    float64
	borderRadius float64
}

func newRenderCmd(root *rootOpts) *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a styled QR code to a PNG or JPEG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg)
			return runRender(cmd.Context(), cmd, cfg, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (.png, .jpg)")
	f.StringVarP(&opts.data, "data", "d", "", "payload to encode")
	f.BoolVar(&opts.check, "check", false, "verify the written symbol and print its readability")
	f.StringVarP(&opts.level, "level", "l", "", "error correction level: L, M, Q, H")
	f.IntVarP(&opts.size, "size", "s", 0, "edge length in logical pixels")
	f.Float64Var(&opts.pixelScale, "pixel-scale", 0, "device pixels per logical pixel")
	f.StringVar(&opts.style, "style", "", "style preset (blocks, dots) or rules such as dot:0.8,1;chain:0.4")
	f.BoolVarP(&opts.effects, "effects", "e", false, "apply gradient, shading and shadow")
	f.StringVar(&opts.fg, "fg", "", "module colour (#rrggbb)")
	f.StringVar(&opts.bg, "bg", "", "background colour (#rrggbb)")
	f.StringVar(&opts.encoder, "encoder", "", "symbol encoder: zxing, yeqown")
	f.StringVar(&opts.rasterizer, "rasterizer", "", "path rasterizer: gg, rasterx")
	f.StringVar(&opts.gradient, "gradient", "", "gradient kind: linear, radial")
	f.StringVar(&opts.from, "from", "", "gradient start colour")
	f.StringVar(&opts.to, "to", "", "gradient end colour")
	f.BoolVar(&opts.background, "background", false, "show the grey background layer")
	f.Float64Var(&opts.strength, "background-strength", 0, "background layer strength (0..1)")
	f.Float64Var(&opts.softness, "shadow-softness", 0, "shadow blur softness (0..1)")
	f.StringVar(&opts.icon, "icon", "", "icon image (png, jpeg, gif, webp, svg)")
	f.StringVar(&opts.iconMode, "icon-mode", "", "icon insertion: over, inside (default inside with --icon)")
	f.Float64Var(&opts.iconScale, "icon-scale", 0, "icon footprint scale (0..1)")
	f.Float64Var(&opts.borderRadius, "border-radius", 0, "cleared border around the icon")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// apply copies the flags the user set onto cfg.
func (o *renderOpts) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("level") {
		cfg.Render.Level = o.level
	}
	if set("size") {
		cfg.Render.Size = o.size
	}
	if set("pixel-scale") {
		cfg.Render.PixelScale = o.pixelScale
	}
	if set("style") {
		cfg.Render.Style = o.style
	}
	if set("effects") {
		cfg.Render.Effects = o.effects
	}
	if set("fg") {
		cfg.Render.Foreground = o.fg
	}
	if set("bg") {
		cfg.Render.Background = o.bg
	}
	if set("encoder") {
		cfg.Render.Encoder = o.encoder
	}
	if set("rasterizer") {
		cfg.Render.Rasterizer = o.rasterizer
	}
	if set("gradient") {
		cfg.Appearance.Kind = o.gradient
	}
	if set("from") {
		cfg.Appearance.From = o.from
	}
	if set("to") {
		cfg.Appearance.To = o.to
	}
	if set("background") {
		cfg.Appearance.Background = o.background
	}
	if set("background-strength") {
		cfg.Appearance.BackgroundStrength = o.strength
	}
	if set("shadow-softness") {
		cfg.Appearance.ShadowSoftness = o.softness
	}
	if set("icon") {
		cfg.Icon.Path = o.icon
		if cfg.Icon.Mode == "" || cfg.Icon.Mode == "none" {
			cfg.Icon.Mode = "inside"
		}
	}
	if set("icon-mode") {
		cfg.Icon.Mode = o.iconMode
	}
	if set("icon-scale") {
		cfg.Icon.Scale = o.iconScale
	}
	if set("border-radius") {
		cfg.Icon.BorderRadius = o.borderRadius
	}
}

func runRender(ctx context.Context, cmd *cobra.Command, cfg config.Config, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}
	p.Payload = []byte(opts.data)
	if cfg.Icon.Path != "" {
		if p.Icon.Data, err = os.ReadFile(cfg.Icon.Path); err != nil {
			return fmt.Errorf("reading icon: %w", err)
		}
	}

	format, err := imaging.FormatFromFilename(opts.output)
	if err != nil || (format != imaging.PNG && format != imaging.JPEG) {
		return fmt.Errorf("output %s: must end in .png, .jpg or .jpeg", opts.output)
	}
	enc, err := encoder.New(cfg.Render.Encoder)
	if err != nil {
		return err
	}
	canvas, err := raster.New(cfg.Render.Rasterizer)
	if err != nil {
		return err
	}

	g := qretty.New(p,
		qretty.WithEncoder(enc),
		qretty.WithCanvas(canvas),
		qretty.WithLogger(logger),
	)
	logger.Debug("rendering", "bytes", len(p.Payload), "level", p.Level, "size", p.ScaledSize(),
		"style", p.Style.String(), "effects", p.Effects, "icon", p.Icon.Mode)

	f, err := os.Create(opts.output)
	if err != nil {
		return err
	}
	if err := g.Encode(f, format); err != nil {
		f.Close()
		os.Remove(opts.output)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	prog.done("Rendered " + opts.output)

	out := cmd.OutOrStdout()
	printSuccess(out, "Wrote QR code")
	printFile(out, opts.output)
	printKeyValue(out, "level", p.Level.String())
	printKeyValue(out, "size", fmt.Sprintf("%d px", p.ScaledSize()))
	if !opts.check {
		return nil
	}

	img, err := g.Render()
	if err != nil {
		return err
	}
	raw, det := verify.VerifyQuality(img, opts.data)
	printReadability(out, "readability", raw)
	printReadability(out, "deteriorated", det)
	if raw == verify.None {
		return fmt.Errorf("%s does not scan", opts.output)
	}
	return nil
}
