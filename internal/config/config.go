// Package config loads service and rendering defaults from TOML.
package config

import (
	"fmt"
	"image/color"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/cristianadrielbraun/qretty/pkg/effects"
	"github.com/cristianadrielbraun/qretty/pkg/encoder"
	"github.com/cristianadrielbraun/qretty/pkg/gradient"
	"github.com/cristianadrielbraun/qretty/pkg/qretty"
	"github.com/cristianadrielbraun/qretty/pkg/styler"
)

type Config struct {
	Server     Server     `toml:"server"`
	Render     Render     `toml:"render"`
	Appearance Appearance `toml:"appearance"`
	Icon       Icon       `toml:"icon"`
	Cache      Cache      `toml:"cache"`
}

type Server struct {
	Addr string `toml:"addr"`
	// MaxSize caps the size query parameter.
	MaxSize int `toml:"max_size"`
}

type Render struct {
	Size       int     `toml:"size"`
	PixelScale float64 `toml:"pixel_scale"`
	Level      string  `toml:"level"`
	Style      string  `toml:"style"`
	Effects    bool    `toml:"effects"`
	Rasterizer string  `toml:"rasterizer"`
	Encoder    string  `toml:"encoder"`
	Foreground string  `toml:"foreground"`
	Background string  `toml:"background"`
}

type Appearance struct {
	From               string     `toml:"from"`
	To                 string     `toml:"to"`
	Start              [2]float64 `toml:"start"`
	End                [2]float64 `toml:"end"`
	Kind               string     `toml:"kind"`
	Background         bool       `toml:"background"`
	BackgroundStrength float64    `toml:"background_strength"`
	ShadowOffset       [2]float64 `toml:"shadow_offset"`
	ShadowSoftness     float64    `toml:"shadow_softness"`
}

type Icon struct {
	Path         string  `toml:"path"`
	Mode         string  `toml:"mode"`
	Scale        float64 `toml:"scale"`
	BorderRadius float64 `toml:"border_radius"`
}

type Cache struct {
	Backend   string        `toml:"backend"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
}

// Default mirrors qretty.DefaultParams.
func Default() Config {
	p := qretty.DefaultParams()
	a := p.Appearance
	return Config{
		Server: Server{Addr: ":8080", MaxSize: 2048},
		Render: Render{
			Size:       p.Size,
			PixelScale: 1,
			Level:      p.Level.String(),
			Style:      "blocks",
			Rasterizer: "gg",
			Encoder:    "zxing",
			Foreground: "#000000",
			Background: "#ffffff",
		},
		Appearance: Appearance{
			From:               hex(a.Gradient.From),
			To:                 hex(a.Gradient.To),
			Start:              [2]float64{a.Gradient.Start.X, a.Gradient.Start.Y},
			End:                [2]float64{a.Gradient.End.X, a.Gradient.End.Y},
			Kind:               a.Gradient.Kind.String(),
			Background:         a.BackgroundVisible,
			BackgroundStrength: a.BackgroundStrength,
			ShadowOffset:       [2]float64{a.ShadowOffset.X, a.ShadowOffset.Y},
			ShadowSoftness:     a.ShadowSoftness,
		},
		Icon:  Icon{Mode: "none", Scale: 1},
		Cache: Cache{Backend: "none", RedisAddr: "localhost:6379", TTL: time.Hour},
	}
}

// Load reads path on top of Default. An empty path returns the defaults.
// The PORT environment variable overrides the server address.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		if und := md.Undecoded(); len(und) > 0 {
			keys := make([]string, len(und))
			for i, k := range und {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return cfg, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	return cfg, cfg.Validate()
}

// Validate checks every enumerated and colour value.
func (c Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if c.Render.Size <= 0 {
		return fmt.Errorf("render.size must be positive, got %d", c.Render.Size)
	}
	switch c.Cache.Backend {
	case "", "none", "memory", "redis":
	default:
		return fmt.Errorf("cache.backend %q must be none, memory or redis", c.Cache.Backend)
	}
	return nil
}

// Params converts the render, appearance and icon sections. Icon bytes are
// not read here; the icon path is left to the caller.
func (c Config) Params() (qretty.Params, error) {
	p := qretty.DefaultParams()
	var err error
	if p.Level, err = encoder.ParseLevel(c.Render.Level); err != nil {
		return p, err
	}
	if p.Style, err = styler.ParseSet(c.Render.Style); err != nil {
		return p, err
	}
	p.Size = c.Render.Size
	p.PixelScale = c.Render.PixelScale
	p.Effects = c.Render.Effects
	if p.Foreground, err = ParseColor(c.Render.Foreground); err != nil {
		return p, fmt.Errorf("render.foreground: %w", err)
	}
	if p.Background, err = ParseColor(c.Render.Background); err != nil {
		return p, fmt.Errorf("render.background: %w", err)
	}
	if p.Appearance, err = c.Appearance.Effects(); err != nil {
		return p, err
	}
	if p.Icon.Mode, err = qretty.ParseIconMode(c.Icon.Mode); err != nil {
		return p, err
	}
	p.Icon.Scale = c.Icon.Scale
	p.Icon.BorderRadius = c.Icon.BorderRadius
	return p, nil
}

// Effects converts the appearance section.
func (a Appearance) Effects() (effects.Appearance, error) {
	out := effects.DefaultAppearance()
	from, err := ParseColor(a.From)
	if err != nil {
		return out, fmt.Errorf("appearance.from: %w", err)
	}
	to, err := ParseColor(a.To)
	if err != nil {
		return out, fmt.Errorf("appearance.to: %w", err)
	}
	kind, err := gradient.ParseKind(a.Kind)
	if err != nil {
		return out, fmt.Errorf("appearance.kind: %w", err)
	}
	out.Gradient = gradient.Spec{
		From:  from,
		To:    to,
		Start: gradient.Point{X: a.Start[0], Y: a.Start[1]},
		End:   gradient.Point{X: a.End[0], Y: a.End[1]},
		Kind:  kind,
	}
	out.BackgroundVisible = a.Background
	out.BackgroundStrength = a.BackgroundStrength
	out.ShadowOffset = effects.Vector{X: a.ShadowOffset[0], Y: a.ShadowOffset[1]}
	out.ShadowSoftness = a.ShadowSoftness
	return out, nil
}

// ParseColor reads a #rrggbb hex colour, with or without the leading #.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return colorful.Hex(s)
}

func hex(c color.Color) string {
	cc, _ := colorful.MakeColor(c)
	return cc.Hex()
}
