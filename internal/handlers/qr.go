package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cristianadrielbraun/qretty/internal/config"
	"github.com/cristianadrielbraun/qretty/pkg/cache"
	"github.com/cristianadrielbraun/qretty/pkg/effects"
	"github.com/cristianadrielbraun/qretty/pkg/encoder"
	"github.com/cristianadrielbraun/qretty/pkg/gradient"
	"github.com/cristianadrielbraun/qretty/pkg/qretty"
	"github.com/cristianadrielbraun/qretty/pkg/styler"
)

const (
	maxPayload = 4096
	minSize    = 16
	maxPadding = 25
)

// normalizeHTTPURL validates and normalizes a URL string for QR generation.
// It ensures an http/https scheme, a non-empty hostname, and returns a cleaned absolute URL.
func normalizeHTTPURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", fmt.Errorf("URL parameter is required")
	}
	// If missing scheme, default to https
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL must include a valid host")
	}
	return u.String(), nil
}

// payloadParam reads the symbol content from "data", or failing that from a
// normalized "url".
func payloadParam(c *gin.Context) (string, error) {
	data, ok := c.GetQuery("data")
	if !ok {
		raw, ok := c.GetQuery("url")
		if !ok {
			return "", fmt.Errorf("data or url parameter is required")
		}
		var err error
		if data, err = normalizeHTTPURL(raw); err != nil {
			return "", err
		}
	}
	if len(data) > maxPayload {
		return "", fmt.Errorf("payload is too long")
	}
	return data, nil
}

// parseColorParam parses "#rrggbb", "rrggbb" or "transparent". An empty
// parameter yields def.
func parseColorParam(param string, def color.Color) (color.Color, error) {
	if param == "" {
		return def, nil
	}
	if strings.EqualFold(param, "transparent") {
		return color.NRGBA{}, nil
	}
	c, err := config.ParseColor(param)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q", param)
	}
	return c, nil
}

func boolParam(c *gin.Context, name string, def bool) (bool, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return b, nil
}

func floatParam(c *gin.Context, name string, def, lo, hi float64) (float64, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < lo || f > hi {
		return 0, fmt.Errorf("%s must be a number between %g and %g", name, lo, hi)
	}
	return f, nil
}

func intParam(c *gin.Context, name string, def, lo, hi int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", name, lo, hi)
	}
	return n, nil
}

// qrRequest is a validated /api/qr query.
type qrRequest struct {
	params  qretty.Params
	format  imaging.Format
	padding int
}

func (r qrRequest) contentType() string {
	if r.format == imaging.JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// cacheKey covers every input that changes the encoded bytes.
func (r qrRequest) cacheKey() string {
	p := r.params
	a := p.Appearance
	return cache.Key("qr",
		string(p.Payload), p.Level.String(), p.ScaledSize(), p.Style.String(),
		hexOf(p.Foreground), hexOf(p.Background), p.Effects,
		hexOf(a.Gradient.From), hexOf(a.Gradient.To),
		a.Gradient.Start, a.Gradient.End, a.Gradient.Kind.String(),
		a.BackgroundVisible, a.BackgroundStrength, a.ShadowOffset, a.ShadowSoftness,
		p.Icon.Mode.String(), p.Icon.Scale, p.Icon.BorderRadius,
		r.format.String(), r.padding,
	)
}

func hexOf(c color.Color) string {
	if c == nil {
		return ""
	}
	r, g, b, a := c.RGBA()
	return fmt.Sprintf("%04x%04x%04x%04x", r, g, b, a)
}

func (h *Handler) parseQRRequest(c *gin.Context) (qrRequest, error) {
	var req qrRequest
	p, err := h.cfg.Params()
	if err != nil {
		return req, err
	}

	data, err := payloadParam(c)
	if err != nil {
		return req, err
	}
	p.Payload = []byte(data)

	if v := c.Query("level"); v != "" {
		if p.Level, err = encoder.ParseLevel(v); err != nil {
			return req, err
		}
	}
	if p.Size, err = intParam(c, "size", p.Size, minSize, h.cfg.Server.MaxSize); err != nil {
		return req, err
	}
	if v, ok := c.GetQuery("style"); ok {
		if p.Style, err = styler.ParseSet(v); err != nil {
			return req, err
		}
	}
	if p.Foreground, err = parseColorParam(c.Query("fg"), p.Foreground); err != nil {
		return req, err
	}
	if p.Background, err = parseColorParam(c.Query("bgcolor"), p.Background); err != nil {
		return req, err
	}

	if p.Effects, err = boolParam(c, "effects", p.Effects); err != nil {
		return req, err
	}
	a := &p.Appearance
	if v := c.Query("gradient"); v != "" {
		if a.Gradient.Kind, err = gradient.ParseKind(v); err != nil {
			return req, err
		}
	}
	if a.Gradient.From, err = parseColorParam(c.Query("from"), a.Gradient.From); err != nil {
		return req, err
	}
	if a.Gradient.To, err = parseColorParam(c.Query("to"), a.Gradient.To); err != nil {
		return req, err
	}
	if a.BackgroundVisible, err = boolParam(c, "bg", a.BackgroundVisible); err != nil {
		return req, err
	}
	if a.BackgroundStrength, err = floatParam(c, "bgStrength", a.BackgroundStrength, 0, 1); err != nil {
		return req, err
	}
	if a.ShadowSoftness, err = floatParam(c, "softness", a.ShadowSoftness, 0, 1); err != nil {
		return req, err
	}

	if v := c.Query("icon"); v != "" {
		if p.Icon.Mode, err = qretty.ParseIconMode(v); err != nil {
			return req, err
		}
	}
	if p.Icon.Mode != qretty.IconNone {
		if h.icon == nil {
			return req, fmt.Errorf("no icon configured")
		}
		p.Icon.Data = h.icon
	}

	if req.padding, err = intParam(c, "padding", 0, 0, maxPadding); err != nil {
		return req, err
	}

	// Normalize jpeg to jpg as the download name uses it.
	switch f := strings.ToLower(c.DefaultQuery("format", "png")); f {
	case "png":
		req.format = imaging.PNG
	case "jpg", "jpeg":
		req.format = imaging.JPEG
	default:
		return req, fmt.Errorf("unsupported format %q (must be png or jpg)", f)
	}

	req.params = p
	return req, nil
}

// QRCodeHandler renders a styled QR code.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	start := time.Now()
	reqID := uuid.NewString()
	c.Header("X-Request-ID", reqID)

	req, err := h.parseQRRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	key := req.cacheKey()
	logger := h.logger.With("id", reqID, "bytes", len(req.params.Payload), "level", req.params.Level,
		"size", req.params.ScaledSize(), "style", req.params.Style.String(), "effects", req.params.Effects)

	if data, ok, err := h.cache.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "err", err)
	} else if ok {
		c.Header("X-Cache", "HIT")
		c.Header("Cache-Control", "public, max-age=3600")
		c.Data(http.StatusOK, req.contentType(), data)
		logger.Info("qr served from cache", "took", time.Since(start))
		return
	}

	g := qretty.New(req.params,
		qretty.WithEncoder(h.enc),
		qretty.WithCanvas(h.canvas),
		qretty.WithLogger(logger),
	)
	img, err := g.Render()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, encoder.ErrEncode) {
			status = http.StatusUnprocessableEntity
		}
		logger.Error("render failed", "err", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	bg := req.params.Background
	if req.params.Effects {
		// The effects pipeline leaves the symbol on a transparent canvas.
		bg = color.Transparent
	}
	img = addPadding(img, req.padding, bg)
	if req.format == imaging.JPEG {
		img = effects.OverSolid(img, color.White)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, req.format, imaging.JPEGQuality(92)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to encode image: %v", err)})
		return
	}
	if err := h.cache.Set(ctx, key, buf.Bytes(), h.cfg.Cache.TTL); err != nil {
		logger.Warn("cache write failed", "err", err)
	}

	c.Header("X-Cache", "MISS")
	c.Header("Cache-Control", "public, max-age=3600") // Cache for 1 hour
	c.Data(http.StatusOK, req.contentType(), buf.Bytes())
	logger.Info("qr rendered", "took", time.Since(start))
}

// addPadding surrounds img with a margin of percent of its width.
func addPadding(img image.Image, percent int, bg color.Color) image.Image {
	if percent <= 0 {
		return img
	}
	b := img.Bounds()
	pad := b.Dx() * percent / 100
	canvas := imaging.New(b.Dx()+2*pad, b.Dy()+2*pad, bg)
	return imaging.Paste(canvas, img, image.Pt(pad, pad))
}
