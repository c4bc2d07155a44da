package handlers

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qretty/internal/config"
	"github.com/cristianadrielbraun/qretty/pkg/cache"
	"github.com/cristianadrielbraun/qretty/pkg/encoder"
	"github.com/cristianadrielbraun/qretty/pkg/raster"
	"github.com/cristianadrielbraun/qretty/pkg/verify"
)

// Handler holds the dependencies shared by the HTTP handlers.
type Handler struct {
	cfg      config.Config
	cache    cache.Cache
	logger   *log.Logger
	enc      encoder.Encoder
	canvas   raster.Factory
	verifier *verify.Verifier
	icon     []byte
}

// New builds a Handler. The icon configured in cfg, if any, is read once here.
func New(cfg config.Config, c cache.Cache, logger *log.Logger) (*Handler, error) {
	enc, err := encoder.New(cfg.Render.Encoder)
	if err != nil {
		return nil, err
	}
	canvas, err := raster.New(cfg.Render.Rasterizer)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{
		cfg:      cfg,
		cache:    c,
		logger:   logger,
		enc:      enc,
		canvas:   canvas,
		verifier: &verify.Verifier{},
	}
	if cfg.Icon.Path != "" {
		h.icon, err = os.ReadFile(cfg.Icon.Path)
		if err != nil {
			return nil, fmt.Errorf("reading icon: %w", err)
		}
	}
	return h, nil
}

// Register mounts the API routes on r.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.GET("/qr", h.QRCodeHandler)
		api.GET("/qr/classic", h.ClassicQR)
		api.POST("/verify", h.VerifyHandler)
	}
	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })
}
