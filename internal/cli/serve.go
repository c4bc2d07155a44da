package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qretty/internal/config"
	"github.com/cristianadrielbraun/qretty/internal/handlers"
	"github.com/cristianadrielbraun/qretty/pkg/cache"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOpts) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config and PORT)")
	return cmd
}

// newEngine wires the API onto a gin engine. The returned cache must be
// closed by the caller.
func newEngine(ctx context.Context, cfg config.Config, logger *log.Logger) (*gin.Engine, cache.Cache, error) {
	c, err := cache.New(ctx, cfg.Cache.Backend, cfg.Cache.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	h, err := handlers.New(cfg, c, logger)
	if err != nil {
		c.Close()
		return nil, nil, err
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	h.Register(r)
	return r, c, nil
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)
	gin.SetMode(gin.ReleaseMode)

	r, c, err := newEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	errc := make(chan error, 1)
	go func() {
		logger.Info("qretty listening", "addr", cfg.Server.Addr, "cache", cfg.Cache.Backend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
