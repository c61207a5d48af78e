package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/canopyhq/canopy/internal/api"
	"github.com/canopyhq/canopy/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the canopy HTTP API server.

The server exposes stateless geometry resolution (POST /v1/geometry) and a
diagram store with per-diagram touch tracking under /v1/diagrams. Store and
cache backends are taken from the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the geometry result cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *Config, noCache bool) error {
	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	srv := api.NewServer(runner, st, c.Logger)
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Server.Addr, "store", cfg.Store.Backend)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

// newStore creates the diagram store configured in cfg.
func newStore(ctx context.Context, cfg *Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", storeBackendMemory:
		return store.NewMemoryStore(), nil
	case storeBackendFile:
		path := cfg.Store.Path
		if path == "" {
			var err error
			path, err = dataDir()
			if err != nil {
				return nil, err
			}
		}
		return store.NewFileStore(path)
	case storeBackendMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Store.Mongo.URI,
			Database:   cfg.Store.Mongo.Database,
			Collection: cfg.Store.Mongo.Collection,
		})
	default:
		return nil, errors.New("unknown store backend: " + cfg.Store.Backend)
	}
}
