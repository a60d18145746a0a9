// Command picturepolice looks for earlier postings of a post's images using
// reverse image search and scores how likely the post reuses someone else's
// image.
//
// Usage:
//
//	picturepolice scan --author some_user https://i.redd.it/abc.jpg
//	picturepolice validate-key
//	picturepolice score some_user "Some User (@some_user) - Instagram"
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/codeGROOVE-dev/picturepolice/pkg/config"
	"github.com/codeGROOVE-dev/picturepolice/pkg/httpcache"
	"github.com/codeGROOVE-dev/picturepolice/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	configPath     string
	debug          bool
	noCache        bool
	cacheTTL       time.Duration
	metricsAddr    string
	browserCookies bool

	cfg           config.Config
	logger        = slog.Default()
	metricsServer *http.Server
)

var rootCmd = &cobra.Command{
	Use:   "picturepolice",
	Short: "Find earlier postings of an image with reverse image search",
	Long: `picturepolice runs reverse image search for a post's images, drops
results that belong to the post's author, and reports a 0-100 confidence
that the images were posted elsewhere first.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.BoolVar(&noCache, "no-cache", false, "disable HTTP caching")
	flags.DurationVar(&cacheTTL, "cache-ttl", 24*time.Hour, "cache time-to-live")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	flags.BoolVar(&browserCookies, "browser-cookies", false, "read reddit.com cookies from local browsers")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load() //nolint:errcheck // a missing .env file is fine

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if debug {
		c.Logging.Level = "debug"
	}
	if noCache {
		c.Cache.Disabled = true
	}
	if cmd.Flags().Changed("cache-ttl") {
		c.Cache.TTL = cacheTTL
	}
	if metricsAddr != "" {
		c.Metrics.Addr = metricsAddr
	}
	if browserCookies {
		c.Reddit.BrowserCookies = true
	}

	level, err := c.Logging.SlogLevel()
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	cfg = c

	if cfg.Metrics.Addr != "" {
		startMetrics(cfg.Metrics.Addr)
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if metricsServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := metricsServer.Shutdown(ctx)
	metricsServer = nil
	return err
}

// openCache returns the configured HTTP cache, or nil when caching is off or
// the cache cannot be opened.
func openCache() *httpcache.Cache {
	if cfg.Cache.Disabled {
		return nil
	}
	var (
		c   *httpcache.Cache
		err error
	)
	if cfg.Cache.Dir != "" {
		c, err = httpcache.NewWithPath(cfg.Cache.TTL, cfg.Cache.Dir)
	} else {
		c, err = httpcache.New(cfg.Cache.TTL)
	}
	if err != nil {
		logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		return nil
	}
	logger.Debug("HTTP cache initialized", "ttl", cfg.Cache.TTL.String())
	return c
}

func closeCache(c *httpcache.Cache) {
	if c == nil {
		return
	}
	stats := httpcache.CacheStats()
	logger.Debug("HTTP cache stats", "hits", stats.Hits, "misses", stats.Misses)
	if err := c.Close(); err != nil {
		logger.Warn("failed to close cache", "error", err)
	}
}

func metricsRouter() http.Handler {
	metrics.Register()
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func startMetrics(addr string) {
	metricsServer = &http.Server{
		Addr:              addr,
		Handler:           metricsRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := metricsServer
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
}
