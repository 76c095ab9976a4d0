package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stavelayout/internal/server"
	"github.com/matzehuels/stavelayout/pkg/cache"
	"github.com/matzehuels/stavelayout/pkg/pipeline"
)

// serveCommand creates the serve command running the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		noCache  bool
		redisURL string
		prefix   string
		timeout  time.Duration
		maxBody  int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Run the HTTP layout service.

  POST /v1/layout    lay out a document
  GET  /v1/options   list the engraving options
  GET  /healthz      health check

Several instances can share results through Redis (--redis or $` + envRedisURL + `).
--cache-prefix keeps their keys apart from other deployments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			store, err := newCache(ctx, noCache, redisURL)
			if err != nil {
				return err
			}
			var keyer cache.Keyer
			if prefix != "" {
				keyer = cache.NewScopedKeyer(nil, prefix)
			}
			runner := pipeline.NewRunner(store, keyer, logger)
			defer runner.Close()

			printKeyValue("listen", addr)
			printKeyValue("cache", cacheLabel(store))
			printNewline()

			srv := server.New(runner, logger, server.WithTimeout(timeout), server.WithMaxBody(maxBody))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for a shared cache")
	cmd.Flags().StringVar(&prefix, "cache-prefix", "", "namespace for cache keys")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultTimeout, "layout timeout per request")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBody, "request body limit in bytes")

	return cmd
}

func cacheLabel(c cache.Cache) string {
	switch c := c.(type) {
	case *cache.FileCache:
		return c.Dir()
	case *cache.RedisCache:
		return "redis"
	default:
		return "off"
	}
}
