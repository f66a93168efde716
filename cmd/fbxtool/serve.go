package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fbxcore/internal/api"
	"github.com/samcharles93/fbxcore/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		maxUpload   int64
		rateLimit   float64
		rateBurst   int64
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the document inspection HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.Int64Flag{
				Name:        "max-upload",
				Usage:       "maximum upload size in bytes",
				Value:       api.DefaultMaxUpload,
				Destination: &maxUpload,
			},
			&cli.FloatFlag{
				Name:        "rate",
				Usage:       "uploads per second (0 = unlimited)",
				Destination: &rateLimit,
			},
			&cli.Int64Flag{
				Name:        "burst",
				Usage:       "upload burst size",
				Value:       4,
				Destination: &rateBurst,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			burst := int(rateBurst)
			applyServeConfig(cmd, cfg, &addr, &maxUpload, &rateLimit, &burst)
			log := logger.FromContext(ctx)

			store := api.NewDocumentStore()
			defer store.Close()
			server := api.NewServer(store, api.Config{
				LoadOptions: loadOptions(ctx),
				MaxUpload:   maxUpload,
				RateLimit:   rateLimit,
				RateBurst:   burst,
				Logger:      log,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "max_upload", maxUpload, "rate", rateLimit)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
