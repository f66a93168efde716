package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fbxcore/internal/logger"
	"github.com/samcharles93/fbxcore/pkg/fbx"
)

var (
	logLevel    string
	logFormat   string
	debug       bool
	memoryLimit int64
	strict      bool
	wideRecords bool
	configFile  string

	cfg Config
)

func globalFlags() []cli.Flag {
	return append(loggingFlags(),
		&cli.Int64Flag{
			Name:        "memory-limit",
			Usage:       "maximum live bytes per document (0 = unlimited)",
			Destination: &memoryLimit,
		},
		&cli.BoolFlag{
			Name:        "strict",
			Usage:       "reject bytes after the final null record",
			Destination: &strict,
		},
		&cli.BoolFlag{
			Name:        "wide-records",
			Usage:       "read 25-byte node records with 64-bit counters",
			Destination: &wideRecords,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default: user config dir)",
			Destination: &configFile,
		},
	)
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func fileFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to a binary .fbx file",
		Destination: dst,
	}
}

// setup loads the config file, lets it fill unset global flags and puts
// the resulting logger on the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	loaded, err := LoadConfig(configFile)
	if err != nil {
		return ctx, err
	}
	cfg = loaded
	applyGlobalConfig(cmd, cfg)

	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}
	log, err := logger.ForFormat(logFormat, errWriter(cmd), level)
	if err != nil {
		return ctx, err
	}
	return logger.WithContext(ctx, log), nil
}

func loadOptions(ctx context.Context) []fbx.Option {
	return []fbx.Option{
		fbx.WithLogger(logger.FromContext(ctx).With("component", "fbx")),
		fbx.WithMemoryLimit(memoryLimit),
		fbx.WithStrict(strict),
		fbx.WithWideRecords(wideRecords),
	}
}

func inputPath(cmd *cli.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if p := cmd.Args().First(); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("%s: no input file (use --file or pass a path)", cmd.Name)
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
