package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fbxcore/internal/logger"
	"github.com/samcharles93/fbxcore/pkg/fbx"
)

func dumpCmd() *cli.Command {
	var (
		file         string
		noProperties bool
		showStats    bool
	)

	return &cli.Command{
		Name:      "dump",
		Usage:     "Print the node tree as text",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			fileFlag(&file),
			&cli.BoolFlag{Name: "no-properties", Usage: "print names and nesting only", Destination: &noProperties},
			&cli.BoolFlag{Name: "stats", Usage: "print allocator counters after the document is closed", Destination: &showStats},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := inputPath(cmd, file)
			if err != nil {
				return err
			}
			log := logger.FromContext(ctx)

			opts := loadOptions(ctx)
			var counter *fbx.CountingAllocator
			if showStats {
				counter = fbx.NewCountingAllocator(nil)
				opts = append(opts, fbx.WithAllocator(counter))
			}

			doc, err := fbx.Load(path, opts...)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			err = fbx.WriteText(outWriter(cmd), doc, fbx.StringifyOptions{OmitProperties: noProperties})
			_ = doc.Close()
			if err != nil {
				return fmt.Errorf("write text: %w", err)
			}

			if counter != nil {
				st := counter.Stats()
				_, _ = fmt.Fprintf(errWriter(cmd), "allocs=%d frees=%d bad_frees=%d live_bytes=%d peak_bytes=%d balanced=%t\n",
					st.Allocs, st.Frees, st.BadFrees, st.LiveBytes, st.PeakBytes, st.Balanced())
				if !st.Balanced() {
					log.Warn("allocator not balanced after close", "allocs", st.Allocs, "frees", st.Frees, "bad_frees", st.BadFrees)
				}
			}
			return nil
		},
	}
}
