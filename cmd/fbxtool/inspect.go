package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fbxcore/internal/export"
	"github.com/samcharles93/fbxcore/pkg/fbx"
)

func inspectCmd() *cli.Command {
	var (
		file  string
		depth int64
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarise a binary FBX file",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			fileFlag(&file),
			&cli.Int64Flag{
				Name:        "depth",
				Usage:       "outline depth (-1 for the whole tree)",
				Value:       0,
				Destination: &depth,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := inputPath(cmd, file)
			if err != nil {
				return err
			}
			doc, err := fbx.Load(path, loadOptions(ctx)...)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			defer func() { _ = doc.Close() }()

			st, err := export.Collect(doc)
			if err != nil {
				return err
			}
			outline, err := export.Outline(doc, int(depth))
			if err != nil {
				return err
			}
			printSummary(outWriter(cmd), path, st, outline)
			return nil
		},
	}
}

func printSummary(w io.Writer, path string, st export.Stats, outline []export.OutlineEntry) {
	_, _ = fmt.Fprintf(w, "file:        %s\n", path)
	_, _ = fmt.Fprintf(w, "version:     %d\n", st.Version)
	_, _ = fmt.Fprintf(w, "nodes:       %d\n", st.Nodes)
	_, _ = fmt.Fprintf(w, "max depth:   %d\n", st.MaxDepth)
	_, _ = fmt.Fprintf(w, "roots:       %s\n", strings.Join(st.Roots, ", "))
	_, _ = fmt.Fprintf(w, "properties:  %d (%d payload bytes)\n", st.Properties, st.PayloadBytes)

	codes := make([]string, 0, len(st.PropertyTypes))
	for c := range st.PropertyTypes {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, c := range codes {
		_, _ = fmt.Fprintf(w, "  %s %8d\n", c, st.PropertyTypes[c])
	}
	_, _ = fmt.Fprintf(w, "arrays:      %d elements, %d compressed\n", st.ArrayElements, st.CompressedArrays)

	if len(outline) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "outline:")
	for _, e := range outline {
		_, _ = fmt.Fprintf(w, "  %s%s (%d properties, %d children)\n",
			strings.Repeat("  ", e.Depth), e.Name, e.Properties, e.Children)
	}
}
