package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fbxcore/internal/export"
	"github.com/samcharles93/fbxcore/pkg/fbx"
)

func jsonCmd() *cli.Command {
	var (
		file   string
		arrays bool
		indent bool
	)

	return &cli.Command{
		Name:      "json",
		Usage:     "Print the node table as JSON",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			fileFlag(&file),
			&cli.BoolFlag{Name: "arrays", Usage: "include array element values", Destination: &arrays},
			&cli.BoolFlag{Name: "indent", Usage: "indent the output", Destination: &indent},
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

			return export.WriteJSON(outWriter(cmd), doc, export.Options{Arrays: arrays}, indent)
		},
	}
}
