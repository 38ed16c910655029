// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/idmapgo/internal/mapping"
	"github.com/staranto/idmapgo/internal/meta"
)

// GenesCommandAction prints the gene names of protein ids, fetching the ones
// not cached yet.
func GenesCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &ViewActionRunner{
		CommandName: "genes",
		ViewFn: func(ctx context.Context, cmd *cli.Command, e *mapping.Engine, ids []string) (string, error) {
			if cmd.Bool("all") {
				return e.AllGeneNames(ctx, ids, cmd.String("organism"))
			}
			return e.PrimaryGeneNames(ctx, ids, cmd.String("organism"))
		},
	}
	return runner.Run(ctx, cmd)
}

func GenesCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "genes",
		Usage:     "gene names of protein ids",
		UsageText: `idmap genes [--all] [options] PROTEIN_ID... | -`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "every gene name synonym, upper-cased, instead of the primary names",
				HideDefault: true,
			},
			NewOrganismFlag("genes", meta.Config.Source, "only count proteins of this organism"),
			newOfflineFlag(),
		},
		Action: GenesCommandAction,
		Meta:   meta,
	}).Build()
}
