// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/idmapgo/internal/mapping"
	"github.com/staranto/idmapgo/internal/meta"
)

// FilterIDsCommandAction prints the protein ids already in the cache. It
// never fetches.
func FilterIDsCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &ViewActionRunner{
		CommandName: "filter-ids",
		ViewFn: func(ctx context.Context, cmd *cli.Command, e *mapping.Engine, ids []string) (string, error) {
			return e.FilteredProteinIDs(ctx, ids, cmd.String("organism"), cmd.Bool("decoys"))
		},
	}
	return runner.Run(ctx, cmd)
}

func FilterIDsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "filter-ids",
		Usage:     "protein ids known to the cache",
		UsageText: `idmap filter-ids [--decoys] [options] PROTEIN_ID... | -`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "decoys",
				Usage:       "keep REV and CON prefixed ids",
				HideDefault: true,
			},
			NewOrganismFlag("filter-ids", meta.Config.Source, "only keep proteins of this organism"),
		},
		Action: FilterIDsCommandAction,
		Meta:   meta,
	}).Build()
}
