// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/idmapgo/internal/mapping"
	"github.com/staranto/idmapgo/internal/meta"
)

// OrthologsCommandAction prints the cached target organism symbols of gene
// symbols. The view itself never fetches; --fetch resolves the misses first.
func OrthologsCommandAction(ctx context.Context, cmd *cli.Command) error {
	source, target := cmd.String("organism"), cmd.String("target")
	if err := OrthologOrganismsValidator(source, target); err != nil {
		return err
	}

	runner := &ViewActionRunner{
		CommandName: "orthologs",
		ViewFn: func(ctx context.Context, cmd *cli.Command, e *mapping.Engine, ids []string) (string, error) {
			if cmd.Bool("fetch") {
				if _, err := e.Resolve(ctx, mapping.Query{
					IDs:            ids,
					Type:           mapping.Orthologs,
					Organism:       source,
					TargetOrganism: target,
				}); err != nil {
					return "", err
				}
			}
			return e.Orthologs(ctx, ids, source, target)
		},
	}
	return runner.Run(ctx, cmd)
}

func OrthologsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "orthologs",
		Usage:     "ortholog symbols of gene symbols in another organism",
		UsageText: `idmap orthologs --organism human --target mouse [--fetch] SYMBOL... | -`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "fetch",
				Usage:       "resolve symbols missing from the cache first",
				HideDefault: true,
			},
			NewOrganismFlag("orthologs", meta.Config.Source,
				"source organism short name ("+organismList()+")"),
			NewTargetFlag("orthologs", meta.Config.Source),
			newOfflineFlag(),
		},
		Action: OrthologsCommandAction,
		Meta:   meta,
	}).Build()
}
