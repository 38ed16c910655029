// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/idmapgo/internal/mapping"
	"github.com/staranto/idmapgo/internal/meta"
)

// GeneIDsCommandAction prints the cached protein ids of gene names. Gene
// names are never resolved externally; the table only grows when
// index_gene_names is on.
func GeneIDsCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &ViewActionRunner{
		CommandName: "gene-ids",
		ViewFn: func(ctx context.Context, cmd *cli.Command, e *mapping.Engine, genes []string) (string, error) {
			return e.ProteinIDsFromGeneNames(ctx, genes, cmd.String("organism"), !cmd.Bool("unreviewed"))
		},
	}
	return runner.Run(ctx, cmd)
}

func GeneIDsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "gene-ids",
		Usage:     "protein ids of gene names",
		UsageText: `idmap gene-ids [--unreviewed] [options] GENE... | -`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "unreviewed",
				Usage:       "include unreviewed entries",
				HideDefault: true,
			},
			NewOrganismFlag("gene-ids", meta.Config.Source, "only count entries of this organism"),
		},
		Action: GeneIDsCommandAction,
		Meta:   meta,
	}).Build()
}
