// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/idmapgo/internal/mapping"
	"github.com/staranto/idmapgo/internal/meta"
)

// Default columns per input type, most telling first.
var defaultAttrs = map[mapping.InputType][]string{
	mapping.ProteinID: {"protein_id", "primary_gene_name", "gene_names", "reviewed", "organism"},
	mapping.GeneName:  {"gene_name", "protein_id", "status", "organism"},
	mapping.Orthologs: {"source_symbol", "target_symbol", "target_organism", "ortholog_ensg", "description"},
}

var rowTypes = map[mapping.InputType]reflect.Type{
	mapping.ProteinID: reflect.TypeOf(mapping.ProteinRow{}),
	mapping.GeneName:  reflect.TypeOf(mapping.GeneNameRow{}),
	mapping.Orthologs: reflect.TypeOf(mapping.OrthologRow{}),
}

// ResolveCommandAction is the action handler for the "resolve" subcommand. It
// answers the ids from the cache, fetches the misses from the resolver for
// --type and emits the rows according to the common output/attr flags.
func ResolveCommandAction(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %v", GetMeta(cmd).Args)

	typ, err := mapping.ParseInputType(cmd.String("type"))
	if err != nil {
		return err
	}

	if DumpSchemaIfRequested(cmd, rowTypes[typ]) {
		return nil
	}

	attrs, err := BuildAttrs(cmd, defaultAttrs[typ]...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", attrs.String())

	q := mapping.Query{
		Type:     typ,
		Organism: cmd.String("organism"),
	}
	if typ == mapping.Orthologs {
		q.TargetOrganism = cmd.String("target")
		if err := OrthologOrganismsValidator(q.Organism, q.TargetOrganism); err != nil {
			return err
		}
	}

	if q.IDs, err = ReadIDs(cmd); err != nil {
		return err
	}

	var res mapping.Result
	if err := WithEngine(ctx, cmd, func(e *mapping.Engine) error {
		res, err = e.Resolve(ctx, q)
		return err
	}); err != nil {
		return err
	}
	log.Debugf("resolve: %s ids -> %s rows",
		humanize.Comma(int64(len(q.IDs))), humanize.Comma(int64(res.Len())))

	return EmitRows(res.Rows(), attrs, cmd)
}

// ResolveCommandBuilder constructs the cli.Command definition for the
// "resolve" command.
func ResolveCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "resolve",
		Usage:     "map ids to cached or freshly resolved rows",
		UsageText: `idmap resolve [options] ID... | -`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "input type: protein, gene or ortholog",
				Value: "protein",
				Validator: func(value string) error {
					return FlagValidators(value, TypeValidator)
				},
			},
			NewOrganismFlag("resolve", meta.Config.Source,
				"organism to narrow protein and gene rows to, or the ortholog source organism"),
			NewTargetFlag("resolve", meta.Config.Source),
			newOfflineFlag(),
		},
		Rows:   true,
		Action: ResolveCommandAction,
		Meta:   meta,
	}).Build()
}
