// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package mapping

import (
	"context"
	"sort"
	"strings"
)

// Separator joins multi-valued cells and view results.
const Separator = ";"

// PrimaryGeneNames resolves ids, fetching misses, and returns the distinct
// primary gene names.
func (e *Engine) PrimaryGeneNames(ctx context.Context, ids []string, organism string) (string, error) {
	res, err := e.Resolve(ctx, Query{IDs: ids, Type: ProteinID, Organism: organism})
	if err != nil {
		return "", err
	}
	return Join(PrimaryGeneNameSet(res.Proteins)), nil
}

// AllGeneNames resolves ids, fetching misses, and returns every gene name
// synonym, upper-cased and deduplicated.
func (e *Engine) AllGeneNames(ctx context.Context, ids []string, organism string) (string, error) {
	res, err := e.Resolve(ctx, Query{IDs: ids, Type: ProteinID, Organism: organism})
	if err != nil {
		return "", err
	}
	return Join(AllGeneNameSet(res.Proteins)), nil
}

// Orthologs reports the cached ortholog symbols of ids in target. It never
// fetches.
func (e *Engine) Orthologs(ctx context.Context, ids []string, source, target string) (string, error) {
	res, err := e.Resolve(ctx, Query{
		IDs:            ids,
		Type:           Orthologs,
		Organism:       source,
		TargetOrganism: target,
		IgnoreMissing:  true,
	})
	if err != nil {
		return "", err
	}
	return Join(TargetSymbolSet(res.Orthologs)), nil
}

// FilteredProteinIDs returns the cached protein ids among ids. With
// keepDecoys, decoy and contaminant inputs are kept as well. It never fetches.
func (e *Engine) FilteredProteinIDs(ctx context.Context, ids []string, organism string, keepDecoys bool) (string, error) {
	res, err := e.Resolve(ctx, Query{IDs: ids, Type: ProteinID, Organism: organism, IgnoreMissing: true})
	if err != nil {
		return "", err
	}

	set := ProteinIDSet(res.Proteins)
	if keepDecoys {
		for _, id := range ids {
			if IsDecoy(id) {
				set[id] = struct{}{}
			}
		}
	}
	return Join(set), nil
}

// ProteinIDsFromGeneNames returns the cached protein ids of genes. With
// reviewedOnly, only reviewed entries count.
func (e *Engine) ProteinIDsFromGeneNames(ctx context.Context, genes []string, organism string, reviewedOnly bool) (string, error) {
	res, err := e.Resolve(ctx, Query{IDs: genes, Type: GeneName, Organism: organism})
	if err != nil {
		return "", err
	}

	set := make(map[string]struct{})
	for _, r := range res.GeneNames {
		if reviewedOnly && r.Status != Reviewed {
			continue
		}
		if r.ProteinID != "" {
			set[r.ProteinID] = struct{}{}
		}
	}
	return Join(set), nil
}

// PrimaryGeneNameSet collects the non-empty primary gene names.
func PrimaryGeneNameSet(rows []ProteinRow) map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range rows {
		if r.PrimaryGeneName != "" {
			set[r.PrimaryGeneName] = struct{}{}
		}
	}
	return set
}

// AllGeneNameSet splits every GeneNames cell and collects the upper-cased,
// non-empty names.
func AllGeneNameSet(rows []ProteinRow) map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range rows {
		for _, g := range strings.Split(strings.ToUpper(r.GeneNames), Separator) {
			if g != "" {
				set[g] = struct{}{}
			}
		}
	}
	return set
}

// TargetSymbolSet collects the non-empty ortholog target symbols.
func TargetSymbolSet(rows []OrthologRow) map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range rows {
		if r.TargetSymbol != "" {
			set[r.TargetSymbol] = struct{}{}
		}
	}
	return set
}

// ProteinIDSet collects the non-empty protein ids.
func ProteinIDSet(rows []ProteinRow) map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range rows {
		if r.ProteinID != "" {
			set[r.ProteinID] = struct{}{}
		}
	}
	return set
}

// Join renders a set as a sorted, Separator delimited string. An empty set
// is "".
func Join(set map[string]struct{}) string {
	if len(set) == 0 {
		return ""
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return strings.Join(out, Separator)
}
