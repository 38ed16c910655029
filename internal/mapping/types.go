// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package mapping

import (
	"fmt"
	"strings"
)

// InputType selects which cache table and resolver a query runs against.
type InputType int

const (
	ProteinID InputType = iota
	GeneName
	Orthologs
)

func (t InputType) String() string {
	switch t {
	case ProteinID:
		return "proteinID"
	case GeneName:
		return "geneName"
	case Orthologs:
		return "orthologs"
	default:
		return fmt.Sprintf("InputType(%d)", int(t))
	}
}

// ParseInputType accepts the canonical names plus a few short aliases used on
// the command line.
func ParseInputType(s string) (InputType, error) {
	switch strings.ToLower(s) {
	case "proteinid", "protein", "p":
		return ProteinID, nil
	case "genename", "gene", "g":
		return GeneName, nil
	case "orthologs", "ortholog", "o":
		return Orthologs, nil
	}
	return 0, fmt.Errorf("unknown input type %q", s)
}

// Review status values as UniProt reports them.
const (
	Reviewed   = "reviewed"
	Unreviewed = "unreviewed"
)

// Decoy and contaminant accessions carry one of these prefixes.
var decoyPrefixes = []string{"REV", "CON"}

// IsDecoy reports whether id is a reverse/decoy or contaminant accession.
func IsDecoy(id string) bool {
	for _, p := range decoyPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// ProteinRow is one row of the protein -> gene names table. ProteinID holds a
// single accession.
type ProteinRow struct {
	GeneNames       string `json:"gene_names" yaml:"gene_names"`
	PrimaryGeneName string `json:"primary_gene_name" yaml:"primary_gene_name"`
	Reviewed        string `json:"reviewed" yaml:"reviewed"`
	Organism        string `json:"organism" yaml:"organism"`
	ProteinID       string `json:"protein_id" yaml:"protein_id"`
}

// GeneNameRow is one row of the gene name -> protein table.
type GeneNameRow struct {
	ProteinID string `json:"protein_id" yaml:"protein_id"`
	Status    string `json:"status" yaml:"status"`
	Organism  string `json:"organism" yaml:"organism"`
	GeneName  string `json:"gene_name" yaml:"gene_name"`
}

// OrthologRow is one row of the gene name -> ortholog table. The natural key
// is (SourceSymbol, SourceOrganism, TargetOrganism).
type OrthologRow struct {
	SourceSymbol   string `json:"source_symbol" yaml:"source_symbol"`
	SourceOrganism string `json:"source_organism" yaml:"source_organism"`
	Ensg           string `json:"ensg" yaml:"ensg"`
	OrthologEnsg   string `json:"ortholog_ensg" yaml:"ortholog_ensg"`
	TargetSymbol   string `json:"target_symbol" yaml:"target_symbol"`
	TargetOrganism string `json:"target_organism" yaml:"target_organism"`
	Description    string `json:"description" yaml:"description"`
}

// Persisted column layouts. Order matters: Save writes columns in exactly
// this order.
var (
	ProteinColumns = []string{
		"Gene Names", "Gene Names (primary)", "Reviewed", "Organism", "Protein ID",
	}
	GeneNameColumns = []string{
		"Protein ID", "Status", "Organism", "Gene Name",
	}
	OrthologColumns = []string{
		"source_symbol", "source_organism", "ensg", "ortholog_ensg",
		"target_symbol", "target_organism", "description",
	}
)

func (r ProteinRow) record() []string {
	return []string{r.GeneNames, r.PrimaryGeneName, r.Reviewed, r.Organism, r.ProteinID}
}

func (r GeneNameRow) record() []string {
	return []string{r.ProteinID, r.Status, r.Organism, r.GeneName}
}

func (r OrthologRow) record() []string {
	return []string{
		r.SourceSymbol, r.SourceOrganism, r.Ensg, r.OrthologEnsg,
		r.TargetSymbol, r.TargetOrganism, r.Description,
	}
}

// Query is the input to Engine.Resolve.
type Query struct {
	IDs  []string
	Type InputType
	// Organism narrows protein and gene name lookups. For orthologs it is the
	// source organism short name and is required.
	Organism string
	// TargetOrganism is only used for orthologs.
	TargetOrganism string
	// IgnoreMissing answers from the cache only.
	IgnoreMissing bool
}

// Result holds the rows of a resolve. Only the slice matching Type is set.
type Result struct {
	Type      InputType
	Proteins  []ProteinRow
	GeneNames []GeneNameRow
	Orthologs []OrthologRow
}

// Len is the row count of the populated slice.
func (r Result) Len() int {
	switch r.Type {
	case ProteinID:
		return len(r.Proteins)
	case GeneName:
		return len(r.GeneNames)
	case Orthologs:
		return len(r.Orthologs)
	}
	return 0
}

// Rows returns the populated slice as an untyped value, which is what the
// output layer wants.
func (r Result) Rows() any {
	switch r.Type {
	case GeneName:
		return r.GeneNames
	case Orthologs:
		return r.Orthologs
	default:
		return r.Proteins
	}
}
