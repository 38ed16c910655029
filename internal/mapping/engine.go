// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package mapping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
)

// ErrNoResolver is returned when ids are missing from the cache and no
// resolver is configured for their input type.
var ErrNoResolver = errors.New("no resolver configured")

// ProteinResolver looks up protein accessions in an external service.
type ProteinResolver interface {
	QueryProteins(ctx context.Context, ids []string, organism string) ([]ProteinRow, error)
}

// OrthologResolver looks up ortholog symbols in an external service.
type OrthologResolver interface {
	QueryOrthologs(ctx context.Context, symbols []string, source, target string) ([]OrthologRow, error)
}

// Engine answers queries from the Store and sends only the cache misses to
// the resolver matching the query type. Gene names have no resolver slot:
// their misses are never resolved externally.
type Engine struct {
	store          *Store
	proteins       ProteinResolver
	orthologs      OrthologResolver
	indexGeneNames bool
	offline        bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithProteinResolver sets the resolver for ProteinID misses.
func WithProteinResolver(r ProteinResolver) Option {
	return func(e *Engine) { e.proteins = r }
}

// WithOrthologResolver sets the resolver for Orthologs misses.
func WithOrthologResolver(r OrthologResolver) Option {
	return func(e *Engine) { e.orthologs = r }
}

// WithGeneNameIndex projects freshly resolved protein rows into the gene name
// table, one row per gene name, so later gene name queries can hit them.
func WithGeneNameIndex() Option {
	return func(e *Engine) { e.indexGeneNames = true }
}

// WithOffline makes every Resolve behave as if IgnoreMissing were set.
func WithOffline() Option {
	return func(e *Engine) { e.offline = true }
}

// NewEngine returns an Engine over store.
func NewEngine(store *Store, opts ...Option) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the engine's store, mostly so callers can Save it.
func (e *Engine) Store() *Store {
	return e.store
}

// Resolve returns the rows for q.IDs, fetching cache misses unless
// q.IgnoreMissing is set. Resolver errors are returned unchanged and nothing
// is appended to the store when one occurs.
func (e *Engine) Resolve(ctx context.Context, q Query) (Result, error) {
	res := Result{Type: q.Type}
	if len(q.IDs) == 0 {
		return res, nil
	}
	if e.offline {
		q.IgnoreMissing = true
	}

	var err error
	switch q.Type {
	case ProteinID:
		res.Proteins, err = e.resolveProteins(ctx, q)
	case GeneName:
		res.GeneNames, err = e.resolveGeneNames(q)
	case Orthologs:
		res.Orthologs, err = e.resolveOrthologs(ctx, q)
	default:
		err = fmt.Errorf("unsupported input type %s", q.Type)
	}
	if err != nil {
		return Result{Type: q.Type}, err
	}

	return res, nil
}

func (e *Engine) resolveProteins(ctx context.Context, q Query) ([]ProteinRow, error) {
	rows, missing, err := e.store.LookupProteins(q.IDs, q.Organism)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s: %d cached rows, %d missing ids", q.Type, len(rows), len(missing))

	if len(missing) == 0 || q.IgnoreMissing {
		return rows, nil
	}
	if e.proteins == nil {
		return nil, fmt.Errorf("%s: %w", q.Type, ErrNoResolver)
	}

	fresh, err := e.proteins.QueryProteins(ctx, missing, q.Organism)
	if err != nil {
		return nil, err
	}
	if err := e.store.AppendProteins(fresh); err != nil {
		return nil, err
	}
	if e.indexGeneNames {
		if err := e.store.AppendGeneNames(geneNameRowsFrom(fresh)); err != nil {
			return nil, err
		}
	}
	log.Debugf("%s: resolved %d rows for %d missing ids", q.Type, len(fresh), len(missing))

	rows = dedupe(append(rows, fresh...))

	// Fresh rows went into the cache as the resolver returned them; this
	// caller still only wants its organism.
	if q.Organism != "" {
		filtered := rows[:0]
		for _, r := range rows {
			if r.Organism == q.Organism {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	return rows, nil
}

func (e *Engine) resolveGeneNames(q Query) ([]GeneNameRow, error) {
	rows, missing, err := e.store.LookupGeneNames(q.IDs, q.Organism)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		log.Debugf("%s: %d cached rows, %d uncached ids not resolvable", q.Type, len(rows), len(missing))
	}
	return rows, nil
}

func (e *Engine) resolveOrthologs(ctx context.Context, q Query) ([]OrthologRow, error) {
	rows, missing, err := e.store.LookupOrthologs(q.IDs, q.Organism, q.TargetOrganism)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s: %d cached rows, %d missing ids", q.Type, len(rows), len(missing))

	if len(missing) == 0 || q.IgnoreMissing {
		return rows, nil
	}
	if e.orthologs == nil {
		return nil, fmt.Errorf("%s: %w", q.Type, ErrNoResolver)
	}

	fresh, err := e.orthologs.QueryOrthologs(ctx, missing, q.Organism, q.TargetOrganism)
	if err != nil {
		return nil, err
	}
	if err := e.store.AppendOrthologs(fresh); err != nil {
		return nil, err
	}
	log.Debugf("%s: resolved %d rows for %d missing ids", q.Type, len(fresh), len(missing))

	return dedupe(append(rows, fresh...)), nil
}

// geneNameRowsFrom explodes protein rows into one gene name row per gene
// name token.
func geneNameRowsFrom(rows []ProteinRow) []GeneNameRow {
	var out []GeneNameRow
	for _, r := range rows {
		for _, g := range strings.Split(r.GeneNames, ";") {
			if g == "" {
				continue
			}
			out = append(out, GeneNameRow{
				ProteinID: r.ProteinID,
				Status:    r.Reviewed,
				Organism:  r.Organism,
				GeneName:  g,
			})
		}
	}
	return dedupe(out)
}

// dedupe drops repeated rows, keeping first-seen order.
func dedupe[T comparable](rows []T) []T {
	if len(rows) == 0 {
		return rows
	}
	seen := make(map[T]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
