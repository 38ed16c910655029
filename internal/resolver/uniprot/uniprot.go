// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package uniprot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/idmapgo/internal/csv"
	"github.com/staranto/idmapgo/internal/mapping"
	"github.com/staranto/idmapgo/internal/resolver"
)

const (
	// DefaultBaseURL is the public UniProt REST endpoint.
	DefaultBaseURL = "https://rest.uniprot.org"

	// MaxChunk is the most accessions the service accepts per request.
	MaxChunk = 500

	service = "uniprot"
	fields  = "gene_names,gene_primary,reviewed,organism_name,accession"
)

// Column titles UniProt uses for the requested fields. The accession column
// is always last and is read by position.
const (
	colGeneNames = "Gene Names"
	colPrimary   = "Gene Names (primary)"
	colReviewed  = "Reviewed"
	colOrganism  = "Organism"
)

// Client resolves protein accessions against the UniProtKB accessions
// endpoint.
type Client struct {
	BaseURL     string
	HTTP        *http.Client
	ChunkSize   int
	Concurrency int
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.BaseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTP = h }
}

// WithChunkSize lowers the per-request accession count. Values outside
// 1..MaxChunk fall back to MaxChunk.
func WithChunkSize(n int) Option {
	return func(c *Client) { c.ChunkSize = n }
}

// WithConcurrency lets up to n chunk requests run at once. The default, 1,
// sends them one after another.
func WithConcurrency(n int) Option {
	return func(c *Client) { c.Concurrency = n }
}

// New returns a Client with defaults applied.
func New(opts ...Option) *Client {
	c := &Client{
		BaseURL:     DefaultBaseURL,
		ChunkSize:   MaxChunk,
		Concurrency: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.HTTP == nil {
		c.HTTP = resolver.NewHTTPClient(0)
	}
	if c.ChunkSize <= 0 || c.ChunkSize > MaxChunk {
		c.ChunkSize = MaxChunk
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	return c
}

// QueryProteins implements mapping.ProteinResolver. Decoy and contaminant
// ids are dropped before anything is sent. Rows come back one per accession
// with gene names semicolon delimited, and are narrowed to organism when it
// is set.
func (c *Client) QueryProteins(ctx context.Context, ids []string, organism string) ([]mapping.ProteinRow, error) {
	var query []string
	for _, id := range ids {
		if !mapping.IsDecoy(id) {
			query = append(query, id)
		}
	}
	if len(query) == 0 {
		return nil, nil
	}

	chunks := chunk(query, c.ChunkSize)
	results := make([][]mapping.ProteinRow, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)
	for i, ch := range chunks {
		g.Go(func() error {
			rows, err := c.fetch(gctx, ch)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows []mapping.ProteinRow
	for _, r := range results {
		for _, row := range r {
			if organism != "" && row.Organism != organism {
				continue
			}
			rows = append(rows, row)
		}
	}

	log.Debugf("%s: %d ids in %d chunks -> %d rows", service, len(query), len(chunks), len(rows))
	return rows, nil
}

func (c *Client) fetch(ctx context.Context, ids []string) ([]mapping.ProteinRow, error) {
	params := url.Values{}
	params.Set("format", "tsv")
	params.Set("accessions", strings.Join(ids, ","))
	params.Set("fields", fields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/uniprotkb/accessions?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", service, err)
	}

	body, err := resolver.Do(c.HTTP, service, req)
	if err != nil {
		return nil, err
	}

	return parse(body)
}

// parse turns a tsv response into exploded rows.
func parse(body []byte) ([]mapping.ProteinRow, error) {
	t, err := csv.DecodeBytes(body, csv.Tab)
	if err != nil {
		return nil, fmt.Errorf("%s: malformed response: %w", service, err)
	}
	if len(t.Header) == 0 {
		return nil, nil
	}

	idx, err := csv.Index(t.Header, colGeneNames, colPrimary, colReviewed, colOrganism)
	if err != nil {
		return nil, fmt.Errorf("%s: malformed response: %w", service, err)
	}
	accession := len(t.Header) - 1
	for _, i := range idx {
		if i == accession {
			return nil, fmt.Errorf("%s: malformed response: no accession column in %v", service, t.Header)
		}
	}

	var rows []mapping.ProteinRow
	for _, rec := range t.Records {
		base := mapping.ProteinRow{
			GeneNames:       strings.ReplaceAll(csv.Cell(rec, idx[colGeneNames]), " ", mapping.Separator),
			PrimaryGeneName: csv.Cell(rec, idx[colPrimary]),
			Reviewed:        csv.Cell(rec, idx[colReviewed]),
			Organism:        csv.Cell(rec, idx[colOrganism]),
		}
		for _, acc := range strings.Split(csv.Cell(rec, accession), ",") {
			acc = strings.TrimSpace(acc)
			if acc == "" {
				continue
			}
			row := base
			row.ProteinID = acc
			rows = append(rows, row)
		}
	}

	return rows, nil
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[i:end])
	}
	return out
}
