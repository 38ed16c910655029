// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package gprofiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/idmapgo/internal/mapping"
	"github.com/staranto/idmapgo/internal/resolver"
)

// DefaultBaseURL is the public g:Profiler endpoint.
const DefaultBaseURL = "https://biit.cs.ut.ee/gprofiler"

const service = "gprofiler"

// ErrUnknownOrganism is returned for an organism short name with no species
// code.
var ErrUnknownOrganism = errors.New("unknown organism")

var species = map[string]string{
	"human":  "hsapiens",
	"mouse":  "mmusculus",
	"rat":    "rnorvegicus",
	"rabbit": "ocuniculus",
}

// SpeciesCode maps an organism short name to the code g:Profiler expects.
func SpeciesCode(organism string) (string, error) {
	code, ok := species[organism]
	if !ok {
		return "", fmt.Errorf("%w %q (known: %s)", ErrUnknownOrganism, organism, strings.Join(Organisms(), ", "))
	}
	return code, nil
}

// Organisms lists the supported short names, sorted.
func Organisms() []string {
	out := make([]string, 0, len(species))
	for k := range species {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Client resolves ortholog symbols through the g:Profiler orth endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
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

// New returns a Client with defaults applied.
func New(opts ...Option) *Client {
	c := &Client{BaseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.HTTP == nil {
		c.HTTP = resolver.NewHTTPClient(0)
	}
	return c
}

type orthRequest struct {
	Organism string   `json:"organism"`
	Target   string   `json:"target"`
	Query    []string `json:"query"`
}

// QueryOrthologs implements mapping.OrthologResolver. Both organisms are
// validated before any request is made. Returned rows carry the short names,
// not the species codes.
func (c *Client) QueryOrthologs(ctx context.Context, symbols []string, source, target string) ([]mapping.OrthologRow, error) {
	src, err := SpeciesCode(source)
	if err != nil {
		return nil, err
	}
	tgt, err := SpeciesCode(target)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(orthRequest{Organism: src, Target: tgt, Query: symbols})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode request: %w", service, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/convert/orth/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := resolver.Do(c.HTTP, service, req)
	if err != nil {
		return nil, err
	}

	rows, err := parse(body, source, target)
	if err != nil {
		return nil, err
	}

	log.Debugf("%s: %d symbols %s -> %s gave %d rows", service, len(symbols), source, target, len(rows))
	return rows, nil
}

func parse(body []byte, source, target string) ([]mapping.OrthologRow, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: malformed response: invalid json", service)
	}
	result := gjson.GetBytes(body, "result")
	if !result.Exists() || !result.IsArray() {
		return nil, fmt.Errorf("%s: malformed response: no result array", service)
	}

	var rows []mapping.OrthologRow
	for _, r := range result.Array() {
		rows = append(rows, mapping.OrthologRow{
			SourceSymbol:   value(r, "incoming"),
			SourceOrganism: source,
			Ensg:           value(r, "converted"),
			OrthologEnsg:   value(r, "ortholog_ensg"),
			TargetSymbol:   value(r, "name"),
			TargetOrganism: target,
			Description:    value(r, "description"),
		})
	}
	return rows, nil
}

// value reads a string field, folding the service's placeholders for "no
// ortholog" into an empty cell.
func value(r gjson.Result, path string) string {
	v := r.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	s := strings.TrimSpace(v.String())
	switch s {
	case "N/A", "None":
		return ""
	}
	return s
}
