// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/idmapgo/internal/attrs"
	"github.com/staranto/idmapgo/internal/backend"
	"github.com/staranto/idmapgo/internal/cacheutil"
	"github.com/staranto/idmapgo/internal/config"
	"github.com/staranto/idmapgo/internal/mapping"
	"github.com/staranto/idmapgo/internal/meta"
	"github.com/staranto/idmapgo/internal/output"
	"github.com/staranto/idmapgo/internal/resolver"
	"github.com/staranto/idmapgo/internal/resolver/gprofiler"
	"github.com/staranto/idmapgo/internal/resolver/uniprot"
)

// DumpSchemaIfRequested prints the attribute keys of the provided type when
// --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(cmd.Root().Writer, t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (attrs.AttrList, error) {
	al := attrs.New(defaults...)
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, err
		}
	}
	if err := al.SetGlobalTransformSpec(); err != nil {
		return nil, err
	}
	return al, nil
}

// EmitRows marshals a slice of rows and passes it to the common output
// routine.
func EmitRows(rows any, al attrs.AttrList, cmd *cli.Command) error {
	raw, err := output.Marshal(rows)
	if err != nil {
		return err
	}
	return output.SliceDiceSpit(raw, al, cmd, cmd.Root().Writer)
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// ReadIDs collects the ids named on the command line. A lone "-" reads them
// from stdin instead. Each argument or line may hold several ids separated by
// whitespace, commas or semicolons, so view output can be fed straight back
// in.
func ReadIDs(cmd *cli.Command) ([]string, error) {
	args := cmd.Args().Slice()
	if len(args) == 1 && args[0] == "-" {
		return readIDs(cmd.Root().Reader)
	}

	var ids []string
	for _, a := range args {
		ids = append(ids, splitIDs(a)...)
	}
	return ids, nil
}

func readIDs(r io.Reader) ([]string, error) {
	if r == nil {
		r = os.Stdin
	}

	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		ids = append(ids, splitIDs(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ids: %w", err)
	}
	return ids, nil
}

func splitIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', ';', ' ', '\t', '\r', '\n':
			return true
		}
		return false
	})
}

// NewBackend builds the table backend from the cache.* config keys. When
// IDMAP_CACHE disables caching it returns nil, which gives a memory-only
// store.
func NewBackend(ctx context.Context) (backend.Backend, error) {
	if !cacheutil.Enabled() {
		log.Debug("cache disabled, tables are not persisted")
		return nil, nil
	}

	var cfg backend.Config
	cfg.Type, _ = config.GetString("cache.backend", "local")
	cfg.Dir, _ = config.GetString("cache.dir", "")
	cfg.Bucket, _ = config.GetString("cache.s3.bucket", "")
	cfg.Prefix, _ = config.GetString("cache.s3.prefix", "")
	cfg.Region, _ = config.GetString("cache.s3.region", "")
	cfg.Profile, _ = config.GetString("cache.s3.profile", "")
	cfg.Endpoint, _ = config.GetString("cache.s3.endpoint", "")
	cfg.PathStyle, _ = config.GetBool("cache.s3.path_style", false)

	return backend.NewBackend(ctx, cfg)
}

// NewEngine opens the store and wires the external resolvers as configured.
// An offline engine answers from the cache alone.
func NewEngine(ctx context.Context, offline bool) (*mapping.Engine, error) {
	be, err := NewBackend(ctx)
	if err != nil {
		return nil, err
	}

	store, err := mapping.Open(ctx, be)
	if err != nil {
		return nil, err
	}

	timeout, _ := config.GetInt("http.timeout", 0)
	httpClient := resolver.NewHTTPClient(timeout)

	uniprotURL, _ := config.GetString("uniprot.url", uniprot.DefaultBaseURL)
	chunk, _ := config.GetInt("uniprot.chunk", uniprot.MaxChunk)
	concurrency, _ := config.GetInt("uniprot.concurrency", 1)
	gprofilerURL, _ := config.GetString("gprofiler.url", gprofiler.DefaultBaseURL)

	opts := []mapping.Option{
		mapping.WithProteinResolver(uniprot.New(
			uniprot.WithBaseURL(uniprotURL),
			uniprot.WithHTTPClient(httpClient),
			uniprot.WithChunkSize(chunk),
			uniprot.WithConcurrency(concurrency),
		)),
		mapping.WithOrthologResolver(gprofiler.New(
			gprofiler.WithBaseURL(gprofilerURL),
			gprofiler.WithHTTPClient(httpClient),
		)),
	}
	if index, _ := config.GetBool("index_gene_names", false); index {
		opts = append(opts, mapping.WithGeneNameIndex())
	}
	if offline {
		opts = append(opts, mapping.WithOffline())
	}

	return mapping.NewEngine(store, opts...), nil
}

// WithEngine runs fn against a freshly opened engine and saves the store
// afterwards if fn grew it. Nothing is saved when fn fails.
func WithEngine(ctx context.Context, cmd *cli.Command, fn func(*mapping.Engine) error) error {
	engine, err := NewEngine(ctx, cmd.Bool("offline"))
	if err != nil {
		return err
	}

	store := engine.Store()
	before := rowCount(store)

	if err := fn(engine); err != nil {
		return err
	}

	after := rowCount(store)
	if after == before {
		log.Debugf("cache unchanged at %s rows", humanize.Comma(int64(after)))
		return nil
	}

	log.Debugf("cache grew by %s rows to %s, saving",
		humanize.Comma(int64(after-before)), humanize.Comma(int64(after)))
	return store.Save(ctx)
}

func rowCount(s *mapping.Store) int {
	return s.Len(mapping.ProteinID) + s.Len(mapping.GeneName) + s.Len(mapping.Orthologs)
}

// colorBefore turns --color off when the output is not a terminal, so
// escape codes never end up in files or pipes.
func colorBefore(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("color") && !isTerminal(cmd.Root().Writer) {
		log.Debug("output is not a terminal, disabling color")
		if err := cmd.Set("color", "false"); err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// CommandBuilder is a helper that constructs a cli.Command for the
// subcommands using a consistent pattern. Row commands get the output flags
// and --schema on top of their own flags.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Rows      bool
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	flags := append([]cli.Flag{}, cb.Flags...)

	cmd := &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Action: cb.Action,
	}

	if cb.Rows {
		flags = append(flags, newSchemaFlag())
		flags = append(flags, NewGlobalFlags(cb.Name, cb.Meta.Config.Source)...)
		cmd.Before = colorBefore
	}
	cmd.Flags = flags

	return cmd
}

// ViewActionRunner encapsulates the action of the view subcommands: read the
// ids, open the engine, compute one joined string and print it on a line of
// its own.
type ViewActionRunner struct {
	CommandName string
	ViewFn      func(context.Context, *cli.Command, *mapping.Engine, []string) (string, error)
}

// Run executes the view with the provided context and command.
func (vr *ViewActionRunner) Run(ctx context.Context, cmd *cli.Command) error {
	log.Debugf("Executing action for %s", vr.CommandName)

	ids, err := ReadIDs(cmd)
	if err != nil {
		return err
	}
	log.Debugf("%s: %s ids", vr.CommandName, humanize.Comma(int64(len(ids))))

	var result string
	if err := WithEngine(ctx, cmd, func(e *mapping.Engine) error {
		result, err = vr.ViewFn(ctx, cmd, e, ids)
		return err
	}); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, result)
	return err
}
