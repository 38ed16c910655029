// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package mapping

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	memdb "github.com/hashicorp/go-memdb"

	"github.com/staranto/idmapgo/internal/backend"
	"github.com/staranto/idmapgo/internal/csv"
)

// Persisted table names. Backends treat them as opaque object names.
const (
	ProteinTable  = "protein_to_genenames.csv"
	GeneNameTable = "genenames_to_protein.csv"
	OrthologTable = "genenames_to_orthologs.csv"
)

// memdb table names.
const (
	tblProtein  = "protein"
	tblGeneName = "genename"
	tblOrtholog = "ortholog"
)

// Every table carries a synthetic, unique "id" index over the insertion
// sequence and a non-unique "key" index over its natural key. Rows never
// change once inserted, so Seq doubles as insertion order for Save.
type proteinEntry struct {
	Seq uint64
	ProteinRow
}

type geneNameEntry struct {
	Seq uint64
	GeneNameRow
}

type orthologEntry struct {
	Seq uint64
	OrthologRow
}

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblProtein: {
			Name: tblProtein,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: seqIndexer{},
				},
				"key": {
					Name:         "key",
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "ProteinID"},
				},
			},
		},
		tblGeneName: {
			Name: tblGeneName,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: seqIndexer{},
				},
				"key": {
					Name:         "key",
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "GeneName"},
				},
			},
		},
		tblOrtholog: {
			Name: tblOrtholog,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: seqIndexer{},
				},
				"key": {
					Name:    "key",
					Indexer: orthologKeyIndexer{},
				},
			},
		},
	},
}

// Store is the append-only mapping cache. It holds the three tables in memory
// and moves them to and from a backend on Load and Save.
type Store struct {
	db      *memdb.MemDB
	backend backend.Backend
	seq     uint64
}

// NewStore returns an empty store persisting through be. A nil backend gives
// a memory-only store whose Load and Save are no-ops.
func NewStore(be backend.Backend) (*Store, error) {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create mapping tables: %w", err)
	}
	return &Store{db: db, backend: be}, nil
}

// Open is NewStore followed by Load.
func Open(ctx context.Context, be backend.Backend) (*Store, error) {
	s, err := NewStore(be)
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load appends the rows of every persisted table. A table the backend does
// not have starts empty. Load is meant to run once, on a fresh store.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	loaders := []struct {
		name string
		load func(csv.Table) error
	}{
		{ProteinTable, s.loadProteins},
		{GeneNameTable, s.loadGeneNames},
		{OrthologTable, s.loadOrthologs},
	}

	for _, l := range loaders {
		raw, err := s.backend.Read(ctx, l.name)
		if errors.Is(err, backend.ErrNotExist) {
			log.Debugf("no persisted %s in %s, starting empty", l.name, s.backend)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", l.name, err)
		}

		t, err := csv.DecodeBytes(raw, csv.Comma)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", l.name, err)
		}
		// A zero byte file is as good as a missing one.
		if len(t.Header) == 0 {
			continue
		}
		if err := l.load(t); err != nil {
			return fmt.Errorf("failed to load %s: %w", l.name, err)
		}
	}

	log.Debugf("loaded %d protein, %d gene name, %d ortholog rows",
		s.Len(ProteinID), s.Len(GeneName), s.Len(Orthologs))
	return nil
}

func (s *Store) loadProteins(t csv.Table) error {
	idx, err := csv.Index(t.Header, ProteinColumns...)
	if err != nil {
		return err
	}
	rows := make([]ProteinRow, 0, len(t.Records))
	for _, rec := range t.Records {
		rows = append(rows, ProteinRow{
			GeneNames:       csv.Cell(rec, idx[ProteinColumns[0]]),
			PrimaryGeneName: csv.Cell(rec, idx[ProteinColumns[1]]),
			Reviewed:        csv.Cell(rec, idx[ProteinColumns[2]]),
			Organism:        csv.Cell(rec, idx[ProteinColumns[3]]),
			ProteinID:       csv.Cell(rec, idx[ProteinColumns[4]]),
		})
	}
	return s.AppendProteins(rows)
}

func (s *Store) loadGeneNames(t csv.Table) error {
	idx, err := csv.Index(t.Header, GeneNameColumns...)
	if err != nil {
		return err
	}
	rows := make([]GeneNameRow, 0, len(t.Records))
	for _, rec := range t.Records {
		rows = append(rows, GeneNameRow{
			ProteinID: csv.Cell(rec, idx[GeneNameColumns[0]]),
			Status:    csv.Cell(rec, idx[GeneNameColumns[1]]),
			Organism:  csv.Cell(rec, idx[GeneNameColumns[2]]),
			GeneName:  csv.Cell(rec, idx[GeneNameColumns[3]]),
		})
	}
	return s.AppendGeneNames(rows)
}

func (s *Store) loadOrthologs(t csv.Table) error {
	idx, err := csv.Index(t.Header, OrthologColumns...)
	if err != nil {
		return err
	}
	rows := make([]OrthologRow, 0, len(t.Records))
	for _, rec := range t.Records {
		rows = append(rows, OrthologRow{
			SourceSymbol:   csv.Cell(rec, idx[OrthologColumns[0]]),
			SourceOrganism: csv.Cell(rec, idx[OrthologColumns[1]]),
			Ensg:           csv.Cell(rec, idx[OrthologColumns[2]]),
			OrthologEnsg:   csv.Cell(rec, idx[OrthologColumns[3]]),
			TargetSymbol:   csv.Cell(rec, idx[OrthologColumns[4]]),
			TargetOrganism: csv.Cell(rec, idx[OrthologColumns[5]]),
			Description:    csv.Cell(rec, idx[OrthologColumns[6]]),
		})
	}
	return s.AppendOrthologs(rows)
}

// Save overwrites every persisted table with the full in-memory contents.
func (s *Store) Save(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	txn := s.db.Txn(false)
	defer txn.Abort()

	tables := []struct {
		name    string
		table   string
		header  []string
		extract func(any) []string
	}{
		{ProteinTable, tblProtein, ProteinColumns, func(o any) []string { return o.(*proteinEntry).record() }},
		{GeneNameTable, tblGeneName, GeneNameColumns, func(o any) []string { return o.(*geneNameEntry).record() }},
		{OrthologTable, tblOrtholog, OrthologColumns, func(o any) []string { return o.(*orthologEntry).record() }},
	}

	for _, t := range tables {
		it, err := txn.Get(t.table, "id")
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", t.table, err)
		}

		var records [][]string
		for obj := it.Next(); obj != nil; obj = it.Next() {
			records = append(records, t.extract(obj))
		}

		data, err := csv.EncodeBytes(t.header, records)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", t.name, err)
		}
		if err := s.backend.Write(ctx, t.name, data); err != nil {
			return fmt.Errorf("failed to write %s: %w", t.name, err)
		}
		log.Debugf("saved %d rows to %s", len(records), t.name)
	}

	return nil
}

// LookupProteins returns the cached rows whose protein id is in ids and, when
// organism is set, whose organism matches. missing lists the ids with no row
// at all, regardless of organism.
func (s *Store) LookupProteins(ids []string, organism string) (rows []ProteinRow, missing []string, err error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	seen := make(map[ProteinRow]struct{})
	for _, id := range unique(ids) {
		it, err := txn.Get(tblProtein, "key", id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up protein %s: %w", id, err)
		}

		found := false
		for obj := it.Next(); obj != nil; obj = it.Next() {
			found = true
			row := obj.(*proteinEntry).ProteinRow
			if organism != "" && row.Organism != organism {
				continue
			}
			if _, dup := seen[row]; !dup {
				seen[row] = struct{}{}
				rows = append(rows, row)
			}
		}
		if !found {
			missing = append(missing, id)
		}
	}

	return rows, missing, nil
}

// LookupGeneNames is LookupProteins for the gene name table.
func (s *Store) LookupGeneNames(genes []string, organism string) (rows []GeneNameRow, missing []string, err error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	seen := make(map[GeneNameRow]struct{})
	for _, g := range unique(genes) {
		it, err := txn.Get(tblGeneName, "key", g)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up gene %s: %w", g, err)
		}

		found := false
		for obj := it.Next(); obj != nil; obj = it.Next() {
			found = true
			row := obj.(*geneNameEntry).GeneNameRow
			if organism != "" && row.Organism != organism {
				continue
			}
			if _, dup := seen[row]; !dup {
				seen[row] = struct{}{}
				rows = append(rows, row)
			}
		}
		if !found {
			missing = append(missing, g)
		}
	}

	return rows, missing, nil
}

// LookupOrthologs returns the cached rows for symbols under the (source,
// target) organism pair. The organism pair is part of the natural key, so a
// symbol cached only for another pair is reported missing.
func (s *Store) LookupOrthologs(symbols []string, source, target string) (rows []OrthologRow, missing []string, err error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	seen := make(map[OrthologRow]struct{})
	for _, sym := range unique(symbols) {
		it, err := txn.Get(tblOrtholog, "key", sym, source, target)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up ortholog %s: %w", sym, err)
		}

		found := false
		for obj := it.Next(); obj != nil; obj = it.Next() {
			found = true
			row := obj.(*orthologEntry).OrthologRow
			if _, dup := seen[row]; !dup {
				seen[row] = struct{}{}
				rows = append(rows, row)
			}
		}
		if !found {
			missing = append(missing, sym)
		}
	}

	return rows, missing, nil
}

// AppendProteins adds rows. Duplicates are kept. Cells are folded to the
// form a saved table reads back as, in place, so callers holding rows see
// the same values a later run gets from disk.
func (s *Store) AppendProteins(rows []ProteinRow) error {
	for i := range rows {
		r := &rows[i]
		foldNewlines(&r.GeneNames, &r.PrimaryGeneName, &r.Reviewed, &r.Organism, &r.ProteinID)
	}
	return s.insert(tblProtein, len(rows), func(i int, seq uint64) any {
		return &proteinEntry{Seq: seq, ProteinRow: rows[i]}
	})
}

// AppendGeneNames adds rows like AppendProteins.
func (s *Store) AppendGeneNames(rows []GeneNameRow) error {
	for i := range rows {
		r := &rows[i]
		foldNewlines(&r.ProteinID, &r.Status, &r.Organism, &r.GeneName)
	}
	return s.insert(tblGeneName, len(rows), func(i int, seq uint64) any {
		return &geneNameEntry{Seq: seq, GeneNameRow: rows[i]}
	})
}

// AppendOrthologs adds rows like AppendProteins.
func (s *Store) AppendOrthologs(rows []OrthologRow) error {
	for i := range rows {
		r := &rows[i]
		foldNewlines(&r.SourceSymbol, &r.SourceOrganism, &r.Ensg, &r.OrthologEnsg,
			&r.TargetSymbol, &r.TargetOrganism, &r.Description)
	}
	return s.insert(tblOrtholog, len(rows), func(i int, seq uint64) any {
		return &orthologEntry{Seq: seq, OrthologRow: rows[i]}
	})
}

// foldNewlines turns \r\n into \n. encoding/csv does the same to quoted
// cells on read.
func foldNewlines(cells ...*string) {
	for _, c := range cells {
		*c = strings.ReplaceAll(*c, "\r\n", "\n")
	}
}

func (s *Store) insert(table string, n int, entry func(int, uint64) any) error {
	if n == 0 {
		return nil
	}

	// memdb serializes write transactions, which also guards seq.
	txn := s.db.Txn(true)
	defer txn.Abort()

	seq := s.seq
	for i := 0; i < n; i++ {
		seq++
		if err := txn.Insert(table, entry(i, seq)); err != nil {
			return fmt.Errorf("failed to append to %s: %w", table, err)
		}
	}

	txn.Commit()
	s.seq = seq
	return nil
}

// Len is the number of rows, duplicates included, in the table for t.
func (s *Store) Len(t InputType) int {
	table := tblProtein
	switch t {
	case GeneName:
		table = tblGeneName
	case Orthologs:
		table = tblOrtholog
	}

	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(table, "id")
	if err != nil {
		return 0
	}
	n := 0
	for obj := it.Next(); obj != nil; obj = it.Next() {
		n++
	}
	return n
}

// unique drops repeated ids, keeping first-seen order.
func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type sequenced interface{ sequence() uint64 }

func (e *proteinEntry) sequence() uint64  { return e.Seq }
func (e *geneNameEntry) sequence() uint64 { return e.Seq }
func (e *orthologEntry) sequence() uint64 { return e.Seq }

// seqIndexer encodes Seq big-endian so an "id" scan walks rows in insertion
// order. memdb.UintFieldIndex uses uvarints, which do not sort.
type seqIndexer struct{}

func (seqIndexer) FromObject(raw any) (bool, []byte, error) {
	e, ok := raw.(sequenced)
	if !ok {
		return false, nil, fmt.Errorf("unexpected entry type %T", raw)
	}
	return true, binary.BigEndian.AppendUint64(nil, e.sequence()), nil
}

func (seqIndexer) FromArgs(args ...any) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("id takes 1 argument, got %d", len(args))
	}
	seq, ok := args[0].(uint64)
	if !ok {
		return nil, fmt.Errorf("id argument must be a uint64: %#v", args[0])
	}
	return binary.BigEndian.AppendUint64(nil, seq), nil
}

// orthologKeyIndexer indexes OrthologRow by its composite natural key. Unlike
// memdb.CompoundIndex it indexes empty components too, so a row with a blank
// organism is still reachable by an exact key.
type orthologKeyIndexer struct{}

func (orthologKeyIndexer) FromObject(raw any) (bool, []byte, error) {
	e, ok := raw.(*orthologEntry)
	if !ok {
		return false, nil, fmt.Errorf("unexpected ortholog entry type %T", raw)
	}
	return true, orthologKey(e.SourceSymbol, e.SourceOrganism, e.TargetOrganism), nil
}

func (orthologKeyIndexer) FromArgs(args ...any) ([]byte, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("ortholog key takes 3 arguments, got %d", len(args))
	}
	parts := make([]string, 3)
	for i, a := range args {
		s, ok := a.(string)
		if !ok {
			return nil, fmt.Errorf("ortholog key argument %d must be a string: %#v", i, a)
		}
		parts[i] = s
	}
	return orthologKey(parts[0], parts[1], parts[2]), nil
}

func orthologKey(symbol, source, target string) []byte {
	b := make([]byte, 0, len(symbol)+len(source)+len(target)+3)
	b = append(b, symbol...)
	b = append(b, 0)
	b = append(b, source...)
	b = append(b, 0)
	b = append(b, target...)
	b = append(b, 0)
	return b
}
