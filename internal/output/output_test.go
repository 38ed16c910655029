// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/idmapgo/internal/attrs"
)

func TestSortDataset(t *testing.T) {
	testData := []map[string]interface{}{
		{"protein_id": "Q99999", "rank": 3.0, "organism": "human"},
		{"protein_id": "a12345", "rank": 1.0, "organism": "mouse"},
		{"protein_id": "P12345", "rank": 2.0, "organism": "human"},
	}

	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{"ascending, case folded", "protein_id", []string{"a12345", "P12345", "Q99999"}},
		{"descending", "-protein_id", []string{"Q99999", "P12345", "a12345"}},
		{"case sensitive", "!protein_id", []string{"P12345", "Q99999", "a12345"}},
		{"numeric", "rank", []string{"a12345", "P12345", "Q99999"}},
		{"numeric descending", "-rank", []string{"Q99999", "P12345", "a12345"}},
		{"multiple keys", "organism,-rank", []string{"Q99999", "P12345", "a12345"}},
		{"empty spec keeps order", "", []string{"Q99999", "a12345", "P12345"}},
		{"missing key keeps order", "nope", []string{"Q99999", "a12345", "P12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]map[string]interface{}, len(testData))
			copy(data, testData)

			SortDataset(data, tt.spec)

			var got []string
			for _, row := range data {
				got = append(got, row["protein_id"].(string))
			}
			assert.Equal(t, tt.wantOrder, got)
		})
	}
}

func TestInterfaceToString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		emptyVal string
		want     string
	}{
		{name: "string", value: "P12345", want: "P12345"},
		{name: "int", value: 42, want: "42"},
		{name: "float64", value: 42.0, want: "42"},
		{name: "bool true", value: true, want: "true"},
		{name: "bool false is zero value", value: false, want: ""},
		{name: "nil default", value: nil, want: ""},
		{name: "nil custom", value: nil, emptyVal: "-", want: "-"},
		{name: "empty string custom", value: "", emptyVal: "-", want: "-"},
		{name: "slice", value: []string{"ABC", "DEF"}, want: `["ABC","DEF"]`},
		{name: "map", value: map[string]int{"x": 1}, want: `{"x":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = InterfaceToString(tt.value, tt.emptyVal)
			} else {
				got = InterfaceToString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

type sampleRow struct {
	ProteinID string `json:"protein_id"`
	Organism  string `json:"organism"`
	Gene      string `json:"gene,omitempty"`
	Hidden    string `json:"-"`
	Untagged  string
}

func TestSchema(t *testing.T) {
	assert.Equal(t, []string{"protein_id", "organism", "gene"}, Schema(reflect.TypeOf(sampleRow{})))
	assert.Equal(t, []string{"protein_id", "organism", "gene"}, Schema(reflect.TypeOf(&sampleRow{})))
	assert.Nil(t, Schema(reflect.TypeOf("")))

	var buf bytes.Buffer
	DumpSchema(&buf, reflect.TypeOf(sampleRow{}))
	assert.Equal(t, "Schema for sampleRow --\nprotein_id\norganism\ngene\n", buf.String())
}

// spit runs SliceDiceSpit under a command carrying the usual output flags.
func spit(t *testing.T, rows any, list attrs.AttrList, args ...string) string {
	t.Helper()

	raw, err := Marshal(rows)
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := &cli.Command{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Value: "text"},
			&cli.StringFlag{Name: "filter"},
			&cli.StringFlag{Name: "sort"},
			&cli.BoolFlag{Name: "titles"},
			&cli.BoolFlag{Name: "color"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return SliceDiceSpit(raw, list, cmd, &out)
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return out.String()
}

var rows = []sampleRow{
	{ProteinID: "Q99999", Organism: "human"},
	{ProteinID: "P12345", Organism: "mouse"},
	{ProteinID: "O00001"},
}

func TestSliceDiceSpit_JSON(t *testing.T) {
	got := spit(t, rows, attrs.New("protein_id", "organism"),
		"--output", "json", "--filter", "organism!=human", "--sort", "protein_id")

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	assert.Equal(t, []map[string]string{
		{"protein_id": "O00001", "organism": ""},
		{"protein_id": "P12345", "organism": "mouse"},
	}, decoded)
}

func TestSliceDiceSpit_JSONEmpty(t *testing.T) {
	got := spit(t, rows, attrs.New("protein_id"), "--output", "json", "--filter", "protein_id=NOPE")
	assert.Equal(t, "[]\n", got)
}

func TestSliceDiceSpit_YAMLWithExcludedAttr(t *testing.T) {
	list := attrs.New("protein_id", "organism")
	require.NoError(t, list.Set("!organism,protein_id:id:l"))

	got := spit(t, rows, list, "--output", "yaml", "--filter", "organism=human")

	var decoded []map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(got), &decoded))
	assert.Equal(t, []map[string]string{{"id": "q99999"}}, decoded)
}

func TestSliceDiceSpit_Text(t *testing.T) {
	got := spit(t, rows, attrs.New("protein_id", "organism"), "--titles", "--sort", "-protein_id")

	var lines []string
	for _, l := range strings.Split(got, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "protein_id")
	assert.Contains(t, lines[0], "organism")
	assert.Contains(t, lines[1], "Q99999")
	assert.Contains(t, lines[3], "O00001")
	// Empty cells render as a dash.
	assert.Contains(t, lines[3], "-")
}

func TestSliceDiceSpit_TextEmpty(t *testing.T) {
	got := spit(t, []sampleRow{}, attrs.New("protein_id"))
	assert.Empty(t, got)
}

func TestSliceDiceSpit_Raw(t *testing.T) {
	got := spit(t, rows[:1], attrs.New("protein_id"), "--output", "raw")
	assert.JSONEq(t, `[{"protein_id":"Q99999","organism":"human","Untagged":""}]`, got)
}

func TestSliceDiceSpit_UnknownFormat(t *testing.T) {
	raw, err := Marshal(rows)
	require.NoError(t, err)

	cmd := &cli.Command{
		Name:  "test",
		Flags: []cli.Flag{&cli.StringFlag{Name: "output"}},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return SliceDiceSpit(raw, attrs.New("protein_id"), cmd, &bytes.Buffer{})
		},
	}
	err = cmd.Run(context.Background(), []string{"test", "--output", "xml"})
	assert.ErrorContains(t, err, "unknown output format")
}

func TestGetColors(t *testing.T) {
	header, even, odd := getColors("colors")
	assert.NotEmpty(t, header)
	assert.NotEmpty(t, even)
	assert.NotEmpty(t, odd)
}

func BenchmarkSortDataset(b *testing.B) {
	testData := []map[string]interface{}{
		{"protein_id": "Q99999", "rank": 3.0},
		{"protein_id": "P12345", "rank": 1.0},
		{"protein_id": "O00001", "rank": 2.0},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data := make([]map[string]interface{}, len(testData))
		copy(data, testData)
		SortDataset(data, "protein_id")
	}
}
