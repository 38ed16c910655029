// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func genesCommand() *cli.Command {
	return &cli.Command{
		Name:      "genes",
		Usage:     "gene names of protein ids",
		UsageText: "idmap genes [--all] PROTEIN_ID...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "every gene name synonym"},
			&cli.StringFlag{Name: "organism", Aliases: []string{"g"}, Usage: "organism"},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := renderMarkdown(genesCommand())

	assert.Contains(t, md, "# idmap genes\n")
	assert.Contains(t, md, "Gene names of protein ids.\n")
	assert.Contains(t, md, "- `--all`: every gene name synonym\n")
	assert.Contains(t, md, "- `--organism, -g`: organism\n")
	assert.Contains(t, md, "## Quick examples")

	title, short := extractTitleAndShortDesc(md)
	assert.Equal(t, "idmap genes", title)
	assert.Equal(t, "Gene names of protein ids.", short)
}

func TestExtractQuickExamples(t *testing.T) {
	exs := extractQuickExamples(renderMarkdown(genesCommand()))
	assert.Equal(t, []example{
		{Desc: "Primary gene names of protein ids", Cmd: "idmap genes P04637 P38398"},
		{Desc: "Every gene name synonym", Cmd: "idmap genes --all P04637"},
	}, exs)

	assert.Nil(t, extractQuickExamples("# idmap x\n\nno examples here\n"))
}

func TestBuildTLDR(t *testing.T) {
	got := buildTLDR("genes", "idmap genes", "Gene names of protein ids.", []example{
		{Desc: "Primary gene names", Cmd: "idmap  genes   P04637"},
	})
	assert.Equal(t, "# idmap-genes\n\n"+
		"> Gene names of protein ids.\n"+
		"> More information: https://github.com/staranto/idmapgo.\n\n"+
		"- Primary gene names:\n\n"+
		"`idmap genes P04637`\n", got)

	got = buildTLDR("genes", "", "", nil)
	assert.Contains(t, got, "`idmap genes --help`")
}

func TestWriteFileIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.1")

	require.NoError(t, writeFileIfChanged(path, []byte("one\n"), true))
	info, err := os.Stat(path)
	require.NoError(t, err)

	// Same content modulo surrounding whitespace is left alone.
	require.NoError(t, writeFileIfChanged(path, []byte("  one  "), true))
	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime())
	got, _ := os.ReadFile(path)
	assert.Equal(t, "one\n", string(got))

	require.NoError(t, writeFileIfChanged(path, []byte("two\n"), true))
	got, _ = os.ReadFile(path)
	assert.Equal(t, "two\n", string(got))
}
