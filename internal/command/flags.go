// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"os"
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// envValueSource reads an environment variable like cli.EnvVar but treats
// an exported empty value as unset, so `IDMAP_ORGANISM=` falls through to
// the config file instead of hiding it.
type envValueSource struct {
	key string
}

func envVar(key string) cli.ValueSource {
	return &envValueSource{key: key}
}

func (e *envValueSource) Lookup() (string, bool) {
	v, ok := os.LookupEnv(e.key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func (e *envValueSource) IsFromEnv() bool { return true }
func (e *envValueSource) Key() string     { return e.key }

func (e *envValueSource) String() string {
	return fmt.Sprintf("environment variable %q", e.key)
}

func (e *envValueSource) GoString() string {
	return fmt.Sprintf("&envValueSource{key:%q}", e.key)
}

func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the schema",
		HideDefault: true,
	}
}

func newOfflineFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "offline",
		Usage: "answer from the cache only, never call out",
		Sources: cli.NewValueSourceChain(
			envVar("IDMAP_OFFLINE"),
		),
		HideDefault: true,
	}
}

// NewGlobalFlags returns the output flags shared by the row commands. ns is
// the command name and source the config file, which supplies defaults for
// ns.<flag> and then <flag>.
func NewGlobalFlags(ns, source string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(source)),
				yaml.YAML("color", altsrc.StringSourcer(source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(source)),
				yaml.YAML("output", altsrc.StringSourcer(source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"sort", altsrc.StringSourcer(source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(source)),
				yaml.YAML("titles", altsrc.StringSourcer(source)),
			),
			Value: false,
		},
	}

	return
}

// NewOrganismFlag constructs the "organism" flag. Protein and gene name
// commands match it exactly against the organism UniProt reports, while the
// ortholog commands read it as the source organism short name.
func NewOrganismFlag(ns, source, usage string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "organism",
		Aliases: []string{"g"},
		Usage:   usage,
		Sources: cli.NewValueSourceChain(
			envVar("IDMAP_ORGANISM"),
		),
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator)
		},
	}

	return NameSpacedValueChainFlagFromConfigFile(ns, source, flag)
}

// NewTargetFlag constructs the "target" flag naming the ortholog target
// organism.
func NewTargetFlag(ns, source string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "target",
		Aliases: []string{"T"},
		Usage:   "ortholog target organism short name (" + organismList() + ")",
		Sources: cli.NewValueSourceChain(
			envVar("IDMAP_TARGET"),
		),
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator, OrganismValidator)
		},
	}

	return NameSpacedValueChainFlagFromConfigFile(ns, source, flag)
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain. Env vars already in the chain
// keep precedence.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
