// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/idmapgo/internal/meta"
)

const bashCompletionScript = `# bash completion for idmap
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_idmap()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "resolve genes orthologs filter-ids gene-ids completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --schema"
    local organisms="human mouse rat rabbit"

    case "$cmd" in
        resolve)
            local opts="$common --type --organism -g --target -T --offline"
            ;;
        genes)
            local opts="--all --organism -g --offline"
            ;;
        orthologs)
            local opts="--fetch --organism -g --target -T --offline"
            ;;
        filter-ids)
            local opts="--decoys --organism -g"
            ;;
        gene-ids)
            local opts="--unreviewed --organism -g"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts=""
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --type)
            COMPREPLY=( $(compgen -W "protein gene ortholog" -- "$cur") )
            return 0
            ;;
        --target|-T)
            COMPREPLY=( $(compgen -W "$organisms" -- "$cur") )
            return 0
            ;;
        --organism|-g)
            if [[ "$cmd" == "orthologs" ]]; then
                COMPREPLY=( $(compgen -W "$organisms" -- "$cur") )
            fi
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    fi
    return 0
}

complete -F _idmap idmap
`

const zshCompletionScript = `#compdef idmap

_idmap() {
  local -a cmds
  cmds=(
    'resolve:map ids to cached or freshly resolved rows'
    'genes:gene names of protein ids'
    'orthologs:ortholog symbols of gene symbols in another organism'
    'filter-ids:protein ids known to the cache'
    'gene-ids:protein ids of gene names'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--schema[dump schema]'
  )

  local organisms='(human mouse rat rabbit)'

  if (( CURRENT == 2 )); then
    _describe -t commands 'idmap commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    resolve)
      _arguments -C \
        $common \
        '--type[input type]:type:(protein gene ortholog)' \
        '(-g --organism)'{-g,--organism}'[organism]:organism' \
        '(-T --target)'{-T,--target}"[target organism]:organism:$organisms" \
        '--offline[cache only]' \
        '*:id'
      ;;
    genes)
      _arguments -C \
        '--all[all gene name synonyms]' \
        '(-g --organism)'{-g,--organism}'[organism]:organism' \
        '--offline[cache only]' \
        '*:protein id'
      ;;
    orthologs)
      _arguments -C \
        '--fetch[resolve misses first]' \
        '(-g --organism)'{-g,--organism}"[source organism]:organism:$organisms" \
        '(-T --target)'{-T,--target}"[target organism]:organism:$organisms" \
        '--offline[cache only]' \
        '*:symbol'
      ;;
    filter-ids)
      _arguments -C \
        '--decoys[keep decoys]' \
        '(-g --organism)'{-g,--organism}'[organism]:organism' \
        '*:protein id'
      ;;
    gene-ids)
      _arguments -C \
        '--unreviewed[include unreviewed]' \
        '(-g --organism)'{-g,--organism}'[organism]:organism' \
        '*:gene'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _idmap idmap
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	w := cmd.Root().Writer
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return fmt.Errorf("usage: idmap completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "idmap completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
