// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/pkgdiff/internal/meta"
)

const bashCompletionScript = `# bash completion for pkgdiff
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_pkgdiff()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "run plan completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--config -c --work-dir -w --keep-temp -k --ignore -i --skip-dev-only --cache-ttl"

    case "$cmd" in
        run)
            local opts="$common"
            ;;
        plan)
            local opts="$common --attrs -a --color --filter -f --output -o --padding --patch --schema --sort -s --titles -t"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
            return 0
            ;;
        --config|-c)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
        --work-dir|-w)
            COMPREPLY=( $(compgen -o dirnames -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _pkgdiff pkgdiff
`

const zshCompletionScript = `#compdef pkgdiff

_pkgdiff() {
  local -a cmds
  cmds=(
    'run:build the diff archive of new and changed files'
    'plan:list what a run would pack without writing an archive'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --config)'{-c,--config}'[run configuration file]:file:_files'
  '(-w --work-dir)'{-w,--work-dir}'[scratch directory]:directory:_directories'
  '(-k --keep-temp)'{-k,--keep-temp}'[keep the work directory]'
  '*'{-i,--ignore}'[additional ignore pattern]:pattern'
  '--skip-dev-only[leave out files that exist only in DEV]'
  '--cache-ttl[purge cached downloads older than hours]:hours'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'pkgdiff commands' cmds
    return
  fi

  case $words[2] in
    run)
      _arguments -C $common
      ;;
    plan)
      _arguments -C \
        $common \
        '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs' \
        '--color[enable colored text]' \
        '(-f --filter)'{-f,--filter}'[filters to apply]:filters' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)' \
        '--padding[cell padding]:padding' \
        '--patch[include change previews]' \
        '--schema[dump dataset keys]' \
        '(-s --sort)'{-s,--sort}'[sort attributes]:attrs' \
        '(-t --titles)'{-t,--titles}'[show titles]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _pkgdiff pkgdiff
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	w := stdout(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(w, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(w, bashCompletionScript)
		default:
			fmt.Fprintln(stderr(cmd), "usage: pkgdiff completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "pkgdiff completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
