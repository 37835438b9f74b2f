package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/staranto/edgectlgo/internal/meta"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `# bash completion for edgectl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_edgectl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "bq cache get key oq completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr"

    case "$cmd" in
    bq)
      local opts="$common --schema"
            ;;
        cache)
      local opts="--cache --purge --rm --base --tldr"
            ;;
        get)
      local opts="$common --schema --bucket -b --out --metadata -m"
            ;;
        key)
      local opts="--use-file-name -n --tldr"
            ;;
        oq)
      local opts="$common --schema --bucket -b --prefix -p --delimiter --limit -l"
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

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

  if [[ "$cur" == -* ]]; then
    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
  fi

  # Non-flag positionals (object keys, file names) have no completion source.
  COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
  return 0
}

complete -F _edgectl edgectl
`

const zshCompletionScript = `#compdef edgectl

_edgectl() {
  local -a cmds
  cmds=(
    'bq:bucket binding query'
    'cache:local cache maintenance'
    'get:fetch a single object'
    'key:derive a unique object key'
    'oq:object query'
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
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'edgectl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    bq)
      _arguments -C \
        $common \
        '--schema[dump schema]'
      ;;
    cache)
      _arguments -C \
        '--cache[named cache]:name' \
        '--purge[purge entries older than hours]:hours' \
        '--rm[remove the cache entry for a URL]:url' \
        '--base[base URL for a relative --rm target]:url' \
        '--tldr[show tldr page]'
      ;;
    get)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-b --bucket)'{-b,--bucket}'[bucket binding]:binding' \
        '--out[write body to file]:file:_files' \
        '(-m --metadata)'{-m,--metadata}'[emit metadata instead of body]' \
        '1:key'
      ;;
    key)
      _arguments -C \
        '(-n --use-file-name)'{-n,--use-file-name}'[keep the file base name]' \
        '--tldr[show tldr page]' \
        '1:filename:_files'
      ;;
    oq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-b --bucket)'{-b,--bucket}'[bucket binding]:binding' \
        '(-p --prefix)'{-p,--prefix}'[key prefix]:prefix' \
        '--delimiter[group keys by delimiter]:delimiter' \
        '(-l --limit)'{-l,--limit}'[page size]:limit'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _edgectl edgectl edgectlgo
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(os.Stdout, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(os.Stdout, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: edgectl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "edgectl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
