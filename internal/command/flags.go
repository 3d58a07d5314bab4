// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var (
	schemaFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the plan dataset keys",
		HideDefault: true,
	}
)

// NewRunFlags returns the flags shared by run and plan. When defaults names
// the user defaults file, string flags also read "<ns>.<flag>" and "<flag>"
// from it.
func NewRunFlags(ns string, defaults string) []cli.Flag {
	return []cli.Flag{
		NewConfigFlag(),
		NewWorkDirFlag(ns, defaults),
		&cli.IntFlag{
			Name:  "cache-ttl",
			Usage: "purge cached S3 downloads older than this many hours (0 keeps all)",
			Value: 0,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("PKGDIFF_CACHE_TTL"),
			),
		},
		&cli.StringSliceFlag{
			Name:    "ignore",
			Aliases: []string{"i"},
			Usage:   "additional substring pattern to ignore (repeatable)",
		},
		&cli.BoolFlag{
			Name:    "keep-temp",
			Aliases: []string{"k"},
			Usage:   "keep the work directory after the run",
		},
		&cli.BoolFlag{
			Name:  "skip-dev-only",
			Usage: "leave out files that exist only in DEV",
		},
	}
}

// NewConfigFlag constructs the --config flag naming the run configuration
// file. It may come from PKGDIFF_CONFIG.
func NewConfigFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "run configuration file (JSON or YAML)",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("PKGDIFF_CONFIG"),
		),
	}
}

// NewWorkDirFlag constructs the --work-dir flag, optionally namespaced to a
// command and backed by the user defaults file.
func NewWorkDirFlag(ns string, defaults string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "work-dir",
		Aliases: []string{"w"},
		Usage:   "scratch directory for extraction. Overrides work_dir in the config file",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("PKGDIFF_WORK_DIR"),
		),
	}

	if defaults != "" {
		flag = NameSpacedValueChainFlagFromConfigFile(ns, defaults, flag)
	}

	return
}

// NewPlanFlags returns the rendering flags of the plan command. The output
// and sort defaults may come from the user defaults file.
func NewPlanFlags(ns string, defaults string) (flags []cli.Flag) {
	output := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output format (text, json, yaml)",
		Value:   "text",
		Sources: cli.NewValueSourceChain(),
		Validator: func(value string) error {
			return FlagValidators(value, OutputValidator)
		},
	}
	sortFlag := &cli.StringFlag{
		Name:    "sort",
		Aliases: []string{"s"},
		Usage:   "comma-separated list of attributes to sort the results by",
		Value:   "path",
		Sources: cli.NewValueSourceChain(),
	}
	if defaults != "" {
		output = NameSpacedValueChainFlagFromConfigFile(ns, defaults, output)
		sortFlag = NameSpacedValueChainFlagFromConfigFile(ns, defaults, sortFlag)
	}

	flags = []cli.Flag{
		output,
		sortFlag,
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:  "color",
			Usage: "colored text output (default: on when stdout is a terminal and NO_COLOR is unset)",
			Value: false,
		},
		&cli.IntFlag{
			Name:  "padding",
			Usage: "cell padding for text output",
			Value: 1,
			Validator: func(value int) error {
				return FlagValidators(value, PaddingValidator)
			},
		},
		&cli.BoolFlag{
			Name:  "patch",
			Usage: "include a preview of each change",
			Value: false,
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
		schemaFlag,
	}

	return
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
