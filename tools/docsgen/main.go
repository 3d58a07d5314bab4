// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/pkgdiff/internal/command"
)

type Config struct {
	Subcommands []Subcommand `yaml:"subcommands"`
}

type Subcommand struct {
	ID          string    `yaml:"id"`
	Short       string    `yaml:"short"`
	Description string    `yaml:"description"`
	Usage       string    `yaml:"usage"`
	Flags       []Flag    `yaml:"-"`
	Examples    []Example `yaml:"examples"`
	Notes       []string  `yaml:"notes,omitempty"`
}

type Flag struct {
	Syntax      string
	Description string
	Default     string
	Env         string
}

type Example struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
}

type TemplateData struct {
	Subcommand
	Date    string
	Version string
	IDUpper string
}

type Outputs struct {
	Template string
	Folder   string
	Prefix   string
	Suffix   string
}

const markdownTemplate = `# pkgdiff {{.ID}}

{{.Short}}

## Usage

    {{.Usage}}

## Description

{{.Description}}

## Options

| Flag | Description | Default | Env |
|---|---|---|---|
{{- range .Flags}}
| ` + "`{{.Syntax}}`" + ` | {{.Description}} | {{.Default}} | {{.Env}} |
{{- end}}

## Examples
{{range .Examples}}
{{.Description}}

    {{.Command}}
{{end}}
{{- if .Notes}}
## Notes
{{range .Notes}}
- {{.}}
{{- end}}
{{end}}
_Generated {{.Date}} for version {{.Version}}._
`

const manTemplate = `.TH PKGDIFF-{{.IDUpper}} 1 "{{.Date}}" "pkgdiff {{.Version}}" "pkgdiff manual"
.SH NAME
pkgdiff-{{.ID}} \- {{.Short}}
.SH SYNOPSIS
.B {{.Usage}}
.SH DESCRIPTION
{{.Description}}
.SH OPTIONS
{{- range .Flags}}
.TP
.B {{.Syntax}}
{{.Description}}{{if .Default}} (default {{.Default}}){{end}}
{{- end}}
.SH EXAMPLES
{{- range .Examples}}
.TP
.B {{.Command}}
{{.Description}}
{{- end}}
{{- if .Notes}}
.SH NOTES
{{- range .Notes}}
.PP
{{.}}
{{- end}}
{{- end}}
`

// main renders markdown and man pages for each subcommand described in
// <docs>/templates/pkgdiff.yaml. Flags are read from the live command tree so
// the pages cannot drift from --help.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: docsgen DOCS_DIR")
		os.Exit(1)
	}
	docs := os.Args[1]

	data, err := os.ReadFile(filepath.Join(docs, "templates", "pkgdiff.yaml"))
	if err != nil {
		panic(err)
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		panic(err)
	}

	app, err := command.InitApp(context.Background(), []string{"pkgdiff"})
	if err != nil {
		panic(err)
	}

	types := []Outputs{
		{Template: markdownTemplate, Folder: filepath.Join(docs, "commands"), Suffix: ".md"},
		{Template: manTemplate, Folder: filepath.Join(docs, "man", "share", "man1"), Prefix: "pkgdiff-", Suffix: ".1"},
	}

	for _, sub := range config.Subcommands {
		cmd := findCommand(app, sub.ID)
		if cmd == nil {
			panic(fmt.Sprintf("no such command: %s", sub.ID))
		}
		sub.Flags = flagsOf(cmd)

		metadata := TemplateData{
			Subcommand: sub,
			Date:       time.Now().Format("January 2, 2006"),
			Version:    getVersion(),
			IDUpper:    strings.ToUpper(sub.ID),
		}

		for _, t := range types {
			if err := os.MkdirAll(t.Folder, 0755); err != nil {
				panic(err)
			}

			name := filepath.Join(t.Folder, t.Prefix+sub.ID+t.Suffix)
			fmt.Println("Generating", name)

			tmpl := template.Must(template.New(sub.ID).Parse(t.Template))
			file, err := os.Create(name)
			if err != nil {
				panic(err)
			}
			if err := tmpl.Execute(file, metadata); err != nil {
				panic(err)
			}
			file.Close()
		}
	}
}

func findCommand(app *cli.Command, name string) *cli.Command {
	for _, c := range app.Commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// flagsOf describes cmd's flags, sorted by name.
func flagsOf(cmd *cli.Command) []Flag {
	flags := make([]Flag, 0, len(cmd.Flags))
	for _, f := range cmd.Flags {
		names := f.Names()
		syntax := make([]string, 0, len(names))
		for _, n := range names {
			if len(n) == 1 {
				syntax = append(syntax, "-"+n)
			} else {
				syntax = append(syntax, "--"+n)
			}
		}

		flag := Flag{Syntax: strings.Join(syntax, ", ")}
		if df, ok := f.(cli.DocGenerationFlag); ok {
			flag.Description = df.GetUsage()
			if df.TakesValue() {
				flag.Syntax += " VALUE"
				flag.Default = df.GetDefaultText()
			}
			flag.Env = strings.Join(df.GetEnvVars(), ", ")
		}
		flags = append(flags, flag)
	}

	sort.Slice(flags, func(i, j int) bool {
		return flags[i].Syntax < flags[j].Syntax
	})
	return flags
}

// getVersion returns the version string from git tags, stripping the leading
// "v" prefix. Falls back to "dev" if git describe fails.
func getVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--abbrev=0").Output()
	if err != nil {
		return "dev"
	}

	version := strings.TrimSpace(string(out))
	return strings.TrimPrefix(version, "v")
}
