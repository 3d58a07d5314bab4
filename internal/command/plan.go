// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/pkgdiff/internal/attrs"
	"github.com/tfctl/pkgdiff/internal/config"
	"github.com/tfctl/pkgdiff/internal/differ"
	"github.com/tfctl/pkgdiff/internal/filters"
	"github.com/tfctl/pkgdiff/internal/log"
	"github.com/tfctl/pkgdiff/internal/meta"
	"github.com/tfctl/pkgdiff/internal/output"
	"github.com/tfctl/pkgdiff/internal/run"
	"github.com/tfctl/pkgdiff/internal/tree"
)

// previewKey is the dataset key carrying a change preview in json and yaml
// output.
const previewKey = "preview"

// planCommandAction is the action handler for the "plan" subcommand. It
// extracts and compares both archives, then renders what a run would pack.
// Progress goes to stderr so the rendered plan can be piped.
func planCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	w := stdout(cmd)
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(output.Row{}), w) {
		return nil
	}

	al, err := BuildAttrs(cmd)
	if err != nil {
		return fmt.Errorf("attrs: %w", err)
	}
	if _, err := filters.BuildFilters(cmd.String("filter")); err != nil {
		return err
	}

	if cmd.String("config") == "" {
		return ErrNoConfig
	}

	progress := stderr(cmd)
	fmt.Fprintf(progress, "Loading configuration from %s...\n", cmd.String("config"))

	rc, err := LoadRunConfig(cmd)
	if err != nil {
		return err
	}

	PurgeCache(cmd)

	opts := output.Options{
		Format:  cmd.String("output"),
		Sort:    cmd.String("sort"),
		Color:   cmd.Bool("color"),
		Titles:  cmd.Bool("titles"),
		Padding: cmd.Int("padding"),
	}
	if !cmd.IsSet("color") {
		if f, ok := w.(*os.File); ok {
			opts.Color = output.ColorEnabled(f)
		}
	}
	patch := cmd.Bool("patch")
	filter := cmd.String("filter")

	runner := &run.Runner{Out: progress, NewStore: storeFactory}
	_, err = runner.Plan(ctx, rc, func(p run.Plan) error {
		return renderPlan(p, al, opts, filter, patch, w)
	})
	return err
}

// renderPlan writes the candidate dataset and, when patch is set, a preview
// of every change. Text output lists previews after the table; json and yaml
// carry them in a preview column.
func renderPlan(p run.Plan, al attrs.AttrList, opts output.Options, filter string, patch bool, w io.Writer) error {
	dataset, err := output.Dataset(p.Candidates)
	if err != nil {
		return fmt.Errorf("plan dataset: %w", err)
	}
	if dataset, err = filters.FilterDataset(dataset, al, filter); err != nil {
		return err
	}

	previews := map[string]differ.Preview{}
	if patch {
		byPath := make(map[string]tree.Candidate, len(p.Candidates))
		for _, c := range p.Candidates {
			byPath[c.RelPath] = c
		}

		dOpts := differ.Options{Color: opts.Color && opts.Format == "text"}
		for _, row := range dataset {
			path := row["path"].(string)
			pv, err := differ.Diff(byPath[path], dOpts)
			if err != nil {
				return fmt.Errorf("preview %s: %w", path, err)
			}
			previews[path] = pv
			if opts.Format != "text" {
				row[previewKey] = pv.Body
			}
		}
		if opts.Format != "text" {
			al = append(al, attrs.Attr{Key: previewKey, OutputKey: previewKey, Include: true})
		}
	}

	if opts.Format == "text" {
		opts.Header, opts.Footer = planSummary(dataset)
	}
	if err := output.SliceDiceSpit(dataset, al, opts, w); err != nil {
		return err
	}

	if patch && opts.Format == "text" {
		// The dataset is sorted in place, so previews follow the table order.
		for _, row := range dataset {
			pv := previews[row["path"].(string)]
			fmt.Fprintf(w, "\n%s (%s)\n%s\n", pv.Path, pv.Format, pv.Body)
		}
	}
	return nil
}

// planSummary returns the header and footer lines of the text plan.
func planSummary(dataset []map[string]interface{}) (string, string) {
	if len(dataset) == 0 {
		return "", "No changes."
	}

	counts := map[string]int{}
	var total int64
	for _, row := range dataset {
		counts[row["kind"].(string)]++
		if size, ok := row["size"].(int64); ok {
			total += size
		}
	}

	header := "Files the diff archive would contain:"
	footer := fmt.Sprintf("%s files (%s): %d modified, %d added, %d dev-only.",
		humanize.Comma(int64(len(dataset))), humanize.Bytes(uint64(total)), //nolint:gosec
		counts["modified"], counts["added"], counts["dev-only"])

	if title, err := config.GetString("plan.header"); err == nil && title != "" {
		header = title
	}
	return header, footer
}

// planCommandBuilder constructs the cli.Command for "plan".
func planCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "list what a run would pack without writing an archive",
		UsageText: "pkgdiff plan --config FILE [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  append(NewRunFlags("plan", meta.DefaultsFile), NewPlanFlags("plan", meta.DefaultsFile)...),
		Action: planCommandAction,
	}
}
