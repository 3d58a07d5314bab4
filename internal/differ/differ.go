// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/tidwall/gjson"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/tfctl/pkgdiff/internal/log"
	"github.com/tfctl/pkgdiff/internal/tree"
)

// Preview formats.
const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatBinary  = "binary"
	FormatSkipped = "skipped"
)

// DefaultMaxBytes caps how much of each side is read for a preview.
const DefaultMaxBytes = 1 << 20

// Options tune Diff. Zero values mean no color, three lines of context and
// DefaultMaxBytes.
type Options struct {
	Color    bool
	Context  int
	MaxBytes int64
}

// Preview is the rendered change for one candidate.
type Preview struct {
	Path   string `json:"path" yaml:"path"`
	Format string `json:"format" yaml:"format"`
	Body   string `json:"body" yaml:"body"`
}

var (
	addStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#22a822"))
	delStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d03030"))
	hunkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0088a0"))
)

// Diff previews the change c represents. Modified files are compared DEV to
// TEST; added and DEV-only files are shown against an empty file.
func Diff(c tree.Candidate, opts Options) (Preview, error) {
	if opts.Context <= 0 {
		opts.Context = 3
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}

	p := Preview{Path: c.RelPath}
	fromLabel, toLabel := "/dev/null", "test/"+c.RelPath
	fromPath, toPath := "", c.SourcePath
	switch c.Kind {
	case tree.Modified:
		fromLabel, fromPath = "dev/"+c.RelPath, c.DevPath
	case tree.DevOnly:
		toLabel = "dev/" + c.RelPath
	}

	from, tooBig, err := read(fromPath, opts.MaxBytes)
	if err != nil {
		return p, err
	}
	to, tooBig2, err := read(toPath, opts.MaxBytes)
	if err != nil {
		return p, err
	}
	if tooBig || tooBig2 {
		p.Format = FormatSkipped
		p.Body = fmt.Sprintf("preview skipped: larger than %s", humanize.Bytes(uint64(opts.MaxBytes))) //nolint:gosec
		return p, nil
	}

	if c.Kind == tree.Modified && strings.EqualFold(filepath.Ext(c.RelPath), ".json") {
		if body, ok, err := jsonDiff(from, to, opts.Color); err != nil {
			return p, err
		} else if ok {
			p.Format, p.Body = FormatJSON, body
			return p, nil
		}
	}

	if !isText(from) || !isText(to) {
		p.Format = FormatBinary
		p.Body = fmt.Sprintf("Binary files %s and %s differ", fromLabel, toLabel)
		return p, nil
	}

	body, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(from)),
		B:        difflib.SplitLines(string(to)),
		FromFile: fromLabel,
		ToFile:   toLabel,
		Context:  opts.Context,
	})
	if err != nil {
		return p, fmt.Errorf("unified diff %s: %w", c.RelPath, err)
	}
	if opts.Color {
		body = colorize(body)
	}
	p.Format, p.Body = FormatText, body
	return p, nil
}

// jsonDiff compares two JSON objects structurally. ok is false when either
// side is not an object, in which case the caller falls back to text.
func jsonDiff(from, to []byte, color bool) (string, bool, error) {
	if !gjson.ValidBytes(from) || !gjson.ValidBytes(to) ||
		!gjson.ParseBytes(from).IsObject() || !gjson.ParseBytes(to).IsObject() {
		return "", false, nil
	}

	delta, err := gojsondiff.New().Compare(from, to)
	if err != nil {
		return "", false, fmt.Errorf("failed to compare documents: %w", err)
	}
	if !delta.Modified() {
		return "JSON documents are equivalent; only formatting differs.", true, nil
	}

	var jdoc map[string]interface{}
	if err := json.Unmarshal(from, &jdoc); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	f := formatter.NewAsciiFormatter(jdoc, formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       color,
	})
	out, err := f.Format(delta)
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// read returns the content at path, or nil for an empty path. tooBig is set
// instead of reading files larger than limit.
func read(path string, limit int64) ([]byte, bool, error) {
	if path == "" {
		return nil, false, nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}
	if fi.Size() > limit {
		log.Debugf("preview skipped: path=%s size=%d", path, fi.Size())
		return nil, true, nil
	}
	b, err := os.ReadFile(path)
	return b, false, err
}

// isText reports whether b sniffs as some kind of text. Empty content counts
// as text.
func isText(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	for mt := mimetype.Detect(b); mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}

func colorize(body string) string {
	var buf bytes.Buffer
	for _, line := range strings.SplitAfter(body, "\n") {
		trimmed := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			buf.WriteString(line)
			continue
		case strings.HasPrefix(line, "@@"):
			buf.WriteString(hunkStyle.Render(trimmed))
		case strings.HasPrefix(line, "+"):
			buf.WriteString(addStyle.Render(trimmed))
		case strings.HasPrefix(line, "-"):
			buf.WriteString(delStyle.Render(trimmed))
		default:
			buf.WriteString(line)
			continue
		}
		if strings.HasSuffix(line, "\n") {
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}
