// Package output renders mode results to the console or to a CSV file.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"

	"github.com/mempirate/docparser/log"
	"github.com/mempirate/docparser/pipeline"
	"github.com/mempirate/docparser/store"
)

type Format = string

const (
	FormatDefault Format = ""
	FormatPretty  Format = "pretty"
	FormatFile    Format = "file"
)

const DATETIME_FORMAT = "2006-01-02_15-04-05"

// Formats lists the selectable formats. The default format needs no flag.
func Formats() []Format {
	return []Format{FormatPretty, FormatFile}
}

// Renderer writes tables in the selected format.
type Renderer struct {
	out     io.Writer
	results store.LocalStore
	now     func() time.Time
}

// NewRenderer creates a renderer writing console output to out and files to results.
func NewRenderer(out io.Writer, results store.LocalStore) *Renderer {
	return &Renderer{out: out, results: results, now: time.Now}
}

// Render writes t for the given mode.
func (r *Renderer) Render(t *pipeline.Table, mode string, format Format) error {
	switch format {
	case FormatDefault:
		return r.plain(t)
	case FormatPretty:
		return r.pretty(t)
	case FormatFile:
		return r.file(t, mode)
	default:
		return errors.Errorf("unknown output format %q", format)
	}
}

func (r *Renderer) plain(t *pipeline.Table) error {
	for _, record := range t.Records() {
		if _, err := fmt.Fprintln(r.out, strings.Join(record, " ")); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) pretty(t *pipeline.Table) error {
	w := table.NewWriter()
	w.SetOutputMirror(r.out)
	w.SetStyle(table.StyleLight)

	w.AppendHeader(toRow(t.Header))
	for _, row := range t.Rows {
		w.AppendRow(toRow(row))
	}

	configs := make([]table.ColumnConfig, len(t.Header))
	for i := range t.Header {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft}
	}
	w.SetColumnConfigs(configs)

	w.Render()
	return nil
}

func (r *Renderer) file(t *pipeline.Table, mode string) error {
	l := log.NewLogger("output")

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(t.Records()); err != nil {
		return errors.Wrap(err, "failed to encode results")
	}

	name := fmt.Sprintf("%s_%s.csv", mode, r.now().Format(DATETIME_FORMAT))
	path, err := r.results.Store(name, &buf)
	if err != nil {
		return errors.Wrap(err, "failed to save results")
	}

	l.Info().Str("path", path).Msg("Results saved")
	return nil
}

func toRow(fields []string) table.Row {
	row := make(table.Row, len(fields))
	for i, f := range fields {
		row[i] = f
	}
	return row
}
