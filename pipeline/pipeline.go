// Package pipeline implements the parser modes. Each mode fetches one index page, fans out to
// the pages it links to (at most one level deep) and returns a table for rendering.
//
// Failures come in two kinds. A page that cannot be fetched is an error wrapping fetch.ErrFetch:
// for a linked page the row is skipped, for the index page the mode returns it and produces no
// result. A missing structural anchor is a *parse.Error and always aborts the run.
package pipeline

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/mempirate/docparser/fetch"
	"github.com/mempirate/docparser/status"
	"github.com/mempirate/docparser/store"
)

const (
	MODE_PEP             = "pep"
	MODE_WHATS_NEW       = "whats-new"
	MODE_LATEST_VERSIONS = "latest-versions"
	MODE_DOWNLOAD        = "download"
)

// Table is a tabular result. Every row has as many fields as the header.
type Table struct {
	Header []string
	Rows   [][]string
}

func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

func (t *Table) Append(row ...string) {
	t.Rows = append(t.Rows, row)
}

// Records returns the header followed by the rows.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header)
	return append(records, t.Rows...)
}

// Progress observes per-row progress of a mode.
type Progress interface {
	Start(title string, total int)
	Increment()
	Stop()
}

type NopProgress struct{}

func (NopProgress) Start(string, int) {}
func (NopProgress) Increment()        {}
func (NopProgress) Stop()             {}

// Env holds everything a mode depends on.
type Env struct {
	Fetcher fetch.Fetcher
	// Downloads receives downloaded archives.
	Downloads store.LocalStore
	Expected  status.Table

	PEPURL  string
	DocsURL string

	Progress Progress
}

func (e *Env) progress() Progress {
	if e.Progress == nil {
		return NopProgress{}
	}
	return e.Progress
}

// Func runs one mode. A nil table with a nil error means the mode produces no table.
type Func func(ctx context.Context, env *Env) (*Table, error)

var modes = map[string]Func{
	MODE_PEP:             PEP,
	MODE_WHATS_NEW:       WhatsNew,
	MODE_LATEST_VERSIONS: LatestVersions,
	MODE_DOWNLOAD:        Download,
}

// Modes returns the registered mode names, sorted.
func Modes() []string {
	names := make([]string, 0, len(modes))
	for name := range modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run dispatches to the named mode.
func Run(ctx context.Context, mode string, env *Env) (*Table, error) {
	f, ok := modes[mode]
	if !ok {
		return nil, errors.Errorf("unknown mode %q", mode)
	}

	return f(ctx, env)
}
