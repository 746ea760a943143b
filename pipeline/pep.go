package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mempirate/docparser/fetch"
	"github.com/mempirate/docparser/log"
	"github.com/mempirate/docparser/parse"
	"github.com/mempirate/docparser/status"
)

const MISMATCH_FORMAT = "PEP Url: %s\nStatus on page: %s\nExpected statuses: %s\n"

// STATUS_TERM is the definition term that precedes the status on a PEP page.
const STATUS_TERM = "Status:"

// IndexRow is one row of the numerical PEP index.
type IndexRow struct {
	PreviewCode string
	Link        string
}

// PEPRecord is the status declared on a PEP's own page.
type PEPRecord struct {
	Link   string
	Status string
}

type StatusCount struct {
	Status string
	Count  int
}

// Aggregation accumulates declared statuses of one run and the rows whose status contradicts
// their preview code.
type Aggregation struct {
	expected   status.Table
	counts     *orderedmap.OrderedMap[string, int]
	total      int
	mismatches []string
}

func NewAggregation(expected status.Table) *Aggregation {
	return &Aggregation{
		expected: expected,
		counts:   orderedmap.New[string, int](),
	}
}

// Add records a processed row.
func (a *Aggregation) Add(code string, rec PEPRecord) {
	a.total++

	if a.expected.Mismatch(code, rec.Status) {
		expected, _ := a.expected.Expected(code)
		a.mismatches = append(a.mismatches, fmt.Sprintf(MISMATCH_FORMAT, rec.Link, rec.Status, status.Format(expected)))
	}

	n, _ := a.counts.Get(rec.Status)
	a.counts.Set(rec.Status, n+1)
}

// Counts returns the count per status, in the order statuses were first seen.
func (a *Aggregation) Counts() []StatusCount {
	counts := make([]StatusCount, 0, a.counts.Len())
	for pair := a.counts.Oldest(); pair != nil; pair = pair.Next() {
		counts = append(counts, StatusCount{Status: pair.Key, Count: pair.Value})
	}
	return counts
}

func (a *Aggregation) Total() int {
	return a.total
}

func (a *Aggregation) Mismatches() []string {
	return a.mismatches
}

func (a *Aggregation) Table() *Table {
	t := NewTable("Status", "Count")
	for _, c := range a.Counts() {
		t.Append(c.Status, strconv.Itoa(c.Count))
	}
	t.Append("Total", strconv.Itoa(a.total))
	return t
}

// PEP counts the statuses declared on every PEP page linked from the numerical index and reports
// pages whose status contradicts the index preview code.
func PEP(ctx context.Context, env *Env) (*Table, error) {
	l := log.NewLogger("pep")

	doc, err := fetch.Document(ctx, env.Fetcher, env.PEPURL)
	if err != nil {
		return nil, err
	}

	rows, err := indexRows(doc, env.PEPURL)
	if err != nil {
		return nil, err
	}

	agg := NewAggregation(env.Expected)

	progress := env.progress()
	progress.Start("Following PEP index links", len(rows))
	defer progress.Stop()

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "pep run interrupted")
		}

		rec, err := pepRecord(ctx, env.Fetcher, row.Link)
		progress.Increment()
		if err != nil {
			if fetch.IsFetchError(err) {
				continue
			}
			return nil, err
		}

		agg.Add(row.PreviewCode, *rec)
	}

	if mismatches := agg.Mismatches(); len(mismatches) > 0 {
		l.Info().Int("count", len(mismatches)).Msg("Mismatched statuses:\n" + strings.Join(mismatches, "\n"))
	}

	l.Info().Int("total", agg.Total()).Int("rows", len(rows)).Msg("PEP statuses reconciled")

	return agg.Table(), nil
}

// indexRows reads the numerical index table.
func indexRows(doc *goquery.Document, base string) ([]IndexRow, error) {
	section, err := parse.Require(doc.Selection, "section", parse.Equals("id", "numerical-index"))
	if err != nil {
		return nil, err
	}

	table, err := parse.Require(section, "table", parse.Equals("class", "pep-zero-table"))
	if err != nil {
		return nil, err
	}

	tbody, err := parse.Require(table, "tbody")
	if err != nil {
		return nil, err
	}

	trs := parse.FindAll(tbody, "tr")
	rows := make([]IndexRow, 0, trs.Length())

	for i := range trs.Nodes {
		tr := trs.Eq(i)

		td, err := parse.Require(tr, "td")
		if err != nil {
			return nil, err
		}

		a, err := parse.Require(tr, "a")
		if err != nil {
			return nil, err
		}

		href, err := parse.Href(a)
		if err != nil {
			return nil, err
		}

		link, err := parse.ResolveURL(base, href)
		if err != nil {
			return nil, parse.Fatal(err.Error())
		}

		rows = append(rows, IndexRow{PreviewCode: previewCode(td.Text()), Link: link})
	}

	return rows, nil
}

// previewCode drops the leading type glyph of the first index column ("SF" -> "F").
func previewCode(cell string) string {
	runes := []rune(strings.TrimSpace(cell))
	if len(runes) == 0 {
		return ""
	}
	return string(runes[1:])
}

func pepRecord(ctx context.Context, f fetch.Fetcher, link string) (*PEPRecord, error) {
	doc, err := fetch.Document(ctx, f, link)
	if err != nil {
		return nil, err
	}

	dl, err := parse.Require(doc.Selection, "dl")
	if err != nil {
		return nil, err
	}

	dt := parse.FindAll(dl, "dt").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Text() == STATUS_TERM
	}).First()
	if dt.Length() == 0 {
		return nil, parse.Fatal(fmt.Sprintf("tag dt %q not found on %s", STATUS_TERM, link))
	}

	dd := dt.Next()
	if dd.Length() == 0 {
		return nil, parse.Fatal(fmt.Sprintf("no value after %q on %s", STATUS_TERM, link))
	}

	return &PEPRecord{Link: link, Status: strings.TrimSpace(dd.Text())}, nil
}
