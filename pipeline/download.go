package pipeline

import (
	"bytes"
	"context"
	"regexp"

	"github.com/pkg/errors"

	"github.com/mempirate/docparser/fetch"
	"github.com/mempirate/docparser/log"
	"github.com/mempirate/docparser/parse"
	"github.com/mempirate/docparser/util"
)

var pdfA4Regex = regexp.MustCompile(`.+pdf-a4\.zip$`)

// Download saves the A4 PDF documentation archive linked from the downloads page. It produces no table.
func Download(ctx context.Context, env *Env) (*Table, error) {
	l := log.NewLogger("download")

	if env.Downloads == nil {
		return nil, errors.New("no downloads store configured")
	}

	downloadsURL, err := parse.ResolveURL(env.DocsURL, "download.html")
	if err != nil {
		return nil, err
	}

	doc, err := fetch.Document(ctx, env.Fetcher, downloadsURL)
	if err != nil {
		return nil, err
	}

	table, err := parse.Require(doc.Selection, "table", parse.Equals("class", "docutils"))
	if err != nil {
		return nil, err
	}

	a, err := parse.Require(table, "a", parse.Matches("href", pdfA4Regex))
	if err != nil {
		return nil, err
	}

	href, err := parse.Href(a)
	if err != nil {
		return nil, err
	}

	archiveURL, err := parse.ResolveURL(downloadsURL, href)
	if err != nil {
		return nil, parse.Fatal(err.Error())
	}

	fileName, err := util.FileNameFromURL(archiveURL)
	if err != nil {
		return nil, parse.Fatal(err.Error())
	}

	resp, err := env.Fetcher.Fetch(ctx, archiveURL)
	if err != nil {
		return nil, err
	}

	path, err := env.Downloads.Store(fileName, bytes.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to save archive")
	}

	l.Info().Str("path", path).Str("size", util.FormatBytes(int64(len(resp.Body)))).Msg("Archive downloaded and saved")

	return nil, nil
}
