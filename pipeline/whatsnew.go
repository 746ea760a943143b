package pipeline

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/mempirate/docparser/fetch"
	"github.com/mempirate/docparser/log"
	"github.com/mempirate/docparser/parse"
)

// Article is one "What's New" page.
type Article struct {
	Link    string
	Title   string
	Editors string
}

// WhatsNew lists every "What's New in Python" article with its title and editors.
func WhatsNew(ctx context.Context, env *Env) (*Table, error) {
	l := log.NewLogger("whats-new")

	whatsNewURL, err := parse.ResolveURL(env.DocsURL, "whatsnew/")
	if err != nil {
		return nil, err
	}

	doc, err := fetch.Document(ctx, env.Fetcher, whatsNewURL)
	if err != nil {
		return nil, err
	}

	section, err := parse.Require(doc.Selection, "section", parse.Equals("id", "what-s-new-in-python"))
	if err != nil {
		return nil, err
	}

	wrapper, err := parse.Require(section, "div", parse.Equals("class", "toctree-wrapper"))
	if err != nil {
		return nil, err
	}

	items := parse.FindAll(wrapper, "li", parse.Equals("class", "toctree-l1"))

	table := NewTable("Article link", "Title", "Editor, Author")

	progress := env.progress()
	progress.Start("Following What's New links", items.Length())
	defer progress.Stop()

	for i := range items.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "whats-new run interrupted")
		}

		a, err := parse.Require(items.Eq(i), "a")
		if err != nil {
			return nil, err
		}

		href, err := parse.Href(a)
		if err != nil {
			return nil, err
		}

		link, err := parse.ResolveURL(whatsNewURL, href)
		if err != nil {
			return nil, parse.Fatal(err.Error())
		}

		art, err := article(ctx, env.Fetcher, link)
		progress.Increment()
		if err != nil {
			if fetch.IsFetchError(err) {
				continue
			}
			return nil, err
		}

		table.Append(art.Link, art.Title, art.Editors)
	}

	l.Info().Int("articles", len(table.Rows)).Msg("What's New articles collected")

	return table, nil
}

func article(ctx context.Context, f fetch.Fetcher, link string) (*Article, error) {
	doc, err := fetch.Document(ctx, f, link)
	if err != nil {
		return nil, err
	}

	h1, err := parse.Require(doc.Selection, "h1")
	if err != nil {
		return nil, err
	}

	dl, err := parse.Require(doc.Selection, "dl")
	if err != nil {
		return nil, err
	}

	return &Article{
		Link:    link,
		Title:   h1.Text(),
		Editors: strings.ReplaceAll(dl.Text(), "\n", " "),
	}, nil
}
