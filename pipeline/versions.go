package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mempirate/docparser/fetch"
	"github.com/mempirate/docparser/log"
	"github.com/mempirate/docparser/parse"
)

const ALL_VERSIONS = "All versions"

var versionRegex = regexp.MustCompile(`Python (?P<version>\d\.\d+) \((?P<status>.*)\)`)

// Release is one documentation version listed in the sidebar.
type Release struct {
	Link    string
	Version string
	Status  string
}

// LatestVersions lists the documentation versions from the sidebar of the docs start page.
func LatestVersions(ctx context.Context, env *Env) (*Table, error) {
	l := log.NewLogger("latest-versions")

	doc, err := fetch.Document(ctx, env.Fetcher, env.DocsURL)
	if err != nil {
		return nil, err
	}

	sidebar, err := parse.Require(doc.Selection, "div", parse.Equals("class", "sphinxsidebarwrapper"))
	if err != nil {
		return nil, err
	}

	versions := parse.FindAll(sidebar, "ul").FilterFunction(func(_ int, ul *goquery.Selection) bool {
		return strings.Contains(ul.Text(), ALL_VERSIONS)
	}).First()
	if versions.Length() == 0 {
		return nil, parse.Fatal(`text "` + ALL_VERSIONS + `" not found on the page`)
	}

	table := NewTable("Documentation link", "Version", "Status")

	anchors := parse.FindAll(versions, "a")
	for i := range anchors.Nodes {
		a := anchors.Eq(i)

		href, err := parse.Href(a)
		if err != nil {
			return nil, err
		}

		link, err := parse.ResolveURL(env.DocsURL, href)
		if err != nil {
			return nil, parse.Fatal(err.Error())
		}

		r := release(link, a.Text())
		table.Append(r.Link, r.Version, r.Status)
	}

	l.Info().Int("versions", len(table.Rows)).Msg("Documentation versions collected")

	return table, nil
}

// release parses anchor text like "Python 3.12 (stable)". Text that doesn't match is kept
// whole as the version, with an empty status.
func release(link, text string) Release {
	m := versionRegex.FindStringSubmatch(text)
	if m == nil {
		return Release{Link: link, Version: text}
	}

	return Release{
		Link:    link,
		Version: m[versionRegex.SubexpIndex("version")],
		Status:  m[versionRegex.SubexpIndex("status")],
	}
}
