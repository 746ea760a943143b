// Package parse locates required structural anchors in parsed HTML. A missing anchor means the
// page layout changed, so it is reported as a fatal *Error rather than guessed around.
package parse

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/mempirate/docparser/log"
)

// Error is a fatal extraction failure. It aborts the whole pipeline run.
type Error struct {
	Tag   string
	Attrs []Attr
	Msg   string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}

	return fmt.Sprintf("tag %s %s not found", e.Tag, formatAttrs(e.Attrs))
}

// Fatal creates and logs an extraction error carrying a custom message.
func Fatal(msg string) *Error {
	err := &Error{Msg: msg}
	report(err)
	return err
}

// IsFatal reports whether err is (or wraps) a fatal extraction error.
func IsFatal(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// Attr filters elements by attribute. Exactly one of Value or Pattern is used.
type Attr struct {
	Name    string
	Value   string
	Pattern *regexp.Regexp
}

func Equals(name, value string) Attr {
	return Attr{Name: name, Value: value}
}

func Matches(name string, pattern *regexp.Regexp) Attr {
	return Attr{Name: name, Pattern: pattern}
}

func (a Attr) String() string {
	if a.Pattern != nil {
		return fmt.Sprintf("'%s': re.compile('%s')", a.Name, a.Pattern.String())
	}
	return fmt.Sprintf("'%s': '%s'", a.Name, a.Value)
}

func (a Attr) match(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != a.Name {
			continue
		}

		// class is a token list, any token may match
		values := []string{attr.Val}
		if a.Name == "class" {
			values = append(values, strings.Fields(attr.Val)...)
		}

		for _, v := range values {
			if a.Pattern != nil && a.Pattern.MatchString(v) {
				return true
			}
			if a.Pattern == nil && v == a.Value {
				return true
			}
		}
	}

	return false
}

func formatAttrs(attrs []Attr) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FindAll returns every descendant of sel named tag that satisfies all attrs, in document order.
func FindAll(sel *goquery.Selection, tag string, attrs ...Attr) *goquery.Selection {
	return sel.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		n := s.Get(0)
		for _, a := range attrs {
			if !a.match(n) {
				return false
			}
		}
		return true
	})
}

// Require returns the first descendant of sel named tag that satisfies all attrs.
// If there is none, the failure is logged and a fatal *Error is returned.
func Require(sel *goquery.Selection, tag string, attrs ...Attr) (*goquery.Selection, error) {
	found := FindAll(sel, tag, attrs...).First()
	if found.Length() == 0 {
		err := &Error{Tag: tag, Attrs: attrs}
		report(err)
		return nil, err
	}

	return found, nil
}

func report(err *Error) {
	l := log.NewLogger("parse")
	l.Error().Str("tag", err.Tag).Str("attrs", formatAttrs(err.Attrs)).Msg(err.Error())
}

// ResolveURL resolves href against base.
func ResolveURL(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, "invalid base URL %s", base)
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", errors.Wrapf(err, "invalid link %s", href)
	}

	return b.ResolveReference(ref).String(), nil
}

// Href returns the href attribute of the first node in sel, or a fatal *Error if it has none.
func Href(sel *goquery.Selection) (string, error) {
	href, ok := sel.Attr("href")
	if !ok {
		return "", Fatal(fmt.Sprintf("tag %s has no href", goquery.NodeName(sel)))
	}
	return href, nil
}
