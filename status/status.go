// Package status holds the table of PEP statuses that are consistent with each preview code
// shown in the PEP index.
package status

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Table maps a preview code to the canonical statuses expected for it.
type Table map[string][]string

// Default returns the expectations for the PEP 0 index.
func Default() Table {
	return Table{
		"A": {"Active", "Accepted"},
		"D": {"Deferred"},
		"F": {"Final"},
		"P": {"Provisional"},
		"R": {"Rejected"},
		"S": {"Superseded"},
		"W": {"Withdrawn"},
		"":  {"Draft", "Active"},
	}
}

// Expected returns the statuses expected for code and whether the code has an entry.
func (t Table) Expected(code string) ([]string, bool) {
	expected, ok := t[code]
	return expected, ok
}

// Mismatch reports whether status contradicts the expectation for code. Codes without an
// entry assert nothing and never mismatch.
func (t Table) Mismatch(code, status string) bool {
	expected, ok := t[code]
	if !ok {
		return false
	}
	return !slices.Contains(expected, status)
}

func (t Table) Validate() error {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		if len(t[code]) == 0 {
			return fmt.Errorf("preview code %q has no expected statuses", code)
		}
	}
	return nil
}

// Format renders a status set as a tuple, e.g. ("Final",) or ("Draft", "Active").
func Format(statuses []string) string {
	quoted := make([]string, len(statuses))
	for i, s := range statuses {
		quoted[i] = fmt.Sprintf("%q", s)
	}

	if len(quoted) == 1 {
		return "(" + quoted[0] + ",)"
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}
