// Package roster lists enrolled speaker identities.
package roster

import (
	"context"
	"sort"
	"strings"
)

// Source fetches the enrolled speaker list.
type Source interface {
	Speakers(ctx context.Context) ([]string, error)
}

// Fetch returns the enrolled identities, sorted. A query narrows the list
// to case-insensitive substring matches.
func Fetch(ctx context.Context, src Source, query string) ([]string, error) {
	speakers, err := src.Speakers(ctx)
	if err != nil {
		return nil, err
	}

	filtered := Filter(speakers, query)
	sort.Strings(filtered)
	return filtered, nil
}

// Filter returns the speakers matching query, case-insensitively. An empty
// query matches everything.
func Filter(speakers []string, query string) []string {
	if query == "" {
		return append([]string(nil), speakers...)
	}

	needle := strings.ToLower(query)
	var out []string
	for _, s := range speakers {
		if strings.Contains(strings.ToLower(s), needle) {
			out = append(out, s)
		}
	}
	return out
}
