package repository

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/sakif/pessoas/internal/model"
)

// keySeparator keeps a term from matching across two fields
// ("ff" + "Ru" must not match "Jeff Rust").
const keySeparator = "\x00"

// Fold normalises s for case-insensitive matching. A Caser is stateful,
// so a fresh one is made per call instead of sharing one across goroutines.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// SearchKey is the folded text a search term is matched against.
func SearchKey(p model.Person) string {
	parts := make([]string, 0, 2+len(p.Stack))
	parts = append(parts, p.Name, p.Nick)
	parts = append(parts, p.Stack...)
	return Fold(strings.Join(parts, keySeparator))
}

// Searchable reports whether a folded term can match anything at all.
func Searchable(foldedTerm string) bool {
	return foldedTerm != "" && !strings.Contains(foldedTerm, keySeparator)
}

// MatchKey reports whether the folded term occurs in a SearchKey.
func MatchKey(key, foldedTerm string) bool {
	return Searchable(foldedTerm) && strings.Contains(key, foldedTerm)
}
