package sqlscript

import (
	"strings"
	"unicode"
)

var rowKeywords = map[string]bool{
	"SELECT":    true,
	"WITH":      true,
	"VALUES":    true,
	"FROM":      true,
	"TABLE":     true,
	"SHOW":      true,
	"DESCRIBE":  true,
	"DESC":      true,
	"EXPLAIN":   true,
	"PRAGMA":    true,
	"SUMMARIZE": true,
	"PIVOT":     true,
	"UNPIVOT":   true,
	"CALL":      true,
}

// FirstKeyword returns the upper-cased leading keyword of stmt.
func FirstKeyword(stmt string) string {
	s := stripLeading(stmt)
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_'
	})
	if end >= 0 {
		s = s[:end]
	}
	return strings.ToUpper(s)
}

// ReturnsRows reports whether stmt is a query by its leading keyword.
func ReturnsRows(stmt string) bool {
	return rowKeywords[FirstKeyword(stmt)]
}

// HasResult decides from the columns an engine reported for stmt whether
// it produced a result set. Writes that only report a row count (a lone
// Count column) have none unless stmt is itself a query.
func HasResult(stmt string, columns []string) bool {
	if len(columns) == 0 {
		return false
	}
	if ReturnsRows(stmt) {
		return true
	}
	return len(columns) != 1 || !strings.EqualFold(columns[0], "count")
}
