package index

import "strings"

// ftsQuery turns free text into an FTS5 expression: every whitespace
// separated term becomes a quoted string, so punctuation such as "fan-in"
// or "c++" is matched as text instead of parsed as query syntax. Terms are
// implicitly ANDed. Returns "" when query has no terms.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps query for a substring LIKE match with '\' as the escape
// character.
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(query)) + "%"
}
