// Package sqlfmt renders generated SQL for display: keywords uppercased,
// major clauses on their own lines. Formatting is purely cosmetic and
// never fails; anything it cannot make sense of comes back with only
// whitespace normalized.
package sqlfmt

import "strings"

var keywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"not": true, "in": true, "is": true, "null": true, "as": true,
	"on": true, "join": true, "inner": true, "left": true, "right": true,
	"full": true, "outer": true, "cross": true, "group": true, "by": true,
	"order": true, "having": true, "limit": true, "offset": true,
	"union": true, "all": true, "distinct": true, "case": true,
	"when": true, "then": true, "else": true, "end": true, "between": true,
	"like": true, "asc": true, "desc": true, "with": true, "over": true,
	"partition": true, "cast": true, "count": true, "sum": true,
	"avg": true, "min": true, "max": true,
}

// clauseStarters begin a new line at indent 0; their continuation words
// (BY in GROUP BY, JOIN after LEFT) stay on the same line.
var clauseStarters = map[string]bool{
	"select": true, "from": true, "where": true, "group": true,
	"order": true, "having": true, "limit": true, "union": true,
	"join": true, "inner": true, "left": true, "right": true,
	"full": true, "cross": true, "with": true,
}

// joinPrefixes are clause starters that glue to a following JOIN.
var joinPrefixes = map[string]bool{
	"inner": true, "left": true, "right": true, "full": true, "cross": true,
}

// Format uppercases keywords and reindents clause by clause. String
// literals pass through untouched.
func Format(query string) string {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return strings.TrimSpace(query)
	}

	var b strings.Builder
	prevJoinPrefix := false

	for i, tok := range tokens {
		lower := strings.ToLower(tok)
		word := tok
		if !isLiteral(tok) && keywords[lower] {
			word = strings.ToUpper(tok)
		}

		startsClause := !isLiteral(tok) && clauseStarters[lower] && !(lower == "join" && prevJoinPrefix)

		switch {
		case i == 0:
			b.WriteString(word)
		case startsClause:
			b.WriteString("\n")
			b.WriteString(word)
		default:
			b.WriteString(" ")
			b.WriteString(word)
		}

		prevJoinPrefix = !isLiteral(tok) && joinPrefixes[lower]
	}

	return b.String()
}

func isLiteral(tok string) bool {
	return strings.HasPrefix(tok, "'") || strings.HasPrefix(tok, "\"")
}

// tokenize splits on whitespace while keeping quoted strings whole.
func tokenize(query string) []string {
	var tokens []string
	var current strings.Builder
	var quote byte

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for i := 0; i < len(query); i++ {
		ch := query[i]

		if quote != 0 {
			current.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
			continue
		}

		switch {
		case ch == '\'' || ch == '"':
			quote = ch
			current.WriteByte(ch)
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			flush()
		default:
			current.WriteByte(ch)
		}
	}
	flush()

	return tokens
}
