package parse

import "strings"

// Tokenize splits a log line into whitespace separated tokens. A double
// quoted span belongs to the surrounding token with the quotes removed.
// Backslashes are literal. An unterminated quote runs to the end of the line.
func Tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder
	inToken := false
	inQuote := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			inToken = true
		case !inQuote && isSpace(r):
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// Join rebuilds a line that Tokenize maps back to tokens. Empty tokens and
// tokens containing whitespace are quoted.
func Join(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		if t == "" || strings.IndexFunc(t, isSpace) >= 0 {
			parts[i] = `"` + t + `"`
		} else {
			parts[i] = t
		}
	}
	return strings.Join(parts, " ")
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}
