package pattern

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokColon
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits one clause into whitespace separated words and ':' tokens.
func tokenize(clause string) []token {
	var (
		toks []token
		word strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			toks = append(toks, token{kind: tokWord, text: word.String()})
			word.Reset()
		}
	}
	for _, r := range clause {
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == ':':
			flush()
			toks = append(toks, token{kind: tokColon, text: ":"})
		default:
			word.WriteRune(r)
		}
	}
	flush()
	return toks
}

func joinTokens(toks []token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}
