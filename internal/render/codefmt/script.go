package codefmt

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// continuationStarts lists the characters that, at the start of the next
// line, would merge with the current statement if its semicolon were dropped.
const continuationStarts = "([`+-/"

// formatScript applies a light house style to JavaScript-family code:
// double-quoted strings become single-quoted when that needs no escaping,
// and statement-ending semicolons are removed where automatic semicolon
// insertion keeps the meaning.
func formatScript(lang, code string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Get("javascript")
	}
	if lexer == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, lang)
	}

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	tokens := it.Tokens()

	var b strings.Builder
	for i, tok := range tokens {
		switch {
		case tok.Type == chroma.Error:
			return "", fmt.Errorf("%w: unexpected %q", ErrSyntax, tok.Value)
		case tok.Type == chroma.LiteralStringDouble:
			b.WriteString(singleQuote(tok.Value))
		case tok.Type == chroma.Punctuation && tok.Value == ";" && endsStatement(tokens[i+1:]):
			// dropped
		default:
			b.WriteString(tok.Value)
		}
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n"), nil
}

// singleQuote rewrites a complete "..." literal as '...'. Literals that
// contain a single quote, or that are fragments of a larger token, are
// returned unchanged.
func singleQuote(lit string) string {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		return lit
	}
	inner := lit[1 : len(lit)-1]
	if strings.Contains(inner, "'") {
		return lit
	}
	return "'" + strings.ReplaceAll(inner, `\"`, `"`) + "'"
}

// endsStatement reports whether a semicolon followed by rest is the last
// thing on its line and the next non-blank line cannot continue it.
func endsStatement(rest []chroma.Token) bool {
	sawNewline := false
	for _, tok := range rest {
		for _, r := range tok.Value {
			switch {
			case r == '\n':
				sawNewline = true
			case r == ' ' || r == '\t' || r == '\r':
			case !sawNewline:
				return false
			default:
				return !strings.ContainsRune(continuationStarts, r)
			}
		}
	}
	return true
}
