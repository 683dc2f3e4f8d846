package highlight

import (
	"html"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

const (
	lineClass       = "token-line"
	highlightedLine = "token-line highlight-line"
)

// Trim strips whitespace around a block, including the indentation of its
// first line. Line numbers in highlight specs count from the first line of
// the trimmed text.
func Trim(code string) string {
	return strings.TrimSpace(code)
}

// Write tokenizes code with the lexer registered for lang and writes one
// <div> per physical line inside a <code> element. Lines contained in
// marked receive the highlight class. Unknown languages use the fallback
// lexer; lexing errors degrade to plain text lines.
func Write(w io.Writer, lang, code string, marked LineSet) error {
	code = Trim(code)
	lines := tokenize(lang, code)

	if _, err := io.WriteString(w, `<code class="language-`+html.EscapeString(lang)+`">`); err != nil {
		return err
	}
	for i, line := range lines {
		class := lineClass
		if marked.Has(i + 1) {
			class = highlightedLine
		}
		var b strings.Builder
		b.WriteString(`<div class="` + class + `">`)
		empty := true
		for _, tok := range line {
			if tok.Value == "" {
				continue
			}
			empty = false
			writeToken(&b, tok)
		}
		if empty {
			b.WriteByte('\n')
		}
		b.WriteString("</div>")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</code>")
	return err
}

func writeToken(b *strings.Builder, tok chroma.Token) {
	class := tokenClass(tok.Type)
	if class == "" {
		b.WriteString(html.EscapeString(tok.Value))
		return
	}
	b.WriteString(`<span class="` + class + `">`)
	b.WriteString(html.EscapeString(tok.Value))
	b.WriteString("</span>")
}

// tokenClass maps a token type to chroma's short CSS class, walking up to the
// sub-category and category when the exact type has no class.
func tokenClass(t chroma.TokenType) string {
	if t == chroma.Text || t == chroma.TextWhitespace {
		return ""
	}
	for _, candidate := range []chroma.TokenType{t, t.SubCategory(), t.Category()} {
		if class, ok := chroma.StandardTypes[candidate]; ok && class != "" {
			return class
		}
	}
	return ""
}

// tokenize lexes code and splits the stream so that there is exactly one
// token slice per line of code.
func tokenize(lang, code string) [][]chroma.Token {
	want := strings.Count(code, "\n") + 1

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	var tokens []chroma.Token
	if it, err := lexer.Tokenise(nil, code); err == nil {
		tokens = it.Tokens()
	} else {
		tokens = []chroma.Token{{Type: chroma.Text, Value: code}}
	}

	lines := make([][]chroma.Token, 0, want)
	var current []chroma.Token
	for _, tok := range tokens {
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, current)
				current = nil
			}
			if part != "" {
				current = append(current, chroma.Token{Type: tok.Type, Value: part})
			}
		}
	}
	lines = append(lines, current)

	for len(lines) < want {
		lines = append(lines, nil)
	}
	return lines[:want]
}
