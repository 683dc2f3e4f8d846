// Package codefmt reformats code samples before they are highlighted.
// Formatting is best effort: callers keep the original code when Format
// returns an error.
package codefmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/format"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupported is returned for languages without a formatter.
	ErrUnsupported = errors.New("codefmt: unsupported language")
	// ErrSyntax is returned when the source cannot be parsed.
	ErrSyntax = errors.New("codefmt: syntax error")
)

// Format returns code reformatted according to the conventions of lang.
func Format(lang, code string) (string, error) {
	switch strings.ToLower(lang) {
	case "go", "golang":
		return formatGo(code)
	case "json":
		return formatJSON(code)
	case "yaml", "yml":
		return formatYAML(code)
	case "js", "javascript", "jsx", "mjs", "cjs", "ts", "typescript", "tsx":
		return formatScript(strings.ToLower(lang), code)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, lang)
	}
}

func formatGo(code string) (string, error) {
	out, err := format.Source([]byte(code))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

func formatJSON(code string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(code)), "", "  "); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return buf.String(), nil
}

func formatYAML(code string) (string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(code), &doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if doc.Kind == 0 {
		return strings.TrimSpace(code), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
