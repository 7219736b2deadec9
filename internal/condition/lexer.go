package condition

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSyntax is wrapped by every SyntaxError.
var ErrInvalidSyntax = errors.New("condition: invalid syntax")

// SyntaxError reports a malformed condition string.
type SyntaxError struct {
	Expr string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s in %q: %s", ErrInvalidSyntax, e.Expr, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrInvalidSyntax }

func syntaxErrorf(expr, format string, args ...any) *SyntaxError {
	return &SyntaxError{Expr: expr, Msg: fmt.Sprintf(format, args...)}
}

type token struct {
	text   string
	quoted bool
}

// splitTopLevel breaks expr on commas that are not inside quotes.
func splitTopLevel(expr string) ([]string, error) {
	var parts []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		switch {
		case ch == '\\' && inQuote && i+1 < len(expr):
			cur.WriteByte(ch)
			i++
			cur.WriteByte(expr[i])
			continue
		case ch == '"':
			inQuote = !inQuote
		case ch == ',' && !inQuote:
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(ch)
	}
	if inQuote {
		return nil, syntaxErrorf(expr, "unterminated quote")
	}
	return append(parts, cur.String()), nil
}

// tokenize splits one conjunct into space separated tokens. Double quoted
// tokens keep their spaces and accept \" and \\ escapes.
func tokenize(expr string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(expr) {
		ch := expr[i]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}
		if ch == '"' {
			var b strings.Builder
			i++
			closed := false
			for i < len(expr) {
				c := expr[i]
				if c == '\\' && i+1 < len(expr) && (expr[i+1] == '"' || expr[i+1] == '\\') {
					b.WriteByte(expr[i+1])
					i += 2
					continue
				}
				if c == '"' {
					closed = true
					i++
					break
				}
				b.WriteByte(c)
				i++
			}
			if !closed {
				return nil, syntaxErrorf(expr, "unterminated quote")
			}
			if i < len(expr) && !isSpace(expr[i]) {
				return nil, syntaxErrorf(expr, "missing space after quoted token %q", b.String())
			}
			toks = append(toks, token{text: b.String(), quoted: true})
			continue
		}
		start := i
		for i < len(expr) && !isSpace(expr[i]) {
			if expr[i] == '"' {
				return nil, syntaxErrorf(expr, "unexpected quote inside %q", expr[start:i+1])
			}
			i++
		}
		toks = append(toks, token{text: expr[start:i]})
	}
	return toks, nil
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// Quote wraps s so that it is read back as a single token.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
