package syntax

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by errors.Is for every lexical or syntactic failure.
var (
	ErrLexical = errors.New("cmisql: lexical error")
	ErrSyntax  = errors.New("cmisql: syntax error")
)

// LexError reports input that matches no token rule. Lexing never resumes
// after a LexError.
type LexError struct {
	Pos Pos
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %s %s", e.Pos, e.Msg)
}

// Is reports whether target is ErrLexical.
func (e *LexError) Is(target error) bool {
	return target == ErrLexical
}

// NewLexError formats a LexError at pos.
func NewLexError(pos Pos, format string, args ...any) *LexError {
	return &LexError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// Mismatched means the current token is not the one a rule required.
	Mismatched ErrorKind = iota
	// Missing means a required token was absent before the current token.
	Missing
	// Extraneous means an unexpected token precedes the expected one.
	Extraneous
	// NoViableAlternative means no alternative of a rule starts with the current token.
	NoViableAlternative
	// EarlyExit means a (...)+ loop matched nothing.
	EarlyExit
	// FailedPredicate means the input is only valid in a more permissive mode.
	FailedPredicate
	// Invalid means the token matched but its content is malformed.
	Invalid
)

// ParseError is a fatal syntax error. It carries the offending token, the
// expected token names and the rule invocation stack active at the failure.
type ParseError struct {
	Kind       ErrorKind
	Pos        Pos
	Token      string
	Expected   []string
	Rules      []string
	Paraphrase string
	Detail     string
	Err        error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if len(e.Rules) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(e.Rules, ", "))
		b.WriteString("] ")
	}
	fmt.Fprintf(&b, "line %s ", e.Pos)
	b.WriteString(e.message())
	if e.Paraphrase != "" {
		b.WriteString(" ")
		b.WriteString(e.Paraphrase)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) message() string {
	expecting := strings.Join(e.Expected, ", ")
	switch e.Kind {
	case Missing:
		return fmt.Sprintf("missing %s at %s", expecting, e.Token)
	case Extraneous:
		return fmt.Sprintf("extraneous input %s expecting %s", e.Token, expecting)
	case NoViableAlternative:
		return fmt.Sprintf("no viable alternative at input %s", e.Token)
	case EarlyExit:
		return fmt.Sprintf("required (...)+ loop did not match anything at input %s", e.Token)
	case FailedPredicate:
		return fmt.Sprintf("rule %s failed predicate: %s", e.rule(), e.Detail)
	case Invalid:
		return fmt.Sprintf("invalid input %s: %s", e.Token, e.Detail)
	default:
		if len(e.Expected) > 1 {
			return fmt.Sprintf("mismatched input %s expecting set {%s}", e.Token, expecting)
		}
		return fmt.Sprintf("mismatched input %s expecting %s", e.Token, expecting)
	}
}

func (e *ParseError) rule() string {
	if len(e.Rules) == 0 {
		return "?"
	}
	return e.Rules[len(e.Rules)-1]
}

// Is reports whether target is ErrSyntax.
func (e *ParseError) Is(target error) bool {
	return target == ErrSyntax
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DisplayToken quotes token text for error messages.
func DisplayToken(text string, eof bool) string {
	if eof {
		return "'<EOF>'"
	}
	return "'" + text + "'"
}
