package cmis

import (
	"log/slog"

	"github.com/nlstn/go-cmisql/internal/syntax"
)

// Mode selects the accepted dialect.
type Mode int

const (
	// ModeStrict accepts the CMIS 1.0 grammar only.
	ModeStrict Mode = iota
	// ModeAlfresco additionally accepts quoted identifiers, :parameters and
	// functions other than SCORE().
	ModeAlfresco
)

func (m Mode) String() string {
	if m == ModeAlfresco {
		return "alfresco"
	}
	return "strict"
}

type parseConfig struct {
	mode     Mode
	parseFTS bool
	logger   *slog.Logger
}

// ParseOption configures Parse and NewParser.
type ParseOption func(*parseConfig)

// WithMode sets the dialect. The default is ModeStrict.
func WithMode(mode Mode) ParseOption {
	return func(c *parseConfig) {
		c.mode = mode
	}
}

// WithFTSParsing controls whether CONTAINS() arguments are parsed with the
// FTS grammar. It is enabled by default.
func WithFTSParsing(enabled bool) ParseOption {
	return func(c *parseConfig) {
		c.parseFTS = enabled
	}
}

// WithLogger sets the logger used for debug output. Nil selects slog.Default().
func WithLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

func newParseConfig(opts []ParseOption) parseConfig {
	cfg := parseConfig{mode: ModeStrict, parseFTS: true, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Parse tokenizes, parses and validates a CMIS query.
func Parse(input string, opts ...ParseOption) (*Query, error) {
	tokens, err := NewLexer(input).TokenizeAll()
	if err != nil {
		return nil, err
	}
	p := NewParser(tokens, opts...)
	q, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if err := Validate(q, p.cfg.mode); err != nil {
		return nil, err
	}
	return q, nil
}

// Parser is a recursive-descent parser over visible CMIS tokens. It does
// not recover from errors: the first failure ends the parse.
type Parser struct {
	tokens      []Token
	current     int
	rules       syntax.RuleStack
	paraphrases []string
	cfg         parseConfig
}

// NewParser creates a parser over a lexer's token stream. Hidden tokens
// are dropped.
func NewParser(tokens []Token, opts ...ParseOption) *Parser {
	visible := VisibleTokens(tokens)
	if len(visible) == 0 || visible[len(visible)-1].Type != TokenEOF {
		var pos syntax.Pos
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			pos = last.Pos
		}
		visible = append(visible, Token{Type: TokenEOF, Pos: pos})
	}
	return &Parser{tokens: visible, cfg: newParseConfig(opts)}
}

// Parse parses a complete query statement.
func (p *Parser) Parse() (*Query, error) {
	q, err := p.parseQuery()
	if err != nil {
		p.cfg.logger.Debug("cmis parse failed", "error", err)
		return nil, err
	}
	return q, nil
}

func (p *Parser) strict() bool {
	return p.cfg.mode == ModeStrict
}

func (p *Parser) enter(rule string) {
	p.rules.Enter(rule)
}

func (p *Parser) leave() {
	p.rules.Leave()
}

func (p *Parser) pushParaphrase(s string) {
	p.paraphrases = append(p.paraphrases, s)
}

func (p *Parser) popParaphrase() {
	p.paraphrases = p.paraphrases[:len(p.paraphrases)-1]
}

func (p *Parser) currentToken() Token {
	return p.peek(0)
}

// peek returns the token n positions ahead of the cursor.
func (p *Parser) peek(n int) Token {
	i := p.current + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) at(types ...TokenType) bool {
	cur := p.currentToken().Type
	for _, t := range types {
		if cur == t {
			return true
		}
	}
	return false
}

func (p *Parser) advance() Token {
	tok := p.currentToken()
	if p.current < len(p.tokens)-1 {
		p.current++
	}
	return tok
}

// expect consumes a token of type t or fails. The failure kind follows the
// usual single-token classification: a stray token before the expected one
// is extraneous, a missing token at end of input is missing.
func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.currentToken()
	if tok.Type == t {
		return p.advance(), nil
	}
	switch {
	case tok.Type != TokenEOF && p.peek(1).Type == t:
		return Token{}, p.fail(syntax.Extraneous, tok, t)
	case tok.Type == TokenEOF:
		return Token{}, p.fail(syntax.Missing, tok, t)
	default:
		return Token{}, p.fail(syntax.Mismatched, tok, t)
	}
}

func (p *Parser) fail(kind syntax.ErrorKind, tok Token, expected ...TokenType) *syntax.ParseError {
	names := make([]string, len(expected))
	for i, t := range expected {
		names[i] = t.String()
	}
	pe := &syntax.ParseError{
		Kind:     kind,
		Pos:      tok.Pos,
		Token:    tok.display(),
		Expected: names,
		Rules:    p.rules.Snapshot(),
	}
	if n := len(p.paraphrases); n > 0 {
		pe.Paraphrase = p.paraphrases[n-1]
	}
	return pe
}

func (p *Parser) failDetail(kind syntax.ErrorKind, tok Token, detail string, err error) *syntax.ParseError {
	pe := p.fail(kind, tok)
	pe.Detail = detail
	pe.Err = err
	return pe
}

func (p *Parser) parseQuery() (*Query, error) {
	p.enter("query")
	defer p.leave()

	start, err := p.expect(TokenSelect)
	if err != nil {
		return nil, err
	}
	q := &Query{Position: start.Pos}

	if q.Select, err = p.parseSelectList(); err != nil {
		return nil, err
	}
	if q.From, err = p.parseFromClause(); err != nil {
		return nil, err
	}
	if p.at(TokenWhere) {
		if q.Where, err = p.parseWhereClause(); err != nil {
			return nil, err
		}
	}
	if p.at(TokenOrder) {
		if q.OrderBy, err = p.parseOrderByClause(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenEOF); err != nil {
		return nil, err
	}
	return q, nil
}
