package script

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/frontierdb/frontier/pkg/rel"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	num  int64
	off  int
}

const (
	kwScan    = "scan"
	kwFilter  = "filter"
	kwJoin    = "join"
	kwProject = "project"
	kwStore   = "store"
	kwSelect  = "select"
	kwFrom    = "from"
	kwWhere   = "where"
)

// Engine is the grammar engine for the scripting/SQL family. Building
// one is expensive (keyword and operator action tables), so a single
// instance is shared process-wide — and because the lexer scratch state
// lives on the struct between calls, two simultaneous parses corrupt
// each other. All access goes through SharedEngine; never call Parse on
// a shared Engine directly.
type Engine struct {
	keywords map[string]struct{}
	puncts   []string

	// scratch state, rewritten by every Parse call
	src string
	pos int
	tok token
}

func NewEngine() *Engine {
	e := &Engine{
		keywords: make(map[string]struct{}),
		puncts:   []string{"=", "(", ")", ",", ";", "$", "*", "."},
	}
	for _, kw := range []string{kwScan, kwFilter, kwJoin, kwProject, kwStore, kwSelect, kwFrom, kwWhere} {
		e.keywords[kw] = struct{}{}
	}
	return e
}

var _ Grammar = &Engine{}

// Parse tokenizes and parses one program into its statement sequence.
// Not reentrant.
func (e *Engine) Parse(query string) ([]Statement, error) {
	e.src = query
	e.pos = 0
	if err := e.advance(); err != nil {
		return nil, err
	}

	if e.tok.kind == tokIdent && strings.EqualFold(e.tok.text, kwSelect) {
		return e.parseSQL()
	}
	return e.parseScript()
}

func (e *Engine) parseScript() ([]Statement, error) {
	var stmts []Statement
	for e.tok.kind != tokEOF {
		st, err := e.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	if len(stmts) == 0 {
		return nil, ferror.New(ferror.FQ_SYNTAX, "empty program")
	}
	return stmts, nil
}

func (e *Engine) parseStatement() (Statement, error) {
	if e.tok.kind != tokIdent {
		return nil, e.syntaxf("expected statement")
	}

	if e.isKeyword(kwStore) {
		if err := e.advance(); err != nil {
			return nil, err
		}
		if err := e.expectPunct("("); err != nil {
			return nil, err
		}
		binding, err := e.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := e.expectPunct(","); err != nil {
			return nil, err
		}
		relname, err := e.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := e.expectPunct(")"); err != nil {
			return nil, err
		}
		if err := e.expectPunct(";"); err != nil {
			return nil, err
		}
		return &Store{Binding: binding, Relation: relname}, nil
	}

	target := e.tok.text
	if err := e.advance(); err != nil {
		return nil, err
	}
	if err := e.expectPunct("="); err != nil {
		return nil, err
	}
	src, err := e.parseSource()
	if err != nil {
		return nil, err
	}
	if err := e.expectPunct(";"); err != nil {
		return nil, err
	}
	return &Assign{Target: target, Source: src}, nil
}

func (e *Engine) parseSource() (SourceExpr, error) {
	if e.tok.kind != tokIdent {
		return nil, e.syntaxf("expected source expression")
	}
	op := strings.ToLower(e.tok.text)
	if err := e.advance(); err != nil {
		return nil, err
	}
	if err := e.expectPunct("("); err != nil {
		return nil, err
	}

	switch op {
	case kwScan:
		relname, err := e.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := e.expectPunct(")"); err != nil {
			return nil, err
		}
		return &ScanExpr{Relation: relname}, nil

	case kwFilter:
		input, err := e.expectIdent()
		if err != nil {
			return nil, err
		}
		var preds []rel.Comparison
		for e.acceptPunct(",") {
			cmp, err := e.parseComparison()
			if err != nil {
				return nil, err
			}
			preds = append(preds, cmp)
		}
		if len(preds) == 0 {
			return nil, e.syntaxf("filter needs at least one predicate")
		}
		if err := e.expectPunct(")"); err != nil {
			return nil, err
		}
		return &FilterExpr{Input: input, Preds: preds}, nil

	case kwJoin:
		left, err := e.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := e.expectPunct(","); err != nil {
			return nil, err
		}
		right, err := e.expectIdent()
		if err != nil {
			return nil, err
		}
		var conds []rel.JoinCond
		for e.acceptPunct(",") {
			lc, err := e.parseColRef()
			if err != nil {
				return nil, err
			}
			if err := e.expectPunct("="); err != nil {
				return nil, err
			}
			rc, err := e.parseColRef()
			if err != nil {
				return nil, err
			}
			conds = append(conds, rel.JoinCond{LeftCol: lc, RightCol: rc})
		}
		if len(conds) == 0 {
			return nil, e.syntaxf("join needs at least one condition")
		}
		if err := e.expectPunct(")"); err != nil {
			return nil, err
		}
		return &JoinExpr{Left: left, Right: right, Conds: conds}, nil

	case kwProject:
		input, err := e.expectIdent()
		if err != nil {
			return nil, err
		}
		var cols []int
		for e.acceptPunct(",") {
			c, err := e.parseColRef()
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		}
		if len(cols) == 0 {
			return nil, e.syntaxf("project needs at least one column")
		}
		if err := e.expectPunct(")"); err != nil {
			return nil, err
		}
		return &ProjectExpr{Input: input, Cols: cols}, nil

	default:
		return nil, e.syntaxf("unknown source expression %q", op)
	}
}

func (e *Engine) parseComparison() (rel.Comparison, error) {
	lc, err := e.parseColRef()
	if err != nil {
		return rel.Comparison{}, err
	}
	if err := e.expectPunct("="); err != nil {
		return rel.Comparison{}, err
	}

	var right rel.Operand
	switch e.tok.kind {
	case tokNumber:
		right = rel.IntConst(e.tok.num)
		err = e.advance()
	case tokString:
		right = rel.StrConst(e.tok.text)
		err = e.advance()
	case tokPunct:
		var rc int
		rc, err = e.parseColRef()
		right = rel.ColRef(rc)
	default:
		return rel.Comparison{}, e.syntaxf("expected comparison operand")
	}
	if err != nil {
		return rel.Comparison{}, err
	}
	return rel.Comparison{Left: rel.ColRef(lc), Right: right}, nil
}

// parseColRef parses a positional column reference "$n".
func (e *Engine) parseColRef() (int, error) {
	if err := e.expectPunct("$"); err != nil {
		return 0, err
	}
	if e.tok.kind != tokNumber {
		return 0, e.syntaxf("expected column number after $")
	}
	n := int(e.tok.num)
	if err := e.advance(); err != nil {
		return 0, err
	}
	return n, nil
}

// parseSQL handles the SELECT form, desugaring it into an assignment to
// the implicit "result" binding plus a store.
func (e *Engine) parseSQL() ([]Statement, error) {
	if err := e.advance(); err != nil { // consume SELECT
		return nil, err
	}

	sel := &SQLSelectExpr{}
	if e.acceptPunct("*") {
		sel.Star = true
	} else {
		for {
			col, err := e.expectIdent()
			if err != nil {
				return nil, err
			}
			sel.Columns = append(sel.Columns, col)
			if !e.acceptPunct(",") {
				break
			}
		}
	}

	if !e.isKeyword(kwFrom) {
		return nil, e.syntaxf("expected FROM")
	}
	if err := e.advance(); err != nil {
		return nil, err
	}
	relname, err := e.expectIdent()
	if err != nil {
		return nil, err
	}
	sel.Relation = relname

	if e.isKeyword(kwWhere) {
		if err := e.advance(); err != nil {
			return nil, err
		}
		col, err := e.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := e.expectPunct("="); err != nil {
			return nil, err
		}
		var val rel.Operand
		switch e.tok.kind {
		case tokNumber:
			val = rel.IntConst(e.tok.num)
		case tokString:
			val = rel.StrConst(e.tok.text)
		default:
			return nil, e.syntaxf("expected constant in WHERE")
		}
		if err := e.advance(); err != nil {
			return nil, err
		}
		sel.Where = &SQLWhere{Column: col, Value: val}
	}

	e.acceptPunct(";")
	if e.tok.kind != tokEOF {
		return nil, e.syntaxf("unexpected input after SELECT statement")
	}

	return []Statement{
		&Assign{Target: "result", Source: sel},
		&Store{Binding: "result", Relation: "result"},
	}, nil
}

func (e *Engine) isKeyword(kw string) bool {
	if e.tok.kind != tokIdent {
		return false
	}
	lower := strings.ToLower(e.tok.text)
	if _, ok := e.keywords[lower]; !ok {
		return false
	}
	return lower == kw
}

func (e *Engine) expectIdent() (string, error) {
	if e.tok.kind != tokIdent {
		return "", e.syntaxf("expected identifier")
	}
	text := e.tok.text
	if err := e.advance(); err != nil {
		return "", err
	}
	return text, nil
}

func (e *Engine) acceptPunct(p string) bool {
	if e.tok.kind == tokPunct && e.tok.text == p {
		if err := e.advance(); err != nil {
			return false
		}
		return true
	}
	return false
}

func (e *Engine) expectPunct(p string) error {
	if e.tok.kind != tokPunct || e.tok.text != p {
		return e.syntaxf("expected %q", p)
	}
	return e.advance()
}

func (e *Engine) syntaxf(format string, a ...any) error {
	args := append(a, e.tok.off)
	return ferror.New(ferror.FQ_SYNTAX, format+" at offset %d", args...)
}

// advance scans the next token into e.tok.
func (e *Engine) advance() error {
	for e.pos < len(e.src) {
		r := e.src[e.pos]
		if r == '-' && e.pos+1 < len(e.src) && e.src[e.pos+1] == '-' {
			for e.pos < len(e.src) && e.src[e.pos] != '\n' {
				e.pos++
			}
			continue
		}
		if !unicode.IsSpace(rune(r)) {
			break
		}
		e.pos++
	}

	if e.pos >= len(e.src) {
		e.tok = token{kind: tokEOF, off: e.pos}
		return nil
	}

	start := e.pos
	c := e.src[e.pos]
	switch {
	case unicode.IsLetter(rune(c)) || c == '_':
		for e.pos < len(e.src) {
			r := rune(e.src[e.pos])
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				e.pos++
				continue
			}
			break
		}
		e.tok = token{kind: tokIdent, text: e.src[start:e.pos], off: start}
		return nil

	case unicode.IsDigit(rune(c)):
		for e.pos < len(e.src) && unicode.IsDigit(rune(e.src[e.pos])) {
			e.pos++
		}
		n, err := strconv.ParseInt(e.src[start:e.pos], 10, 64)
		if err != nil {
			return ferror.New(ferror.FQ_SYNTAX, "bad number at offset %d", start)
		}
		e.tok = token{kind: tokNumber, num: n, off: start}
		return nil

	case c == '\'':
		e.pos++
		for e.pos < len(e.src) && e.src[e.pos] != '\'' {
			e.pos++
		}
		if e.pos >= len(e.src) {
			return ferror.New(ferror.FQ_SYNTAX, "unterminated string at offset %d", start)
		}
		e.tok = token{kind: tokString, text: e.src[start+1 : e.pos], off: start}
		e.pos++
		return nil

	default:
		for _, p := range e.puncts {
			if strings.HasPrefix(e.src[e.pos:], p) {
				e.pos += len(p)
				e.tok = token{kind: tokPunct, text: p, off: start}
				return nil
			}
		}
		return ferror.New(ferror.FQ_SYNTAX, "unexpected character %q at offset %d", string(c), start)
	}
}
