package logic

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/frontierdb/frontier/pkg/models/ferror"
)

type termKind int

const (
	termVar termKind = iota
	termInt
	termStr
)

type term struct {
	kind  termKind
	ident string
	num   int64
	str   string
}

type atom struct {
	name  string
	terms []term
}

type rule struct {
	head atom
	body []atom
}

type lexer struct {
	src string
	pos int
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		r := lx.src[lx.pos]
		if r == '%' { // comment to end of line
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
			continue
		}
		if !unicode.IsSpace(rune(r)) {
			return
		}
		lx.pos++
	}
}

func (lx *lexer) eof() bool {
	lx.skipSpace()
	return lx.pos >= len(lx.src)
}

func (lx *lexer) peek() byte {
	lx.skipSpace()
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *lexer) accept(s string) bool {
	lx.skipSpace()
	if strings.HasPrefix(lx.src[lx.pos:], s) {
		lx.pos += len(s)
		return true
	}
	return false
}

func (lx *lexer) expect(s string) error {
	if !lx.accept(s) {
		return ferror.New(ferror.FQ_SYNTAX, "expected %q at offset %d", s, lx.pos)
	}
	return nil
}

func (lx *lexer) ident() (string, bool) {
	lx.skipSpace()
	start := lx.pos
	for lx.pos < len(lx.src) {
		r := rune(lx.src[lx.pos])
		if unicode.IsLetter(r) || r == '_' || (lx.pos > start && unicode.IsDigit(r)) {
			lx.pos++
			continue
		}
		break
	}
	if lx.pos == start {
		return "", false
	}
	return lx.src[start:lx.pos], true
}

func parseProgram(src string) ([]rule, error) {
	lx := &lexer{src: src}
	var rules []rule
	for !lx.eof() {
		r, err := parseRule(lx)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func parseRule(lx *lexer) (rule, error) {
	head, err := parseAtom(lx)
	if err != nil {
		return rule{}, err
	}
	if err := lx.expect(":-"); err != nil {
		return rule{}, err
	}

	var body []atom
	for {
		a, err := parseAtom(lx)
		if err != nil {
			return rule{}, err
		}
		body = append(body, a)
		if !lx.accept(",") {
			break
		}
	}
	lx.accept(".") // trailing period optional

	return rule{head: head, body: body}, nil
}

func parseAtom(lx *lexer) (atom, error) {
	name, ok := lx.ident()
	if !ok {
		return atom{}, ferror.New(ferror.FQ_SYNTAX, "expected relation name at offset %d", lx.pos)
	}
	if err := lx.expect("("); err != nil {
		return atom{}, err
	}

	var terms []term
	for {
		t, err := parseTerm(lx)
		if err != nil {
			return atom{}, err
		}
		terms = append(terms, t)
		if lx.accept(",") {
			continue
		}
		break
	}
	if err := lx.expect(")"); err != nil {
		return atom{}, err
	}
	return atom{name: name, terms: terms}, nil
}

func parseTerm(lx *lexer) (term, error) {
	c := lx.peek()
	switch {
	case c == '"' || c == '\'':
		lx.pos++
		start := lx.pos
		for lx.pos < len(lx.src) && lx.src[lx.pos] != c {
			lx.pos++
		}
		if lx.pos >= len(lx.src) {
			return term{}, ferror.New(ferror.FQ_SYNTAX, "unterminated string at offset %d", start)
		}
		s := lx.src[start:lx.pos]
		lx.pos++
		return term{kind: termStr, str: s}, nil
	case c == '-' || unicode.IsDigit(rune(c)):
		start := lx.pos
		lx.pos++
		for lx.pos < len(lx.src) && unicode.IsDigit(rune(lx.src[lx.pos])) {
			lx.pos++
		}
		n, err := strconv.ParseInt(lx.src[start:lx.pos], 10, 64)
		if err != nil {
			return term{}, ferror.New(ferror.FQ_SYNTAX, "bad number at offset %d", start)
		}
		return term{kind: termInt, num: n}, nil
	default:
		id, ok := lx.ident()
		if !ok {
			return term{}, ferror.New(ferror.FQ_SYNTAX, "expected term at offset %d", lx.pos)
		}
		return term{kind: termVar, ident: id}, nil
	}
}
