package bvh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// token is a whitespace-delimited word with the line it was read from.
type token struct {
	text string
	line int
}

// scanner walks a fully tokenized motion file.
type scanner struct {
	path string
	toks []token
	pos  int
}

// newScanner tokenizes r. Braces are split into their own tokens even when written
// against a word.
func newScanner(path string, r io.Reader) (*scanner, error) {
	s := &scanner{path: path}
	br := bufio.NewScanner(r)
	br.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for br.Scan() {
		line++
		text := strings.NewReplacer("{", " { ", "}", " } ").Replace(br.Text())
		for _, f := range strings.Fields(text) {
			s.toks = append(s.toks, token{text: f, line: line})
		}
	}
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s, nil
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.toks)
}

// peek returns the next token without consuming it. At end of input it returns an empty
// token on the last line.
func (s *scanner) peek() token {
	if s.eof() {
		return token{line: s.lastLine()}
	}
	return s.toks[s.pos]
}

func (s *scanner) next() token {
	t := s.peek()
	if !s.eof() {
		s.pos++
	}
	return t
}

func (s *scanner) lastLine() int {
	if len(s.toks) == 0 {
		return 0
	}
	return s.toks[len(s.toks)-1].line
}

// errorf builds a ParseError at token t.
func (s *scanner) errorf(kind error, t token, format string, args ...any) error {
	return &ParseError{Path: s.path, Line: t.line, Token: t.text, Msg: fmt.Sprintf(format, args...), Kind: kind}
}

// expect consumes the next token and fails unless it equals word.
func (s *scanner) expect(word string) (token, error) {
	t := s.next()
	if t.text != word {
		if t.text == "" {
			return t, s.errorf(ErrGrammar, t, "expected %s, reached end of input", word)
		}
		return t, s.errorf(ErrGrammar, t, "expected %s", word)
	}
	return t, nil
}

func (s *scanner) number() (float64, error) {
	t := s.next()
	v, err := strconv.ParseFloat(t.text, 64)
	if err != nil {
		return 0, s.errorf(ErrGrammar, t, "expected a number")
	}
	return v, nil
}

func (s *scanner) integer() (int, error) {
	t := s.next()
	v, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, s.errorf(ErrGrammar, t, "expected an integer")
	}
	return v, nil
}
