// Package parser reads S-expressions and builds them directly as heap
// objects under the collector's rooting discipline.
//
// The grammar is that of the interpreted language:
//
//	EXPR ::= ATOM | (EXPR EXPR)
//
// so a list form is always a pair of exactly two expressions.
package parser

import (
	"fmt"
	"io"

	"gcl_go/pkg/gc"
)

// Parser parses S-expressions into heap objects.
type Parser struct {
	heap *gc.Heap
	tok  *Tokenizer
}

// New creates a parser over the given input, allocating into heap.
func New(heap *gc.Heap, input string) *Parser {
	return &Parser{heap: heap, tok: NewTokenizer(input)}
}

// Parse parses a single expression and returns it as a heap object. It
// returns io.EOF when the input is exhausted.
//
// The parse loop performs no native recursion: nested pairs are built
// bottom-up under a chain of partially filled cons cells threaded through
// the rooted parent cell, so the expression under construction survives
// any collection triggered by its own allocations.
func (p *Parser) Parse() (*gc.Object, error) {
	h := p.heap

	parent := h.Nil()
	expr := h.Nil()
	h.PushRoot(&parent)
	h.PushRoot(&expr)
	defer func() {
		h.PopRoot()
		h.PopRoot()
	}()

	for {
		switch p.tok.Next() {
		case TokEOF:
			if parent == h.Nil() {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("syntax error: unexpected end of input")
		case TokLParen:
			h.SetRoot(&parent, h.NewCons(h.Nil(), parent))
		case TokSymbol:
			h.SetRoot(&expr, h.NewAtomString(p.tok.Text()))
			for {
				if parent == h.Nil() {
					return expr, nil
				}
				head, tail := h.DestructCons(parent)
				if head == h.Nil() {
					h.SetHead(parent, expr)
					break
				}
				h.SetTail(parent, expr)
				h.SetRoot(&expr, parent)
				h.SetRoot(&parent, tail)
				if p.tok.Next() != TokRParen {
					return nil, fmt.Errorf("syntax error: pair: missing ')'")
				}
			}
		default:
			return nil, fmt.Errorf("syntax error: expected symbol or '('")
		}
	}
}
