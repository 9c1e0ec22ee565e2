package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizerSequence(t *testing.T) {
	tok := NewTokenizer("(print_atom (quote Hello_world!))")

	kinds := []TokenKind{}
	texts := []string{}
	for {
		k := tok.Next()
		if k == TokEOF {
			break
		}
		kinds = append(kinds, k)
		texts = append(texts, tok.Text())
	}

	assert.Equal(t, []TokenKind{
		TokLParen, TokSymbol, TokLParen, TokSymbol, TokSymbol, TokRParen, TokRParen,
	}, kinds)
	assert.Equal(t, []string{"(", "print_atom", "(", "quote", "Hello_world!", ")", ")"}, texts)
}

func TestTokenizerSkipsCommentsAndWhitespace(t *testing.T) {
	tok := NewTokenizer("; a comment\n  sym ; trailing\n")
	assert.Equal(t, TokSymbol, tok.Next())
	assert.Equal(t, "sym", tok.Text())
	assert.Equal(t, TokEOF, tok.Next())
}

func TestTokenizerEmptyInput(t *testing.T) {
	tok := NewTokenizer("   \n\t")
	assert.Equal(t, TokEOF, tok.Next())
	assert.Equal(t, TokEOF, tok.Next(), "EOF is sticky")
}

func TestTokenizerSymbolDelimiters(t *testing.T) {
	tok := NewTokenizer("a(b)c;x\nd")
	var texts []string
	for tok.Next() != TokEOF {
		texts = append(texts, tok.Text())
	}
	assert.Equal(t, []string{"a", "(", "b", ")", "c", "d"}, texts)
}
