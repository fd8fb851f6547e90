package token

import (
	"unicode"

	"github.com/declbyte/declbyte/errors"
)

type Type int

const (
	Ident Type = iota
	Number
	Directive // word following '#', e.g. "define"
	LBrace
	RBrace
	LParen
	RParen
	LBracket
	RBracket
	Semi
	Colon
	Comma
	Star
	Plus
	Minus
	Slash
	Assign
)

func (t Type) String() string {
	switch t {
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case Directive:
		return "directive"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case Semi:
		return "';'"
	case Colon:
		return "':'"
	case Comma:
		return "','"
	case Star:
		return "'*'"
	case Plus:
		return "'+'"
	case Minus:
		return "'-'"
	case Slash:
		return "'/'"
	case Assign:
		return "'='"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
	Col   int
}

var puncts = map[rune]Type{
	'{': LBrace,
	'}': RBrace,
	'(': LParen,
	')': RParen,
	'[': LBracket,
	']': RBracket,
	';': Semi,
	':': Colon,
	',': Comma,
	'*': Star,
	'+': Plus,
	'-': Minus,
	'=': Assign,
}

// Tokenize converts source text into a token stream. Line and column
// numbers are 1-based and attached to every token.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	line, col := 1, 0
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		col++

		if r == '\n' {
			line++
			col = 0
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			line++
			col = 0
			continue
		}

		// Block comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			startLine, startCol := line, col
			i += 2
			col += 2
			closed := false
			for i < len(runes) {
				if runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/' {
					i++
					col++
					closed = true
					break
				}
				if runes[i] == '\n' {
					line++
					col = 0
				} else {
					col++
				}
				i++
			}
			if !closed {
				return nil, errors.BadToken(startLine, startCol, "unterminated block comment")
			}
			continue
		}

		if r == '/' {
			tokens = append(tokens, Token{"/", Slash, line, col})
			continue
		}

		// Preprocessor directive: '#' followed by a word
		if r == '#' {
			start := i + 1
			startCol := col
			i++
			col++
			for i < len(runes) && unicode.IsLetter(runes[i]) {
				i++
				col++
			}
			if i == start {
				return nil, errors.BadToken(line, startCol, "'#' without directive name")
			}
			tokens = append(tokens, Token{string(runes[start:i]), Directive, line, startCol})
			i--
			col--
			continue
		}

		if typ, ok := puncts[r]; ok {
			tokens = append(tokens, Token{string(r), typ, line, col})
			continue
		}

		// Number: decimal or hex, optional C integer suffix (U, L, UL, ...)
		if unicode.IsDigit(r) {
			start := i
			startCol := col
			if r == '0' && i+1 < len(runes) && (runes[i+1] == 'x' || runes[i+1] == 'X') {
				i += 2
				col += 2
				digits := 0
				for i < len(runes) && isHexDigit(runes[i]) {
					i++
					col++
					digits++
				}
				if digits == 0 {
					return nil, errors.BadToken(line, startCol, "malformed integer literal")
				}
			} else {
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					i++
					col++
				}
			}
			for i < len(runes) && isIntSuffix(runes[i]) {
				i++
				col++
			}
			// A letter or digit glued onto the literal is malformed,
			// e.g. 3.0F or 12ABC.
			if i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '.') {
				return nil, errors.BadToken(line, startCol, "malformed integer literal")
			}
			tokens = append(tokens, Token{string(runes[start:i]), Number, line, startCol})
			i--
			col--
			continue
		}

		// Identifier or keyword
		if unicode.IsLetter(r) || r == '_' {
			start := i
			startCol := col
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
				col++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, line, startCol})
			i--
			col--
			continue
		}

		return nil, errors.BadToken(line, col, "unexpected character "+string(r))
	}

	return tokens, nil
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIntSuffix(r rune) bool {
	return r == 'u' || r == 'U' || r == 'l' || r == 'L'
}
