package expr

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdent
	tokenString
	tokenInt
	tokenTrue
	tokenFalse
	tokenAnd
	tokenOr
	tokenNot
	tokenIn
	tokenEq
	tokenNe
	tokenLParen
	tokenRParen
	tokenComma
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of expression"
	case tokenIdent:
		return "identifier"
	case tokenString:
		return "string literal"
	case tokenInt:
		return "integer literal"
	case tokenTrue, tokenFalse:
		return "boolean literal"
	case tokenAnd:
		return `"and"`
	case tokenOr:
		return `"or"`
	case tokenNot:
		return `"not"`
	case tokenIn:
		return `"in"`
	case tokenEq:
		return `"=="`
	case tokenNe:
		return `"!="`
	case tokenLParen:
		return `"("`
	case tokenRParen:
		return `")"`
	case tokenComma:
		return `","`
	}

	return "unknown token"
}

type token struct {
	text string
	num  int
	typ  tokenType
	pos  int
}

// keywords accepts both lowercase and Python-style capitalized booleans,
// since configurations written for the predicate examples use either.
var keywords = map[string]tokenType{
	"and":   tokenAnd,
	"or":    tokenOr,
	"not":   tokenNot,
	"in":    tokenIn,
	"true":  tokenTrue,
	"True":  tokenTrue,
	"false": tokenFalse,
	"False": tokenFalse,
}

// scan tokenizes a full expression. It has no streaming mode; expressions
// are short configuration strings.
func scan(input string) ([]token, error) {
	var tokens []token

	runes := []rune(input)
	i := 0

	for i < len(runes) {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			tokens = append(tokens, token{typ: tokenLParen, pos: i})
			i++

		case r == ')':
			tokens = append(tokens, token{typ: tokenRParen, pos: i})
			i++

		case r == ',':
			tokens = append(tokens, token{typ: tokenComma, pos: i})
			i++

		case r == '=':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, token{typ: tokenEq, pos: i})
				i += 2

				continue
			}

			return nil, &SyntaxError{Input: input, Pos: i, Msg: `unexpected "=", did you mean "=="?`}

		case r == '!':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, token{typ: tokenNe, pos: i})
				i += 2

				continue
			}

			return nil, &SyntaxError{Input: input, Pos: i, Msg: `unexpected "!", did you mean "!="?`}

		case r == '"' || r == '\'':
			lit, next, err := scanString(input, runes, i)
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, token{typ: tokenString, text: lit, pos: i})
			i = next

		case unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			i++
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}

			n, err := strconv.Atoi(string(runes[start:i]))
			if err != nil {
				return nil, &SyntaxError{Input: input, Pos: start, Msg: "invalid integer literal"}
			}

			tokens = append(tokens, token{typ: tokenInt, num: n, pos: start})

		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}

			word := string(runes[start:i])
			if typ, ok := keywords[word]; ok {
				tokens = append(tokens, token{typ: typ, text: word, pos: start})
			} else {
				tokens = append(tokens, token{typ: tokenIdent, text: word, pos: start})
			}

		default:
			return nil, &SyntaxError{Input: input, Pos: i, Msg: "unexpected character " + strconv.QuoteRune(r)}
		}
	}

	tokens = append(tokens, token{typ: tokenEOF, pos: len(runes)})

	return tokens, nil
}

// scanString consumes a quoted string starting at runes[start] and returns
// the unescaped content plus the index after the closing quote.
func scanString(input string, runes []rune, start int) (string, int, error) {
	quote := runes[start]

	var b strings.Builder

	i := start + 1
	for i < len(runes) {
		r := runes[i]

		switch r {
		case quote:
			return b.String(), i + 1, nil

		case '\\':
			if i+1 >= len(runes) {
				return "", 0, &SyntaxError{Input: input, Pos: i, Msg: "unterminated escape sequence"}
			}

			i++
			switch runes[i] {
			case '\\', '"', '\'':
				b.WriteRune(runes[i])
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				return "", 0, &SyntaxError{
					Input: input, Pos: i,
					Msg: "unknown escape sequence \\" + string(runes[i]),
				}
			}
			i++

		default:
			b.WriteRune(r)
			i++
		}
	}

	return "", 0, &SyntaxError{Input: input, Pos: start, Msg: "unterminated string literal"}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
