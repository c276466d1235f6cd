package parser

import (
	"unicode"
	"unicode/utf8"
)

// TokenKind identifies a lexical token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokInt
	TokIdent

	// Keywords
	TokFor
	TokIn
	TokIf
	TokAnd
	TokOr
	TokNot
	TokTrue
	TokFalse

	// Delimiters
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokLBrace
	TokRBrace
	TokComma
	TokColon

	// Operators
	TokPlus
	TokMinus
	TokStar
	TokSlash      // / and // both lex to integer division
	TokPercent
	TokStarStar   // ** is lexed so the parser can reject it precisely
	TokEq
	TokNe
	TokLt
	TokLe
	TokGt
	TokGe
	TokAssign // bare '=' is lexed so assignments are rejected precisely
)

var keywords = map[string]TokenKind{
	"for":   TokFor,
	"in":    TokIn,
	"if":    TokIf,
	"and":   TokAnd,
	"or":    TokOr,
	"not":   TokNot,
	"True":  TokTrue,
	"False": TokFalse,
}

// Token is one lexical unit with its source offset.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Pos    int
}

// Lex tokenizes a single source fragment. Unrecognized runes produce a
// syntax ParseError.
func Lex(src string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i += size
		case unicode.IsDigit(r):
			start := i
			for i < len(src) && src[i] >= '0' && src[i] <= '9' {
				i++
			}
			if i < len(src) && src[i] == '.' {
				return nil, unsupportedErr(start, "float literal", "float literals are not supported")
			}
			tokens = append(tokens, Token{Kind: TokInt, Lexeme: src[start:i], Pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(src) {
				r2, s2 := utf8.DecodeRuneInString(src[i:])
				if !unicode.IsLetter(r2) && !unicode.IsDigit(r2) && r2 != '_' {
					break
				}
				i += s2
			}
			word := src[start:i]
			if kind, ok := keywords[word]; ok {
				tokens = append(tokens, Token{Kind: kind, Lexeme: word, Pos: start})
			} else {
				tokens = append(tokens, Token{Kind: TokIdent, Lexeme: word, Pos: start})
			}
		default:
			tok, n, err := lexSymbol(src, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i += n
		}
	}
	tokens = append(tokens, Token{Kind: TokEOF, Pos: len(src)})
	return tokens, nil
}

func lexSymbol(src string, i int) (Token, int, error) {
	two := ""
	if i+2 <= len(src) {
		two = src[i : i+2]
	}
	switch two {
	case "**":
		return Token{Kind: TokStarStar, Lexeme: two, Pos: i}, 2, nil
	case "//":
		return Token{Kind: TokSlash, Lexeme: two, Pos: i}, 2, nil
	case "==":
		return Token{Kind: TokEq, Lexeme: two, Pos: i}, 2, nil
	case "!=":
		return Token{Kind: TokNe, Lexeme: two, Pos: i}, 2, nil
	case "<=":
		return Token{Kind: TokLe, Lexeme: two, Pos: i}, 2, nil
	case ">=":
		return Token{Kind: TokGe, Lexeme: two, Pos: i}, 2, nil
	}

	one := src[i : i+1]
	if one == "\"" || one == "'" {
		return Token{}, 0, unsupportedErr(i, "string literal", "string literals are not supported")
	}
	kinds := map[string]TokenKind{
		"(": TokLParen, ")": TokRParen,
		"[": TokLBracket, "]": TokRBracket,
		"{": TokLBrace, "}": TokRBrace,
		",": TokComma, ":": TokColon,
		"+": TokPlus, "-": TokMinus,
		"*": TokStar, "/": TokSlash, "%": TokPercent,
		"<": TokLt, ">": TokGt, "=": TokAssign,
	}
	if kind, ok := kinds[one]; ok {
		return Token{Kind: kind, Lexeme: one, Pos: i}, 1, nil
	}
	return Token{}, 0, syntaxErr(i, "unexpected character %q", one)
}
