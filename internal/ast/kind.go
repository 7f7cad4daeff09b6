package ast

// Kind is the closed set of syntactic categories a Node can have. Most kinds
// come straight from the tokenizer; List, Declaration and ComponentValue are
// introduced by the parser and compiler as structural containers.
type Kind int

const (
	KindEOF Kind = iota
	KindWhitespace
	KindComment
	KindIdentifier
	KindAtKeyword
	KindString
	KindInteger
	KindDecimal
	KindPercent
	KindHash
	KindURL
	KindVariable
	KindFunction
	KindColon
	KindSemicolon
	KindComma
	KindExclamation
	KindPeriod
	KindGreaterThan
	KindLessThan
	KindPlus
	KindPrecede
	KindMultiply
	KindDivide
	KindSubtract
	KindEqual
	KindReference
	KindIncludes
	KindDashMatch
	KindPrefixMatch
	KindSuffixMatch
	KindSubstringMatch
	KindCDO
	KindCDC
	KindOpenCurly
	KindCloseCurly
	KindOpenSquare
	KindCloseSquare
	KindOpenParen
	KindCloseParen
	KindList
	KindDeclaration
	KindComponentValue
)

var kindNames = map[Kind]string{
	KindEOF:            "EOF",
	KindWhitespace:     "WHITESPACE",
	KindComment:        "COMMENT",
	KindIdentifier:     "IDENTIFIER",
	KindAtKeyword:      "AT_KEYWORD",
	KindString:         "STRING",
	KindInteger:        "INTEGER",
	KindDecimal:        "DECIMAL_NUMBER",
	KindPercent:        "PERCENT",
	KindHash:           "HASH",
	KindURL:            "URL",
	KindVariable:       "VARIABLE",
	KindFunction:       "FUNCTION",
	KindColon:          "COLON",
	KindSemicolon:      "SEMICOLON",
	KindComma:          "COMMA",
	KindExclamation:    "EXCLAMATION",
	KindPeriod:         "PERIOD",
	KindGreaterThan:    "GREATER_THAN",
	KindLessThan:       "LESS_THAN",
	KindPlus:           "PLUS",
	KindPrecede:        "PRECEDE",
	KindMultiply:       "MULTIPLY",
	KindDivide:         "DIVIDE",
	KindSubtract:       "SUBTRACT",
	KindEqual:          "EQUAL",
	KindReference:      "REFERENCE",
	KindIncludes:       "INCLUDES",
	KindDashMatch:      "DASH_MATCH",
	KindPrefixMatch:    "PREFIX_MATCH",
	KindSuffixMatch:    "SUFFIX_MATCH",
	KindSubstringMatch: "SUBSTRING_MATCH",
	KindCDO:            "CDO",
	KindCDC:            "CDC",
	KindOpenCurly:      "OPEN_CURLY",
	KindCloseCurly:     "CLOSE_CURLY",
	KindOpenSquare:     "OPEN_SQUARE",
	KindCloseSquare:    "CLOSE_SQUARE",
	KindOpenParen:      "OPEN_PAREN",
	KindCloseParen:     "CLOSE_PAREN",
	KindList:           "LIST",
	KindDeclaration:    "DECLARATION",
	KindComponentValue: "COMPONENT_VALUE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsOpen reports whether the kind opens a balanced block. Function counts:
// its arguments close with a parenthesis.
func (k Kind) IsOpen() bool {
	switch k {
	case KindOpenCurly, KindOpenSquare, KindOpenParen, KindFunction:
		return true
	default:
		return false
	}
}

// IsClose reports whether the kind closes a balanced block.
func (k Kind) IsClose() bool {
	switch k {
	case KindCloseCurly, KindCloseSquare, KindCloseParen:
		return true
	default:
		return false
	}
}

// Mirror returns the closing kind matching an opening kind. Calling it on
// anything else is a programming error.
func (k Kind) Mirror() Kind {
	switch k {
	case KindOpenCurly:
		return KindCloseCurly
	case KindOpenSquare:
		return KindCloseSquare
	case KindOpenParen, KindFunction:
		return KindCloseParen
	default:
		panic("ast: Mirror called on non-opening kind " + k.String())
	}
}
