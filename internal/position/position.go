package position

import "fmt"

// Position locates a token or node in its source. The lexer fills it in when
// the token is created and it is never mutated afterwards; every node carries
// the position of the token it was created from.
//
// Page tracks form feeds: a \f in the source bumps Page and restarts Line at
// 1, while Total keeps counting physical lines from the start of the file.
type Position struct {
	Filename string
	Page     int
	Line     int
	Total    int
}

// New returns the starting position for a file.
func New(filename string) Position {
	return Position{
		Filename: filename,
		Page:     1,
		Line:     1,
		Total:    1,
	}
}

// NextLine advances to the next physical line.
func (p *Position) NextLine() {
	p.Line++
	p.Total++
}

// NextPage advances to the next page and restarts line numbering.
func (p *Position) NextPage() {
	p.Page++
	p.Line = 1
	p.Total++
}

// IsZero reports whether the position was never filled in.
func (p Position) IsZero() bool {
	return p == Position{}
}

// String renders the file(line) form used in diagnostics.
func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("line %d", p.Line)
	}
	return fmt.Sprintf("%s(%d)", p.Filename, p.Line)
}
