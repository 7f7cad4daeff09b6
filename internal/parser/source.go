package parser

import (
	"github.com/WebWorksCollection/csspp/internal/ast"
	"github.com/WebWorksCollection/csspp/internal/position"
)

// TokenSource is the pull interface the parser consumes; the lexer
// implements it. Every call advances exactly one token.
type TokenSource interface {
	NextToken() *ast.Node
}

// nodeSource replays a slice of already-lexed nodes, then synthesizes EOF
// tokens carrying the position of the last node.
type nodeSource struct {
	nodes []*ast.Node
	i     int
	end   position.Position
}

func newNodeSource(nodes []*ast.Node) *nodeSource {
	s := &nodeSource{nodes: nodes, end: position.New("")}
	if len(nodes) > 0 {
		s.end = nodes[len(nodes)-1].Pos
	}
	return s
}

func (s *nodeSource) NextToken() *ast.Node {
	if s.i >= len(s.nodes) {
		return ast.New(ast.KindEOF, s.end)
	}
	n := s.nodes[s.i]
	s.i++
	return n
}
