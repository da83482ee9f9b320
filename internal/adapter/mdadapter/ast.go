package mdadapter

import (
	"strconv"

	"github.com/yuin/goldmark/ast"
)

var KindSetDirective = ast.NewNodeKind("SetDirective")

// SetDirective is an inline `{{ set: N }}` reference to assignment set N.
type SetDirective struct {
	ast.BaseInline
	Cycle int
	Raw   []byte
}

func (n *SetDirective) Kind() ast.NodeKind {
	return KindSetDirective
}

func (n *SetDirective) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Cycle": strconv.Itoa(n.Cycle),
	}, nil)
}
