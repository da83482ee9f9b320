package mdadapter

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

type SetDirectiveRenderer struct {
	resolver SetResolver
}

func NewSetDirectiveRenderer(resolver SetResolver) renderer.NodeRenderer {
	return &SetDirectiveRenderer{resolver: resolver}
}

func (r *SetDirectiveRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindSetDirective, r.renderSetDirective)
}

func (r *SetDirectiveRenderer) renderSetDirective(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	directive := n.(*SetDirective)

	set, ok := r.resolver.Set(directive.Cycle)
	if !ok {
		// Unknown sets are left as written.
		w.Write(util.EscapeHTML(directive.Raw))

		return ast.WalkContinue, nil
	}

	w.WriteString(`<span class="set set-`)
	w.Write(util.EscapeHTML([]byte(strings.ToLower(set.ID))))
	w.WriteString(`">`)
	w.Write(util.EscapeHTML([]byte(set.Name)))
	w.WriteString(`</span>`)

	return ast.WalkContinue, nil
}
