package mdadapter

import (
	"github.com/jgivc/assignfetch/internal/entity"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

type SetResolver interface {
	Set(cycle int) (entity.FileSet, bool)
}

type SetsExtension struct {
	resolver SetResolver
}

func NewSetsExtension(resolver SetResolver) goldmark.Extender {
	return &SetsExtension{resolver: resolver}
}

func (e *SetsExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(NewSetDirectiveParser(), 500),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(NewSetDirectiveRenderer(e.resolver), 500),
		),
	)
}
