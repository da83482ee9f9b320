package mdadapter

import (
	"regexp"
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var setDirectiveRegexp = regexp.MustCompile(`^\{\{\s*set:\s*(\d+)\s*\}\}`)

type SetDirectiveParser struct{}

func NewSetDirectiveParser() parser.InlineParser {
	return &SetDirectiveParser{}
}

func (s *SetDirectiveParser) Trigger() []byte {
	return []byte{'{'}
}

func (s *SetDirectiveParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()

	matches := setDirectiveRegexp.FindSubmatch(line)
	if matches == nil {
		return nil
	}

	cycle, err := strconv.Atoi(string(matches[1]))
	if err != nil {
		return nil
	}

	raw := make([]byte, len(matches[0]))
	copy(raw, matches[0])
	block.Advance(len(matches[0]))

	return &SetDirective{
		Cycle: cycle,
		Raw:   raw,
	}
}
