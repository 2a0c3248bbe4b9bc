// Package parse converts tree-sitter C++ syntax trees into ast translation
// units. Every name it produces carries the lexical scope path of its
// occurrence so the binding oracle can resolve it later.
package parse

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/cppfacts/internal/ast"
	"github.com/phobologic/cppfacts/internal/lang"
	"github.com/phobologic/cppfacts/internal/qname"
)

var scopeSepRe = regexp.MustCompile(`\s*::\s*`)

// Unit parses source and returns its translation unit. The parser must be
// created for C++. file is used only for positions and should be the
// repo-relative path.
func Unit(ctx context.Context, parser *sitter.Parser, source []byte, file string) (*ast.Node, error) {
	unit := ast.Unit(file)
	if len(source) == 0 {
		return unit, nil
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	defer tree.Close()

	c := &converter{src: source, file: file}
	root := tree.RootNode()
	unit.Pos = c.pos(root)
	unit.Children = c.decls(root, nil)
	return unit, nil
}

type converter struct {
	src  []byte
	file string
}

func (c *converter) pos(n *sitter.Node) ast.Pos {
	return ast.Pos{
		File:  c.file,
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
		Line:  int(n.StartPoint().Row) + 1,
	}
}

func (c *converter) text(n *sitter.Node) string {
	return lang.NodeText(n, c.src)
}

// nameText returns the normalized text of a name node: whitespace collapsed,
// template arguments dropped.
func (c *converter) nameText(n *sitter.Node) string {
	return normalizeName(c.text(n))
}

func (c *converter) name(n *sitter.Node, scope []string) *ast.Name {
	if n == nil {
		return nil
	}
	text := c.nameText(n)
	if text == "" {
		return nil
	}
	return ast.NewName(text, scope...)
}

// named returns the named children of n, comments excluded.
func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		ch := n.NamedChild(i)
		if ch == nil || ch.Type() == "comment" {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// fieldChildren returns every child of n attached under field.
func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == field {
			out = append(out, n.Child(i))
		}
	}
	return out
}

func hasChildType(n *sitter.Node, typ, text string, src []byte) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch.Type() == typ && (text == "" || lang.NodeText(ch, src) == text) {
			return true
		}
	}
	return false
}

// normalizeName collapses whitespace, tightens "::" and removes template
// argument lists, leaving operator symbols intact: "std::map<K, V>::iterator"
// gives "std::map::iterator".
func normalizeName(s string) string {
	s = scopeSepRe.ReplaceAllString(lang.CollapseWhitespace(s), qname.Separator)
	head, tail := s, ""
	if i := strings.Index(s, "operator"); i >= 0 {
		head, tail = s[:i], s[i:]
	}
	var b strings.Builder
	depth := 0
	for _, r := range head {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String()) + tail
}

// extend returns scope followed by segs, never sharing scope's array.
func extend(scope []string, segs ...string) []string {
	out := make([]string, 0, len(scope)+len(segs))
	out = append(out, scope...)
	for _, s := range segs {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
