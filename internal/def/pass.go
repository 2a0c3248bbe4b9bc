package def

import (
	"github.com/phobologic/cppfacts/internal/ast"
	"github.com/phobologic/cppfacts/internal/model"
)

// Pass walks one translation unit. It leaves the stack as it found it.
func (d *Definer) Pass(file string, unit *ast.Node) {
	d.SetUnit(file)
	depth := d.r.Stack.Depth()
	defer d.r.Stack.Truncate(depth)
	d.nodes(unit.Children)
}

func (d *Definer) nodes(ns []*ast.Node) {
	for _, n := range ns {
		d.node(n)
	}
}

func (d *Definer) node(n *ast.Node) {
	if n == nil {
		return
	}
	stack := d.r.Stack
	switch n.Kind {
	case ast.NamespaceDef:
		ids := d.Namespace(n)
		for _, id := range ids {
			stack.Push(id)
		}
		d.nodes(n.Children)
		for range ids {
			stack.Pop()
		}

	case ast.CompositeType:
		id := d.Class(n)
		if id == model.NoEntity {
			return
		}
		stack.Push(id)
		d.nodes(n.Children)
		stack.Pop()

	case ast.SimpleDeclaration:
		for _, decl := range n.Declarators {
			switch {
			case decl == nil:
			case n.Has(ast.Typedef):
				d.TypeAlias(decl.Name, decl.Pos)
			case decl.Kind == ast.FunctionDeclarator:
				if id := d.Behavioural(decl, n.Pos); id != model.NoEntity {
					d.Parameters(id, decl)
				}
			case decl.Kind == ast.Declarator:
				d.Variable(decl)
			}
		}

	case ast.AliasDeclaration:
		d.TypeAlias(n.Name, n.Pos)

	case ast.FunctionDefinition:
		if n.Declarator == nil {
			return
		}
		if id := d.Behavioural(n.Declarator, n.Pos); id != model.NoEntity {
			d.Parameters(id, n.Declarator)
		}

	case ast.Block:
		d.nodes(n.Children)
	}
}
