package ref

import (
	"github.com/phobologic/cppfacts/internal/ast"
	"github.com/phobologic/cppfacts/internal/model"
	"github.com/phobologic/cppfacts/internal/qname"
)

// Pass walks one translation unit after the definition pass has seeded the
// dictionary. It leaves the stack as it found it.
func (b *Builder) Pass(file string, unit *ast.Node) {
	b.def.SetUnit(file)
	depth := b.stack.Depth()
	defer b.stack.Truncate(depth)
	b.nodes(unit.Children)
}

func (b *Builder) nodes(ns []*ast.Node) {
	for _, n := range ns {
		b.node(n)
	}
}

func (b *Builder) node(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.NamespaceDef:
		ids := b.def.Namespace(n)
		for _, id := range ids {
			b.stack.Push(id)
		}
		b.nodes(n.Children)
		for range ids {
			b.stack.Pop()
		}

	case ast.CompositeType:
		id := b.def.Class(n)
		if id == model.NoEntity {
			return
		}
		for _, base := range n.Bases {
			b.Inheritance(id, b.ResolveType(ast.Named(base)), n.Pos)
		}
		b.stack.Push(id)
		b.nodes(n.Children)
		b.stack.Pop()

	case ast.SimpleDeclaration:
		b.declaration(n)

	case ast.AliasDeclaration:
		if id := b.def.TypeAlias(n.Name, n.Pos); id != model.NoEntity {
			b.dict.SetAliasedType(id, b.ResolveType(n.Type))
		}

	case ast.FunctionDefinition:
		b.function(n)

	case ast.Block, ast.TranslationUnit:
		b.nodes(n.Children)
	}
}

// declaration handles typedefs, function declarations and variable
// declarations, recording declared types and evaluating initializers.
func (b *Builder) declaration(n *ast.Node) {
	if len(n.Declarators) == 0 {
		return
	}
	typ := b.ResolveType(n.Type)
	for _, decl := range n.Declarators {
		switch {
		case decl == nil:
		case n.Has(ast.Typedef):
			b.dict.SetAliasedType(b.def.TypeAlias(decl.Name, decl.Pos), typ)
		case decl.Kind == ast.FunctionDeclarator:
			id := b.def.Behavioural(decl, n.Pos)
			if id == model.NoEntity {
				continue
			}
			b.dict.SetDeclaredType(id, typ)
			b.stack.Push(id)
			b.parameters(id, decl)
			b.stack.Pop()
		case decl.Kind == ast.Declarator:
			id := b.def.Variable(decl)
			b.dict.SetDeclaredType(id, typ)
			b.initializer(decl, typ)
		}
	}
}

// initializer evaluates the initializer of a declarator. "T v(args)" invokes
// the constructor of T.
func (b *Builder) initializer(decl *ast.Node, typ model.EntityID) {
	init := decl.Init
	switch {
	case init == nil:
	case init.Kind == ast.CallExpression && init.Callee == nil:
		b.construct(typ, init.Args, init.Pos)
	default:
		b.Eval(init)
	}
}

func (b *Builder) parameters(behavioural model.EntityID, decl *ast.Node) {
	for _, p := range decl.Params {
		if id := b.def.Parameter(behavioural, p); id != model.NoEntity {
			b.dict.SetDeclaredType(id, b.ResolveType(p.Type))
		}
	}
}

// function walks a function definition: its signature types, its metrics,
// its member initializers and its body, with the behavioural on the stack.
func (b *Builder) function(n *ast.Node) {
	if n.Declarator == nil {
		return
	}
	id := b.def.Behavioural(n.Declarator, n.Pos)
	if id == model.NoEntity {
		return
	}
	b.stack.Push(id)
	defer b.stack.Pop()

	b.dict.SetDeclaredType(id, b.ResolveType(n.Type))
	b.parameters(id, n.Declarator)
	b.metrics(id, n.Body)
	for _, init := range n.Inits {
		b.memberInitializer(init)
	}
	if n.Body != nil {
		b.Eval(n.Body)
	}
}

// metrics sets the cyclomatic complexity and statement count of a body.
// Nested types and functions are not counted.
func (b *Builder) metrics(id model.EntityID, body *ast.Node) {
	e := b.model().Entity(id)
	complexity, statements := 1, 0
	ast.Walk(body, func(n *ast.Node) bool {
		if n != body && (n.Kind == ast.CompositeType || n.Kind == ast.FunctionDefinition) {
			return false
		}
		if n.Has(ast.Branch) {
			complexity++
		}
		if n.Has(ast.Statement) {
			statements++
		}
		return true
	})
	e.Complexity = complexity
	e.Statements = statements
}

// memberInitializer handles one entry of a constructor's initializer list.
// A field initializer writes the field and invokes the constructor of its
// type; any other entry invokes the constructor of a base class.
func (b *Builder) memberInitializer(n *ast.Node) {
	if n == nil || n.Name == nil || n.Name.Text == "" {
		return
	}
	field := b.ResolveName(n.Name)
	if !b.kind(field).IsStructural() {
		field = model.NoEntity
		if cls := b.enclosingClass(); cls != model.NoEntity {
			field = b.memberOf(qname.Parse(n.Name.Text).Unqualified(), cls, model.Kind.IsStructural)
		}
	}
	if field != model.NoEntity {
		b.Access(field, true, n.Pos)
		b.construct(b.model().Entity(field).DeclaredType, n.Args, n.Pos)
		return
	}
	b.construct(b.ResolveType(ast.Named(n.Name)), n.Args, n.Pos)
}
