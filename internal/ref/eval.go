package ref

import (
	"github.com/phobologic/cppfacts/internal/ast"
	"github.com/phobologic/cppfacts/internal/model"
	"github.com/phobologic/cppfacts/internal/qname"
	"github.com/phobologic/cppfacts/internal/resolve"
)

// Eval evaluates the single expression n with a visitor sharing b's
// dictionary, stack and oracle, and returns what it denotes. The stack is
// left at the depth it had on entry.
func (b *Builder) Eval(n *ast.Node) Value {
	depth := b.stack.Depth()
	defer b.stack.Truncate(depth)
	return b.visit(n)
}

func (b *Builder) visit(n *ast.Node) Value {
	if n == nil {
		return None
	}
	switch n.Kind {
	case ast.IdExpression:
		return b.ReferenceToName(n.Name, false, n.Pos)
	case ast.FieldReference:
		return b.fieldReference(n, false)
	case ast.CallExpression:
		return b.call(n)
	case ast.ThisExpression:
		return b.self(n.Pos)
	case ast.UnaryExpression:
		return b.unary(n)
	case ast.BinaryExpression:
		return b.binary(n)
	case ast.NewExpression:
		return b.newExpression(n)
	case ast.SimpleDeclaration:
		b.declaration(n)
		return None
	case ast.CompositeType, ast.FunctionDefinition, ast.NamespaceDef, ast.AliasDeclaration:
		b.node(n)
		return None
	case ast.Literal:
		return None
	default:
		v := None
		for _, c := range n.Children {
			v = b.visit(c)
		}
		if len(n.Children) != 1 {
			return None
		}
		return v
	}
}

func (b *Builder) unary(n *ast.Node) Value {
	if len(n.Operands) == 0 {
		return None
	}
	op := n.Operands[0]
	if n.Op == "&" && op != nil {
		switch op.Kind {
		case ast.IdExpression:
			return b.ReferenceToName(op.Name, true, op.Pos)
		case ast.FieldReference:
			return b.fieldReference(op, true)
		}
	}
	return b.visit(op)
}

// binary visits the operands in order and yields the last one. An assignment
// turns the access recorded for its left operand into a write. A subscript
// yields the subscripted operand.
func (b *Builder) binary(n *ast.Node) Value {
	v, first := None, None
	for i, op := range n.Operands {
		v = b.visit(op)
		if i > 0 {
			continue
		}
		first = v
		if n.IsAssignment() {
			if a := b.model().Association(v.Assoc); a != nil && a.Kind == model.Access {
				a.IsWrite = true
			}
		}
	}
	if n.Op == "[]" {
		return first
	}
	return v
}

// fieldReference evaluates owner.name or owner->name used as a value.
func (b *Builder) fieldReference(n *ast.Node, reference bool) Value {
	recv := b.visit(n.Owner)
	if n.Name == nil || n.Name.Text == "" {
		return None
	}
	id := b.field(n.Name, b.typeOf(recv.Entity))
	switch k := b.kind(id); {
	case id == model.NoEntity:
		return b.UnknownAccess(qname.Parse(n.Name.Text).Unqualified(), n.Pos)
	case k.IsStructural():
		return valueOf(id, b.Access(id, false, n.Pos))
	case k.IsBehavioural() && reference:
		return valueOf(id, b.BehaviouralReference(id, n.Pos))
	case k.IsBehavioural():
		return valueOf(id, b.Invocation(id, b.model().Entity(id).Signature, nil, n.Pos))
	}
	return Value{Entity: id, Assoc: model.NoAssoc}
}

// call evaluates a call expression: the receiver first, then the call edge,
// then one argument per argument expression.
func (b *Builder) call(n *ast.Node) Value {
	nArgs := len(n.Args)
	callee := n.Callee
	if callee == nil {
		return None
	}

	var target model.EntityID
	simple := ""
	switch callee.Kind {
	case ast.IdExpression:
		if callee.Name == nil || callee.Name.Text == "" {
			return None
		}
		simple = qname.Parse(callee.Name.Text).Unqualified()
		target = b.callee(callee.Name, nArgs)
		if k := b.kind(target); k.IsType() {
			typ := target
			if target = b.constructorOf(typ, nArgs); target == model.NoEntity {
				b.evalAll(n.Args)
				return Value{Entity: typ, Assoc: model.NoAssoc}
			}
		}
		if target == model.NoEntity {
			target = b.r.MakeStubBehavioural(callee.Name.Text, nArgs, model.NoEntity)
		}
	case ast.FieldReference:
		recv := b.visit(callee.Owner)
		if callee.Name == nil || callee.Name.Text == "" {
			return None
		}
		simple = qname.Parse(callee.Name.Text).Unqualified()
		target = b.method(callee.Name, nArgs, b.typeOf(recv.Entity))
	default:
		target = b.visit(callee).Entity
		if e := b.model().Entity(target); e != nil {
			simple = e.Name
		}
	}
	return b.invoke(target, simple, n.Args, n.Pos)
}

// invoke records the call edge to target and then attaches the arguments.
// Nothing is recorded when target is neither a behavioural nor a variable.
func (b *Builder) invoke(target model.EntityID, name string, args []*ast.Node, pos ast.Pos) Value {
	var a *model.Association
	switch k := b.kind(target); {
	case k.IsBehavioural():
		a = b.Invocation(target, b.model().Entity(target).Signature, nil, pos)
	case k.IsStructural():
		a = b.Deref(target, resolve.StubSignature(name, len(args)), nil, pos)
	default:
		return None
	}
	if a == nil {
		return Value{Entity: target, Assoc: model.NoAssoc}
	}
	a.Arguments = b.arguments(args)
	return valueOf(target, a)
}

// arguments evaluates each argument and returns one association per
// argument, the empty argument standing in for those that yield none.
func (b *Builder) arguments(args []*ast.Node) []model.AssocID {
	if len(args) == 0 {
		return nil
	}
	out := make([]model.AssocID, 0, len(args))
	for _, arg := range args {
		id := b.Eval(arg).Assoc
		if id == model.NoAssoc {
			pos := ast.Pos{}
			if arg != nil {
				pos = arg.Pos
			}
			id = b.emptyArgument(pos)
		}
		out = append(out, id)
	}
	return out
}

// evalAll evaluates expressions that feed no call edge.
func (b *Builder) evalAll(ns []*ast.Node) {
	for _, n := range ns {
		b.Eval(n)
	}
}

// newExpression invokes the constructor of the allocated type.
func (b *Builder) newExpression(n *ast.Node) Value {
	typ := b.ResolveType(n.Type)
	ctor := b.constructorOf(typ, len(n.Args))
	if ctor == model.NoEntity {
		b.evalAll(n.Args)
		return Value{Entity: typ, Assoc: model.NoAssoc}
	}
	return b.invoke(ctor, b.model().Entity(ctor).Name, n.Args, n.Pos)
}

// construct invokes the constructor of typ with args, as in "T v(args)" or a
// member initializer.
func (b *Builder) construct(typ model.EntityID, args []*ast.Node, pos ast.Pos) Value {
	ctor := b.constructorOf(typ, len(args))
	if ctor == model.NoEntity {
		b.evalAll(args)
		return None
	}
	return b.invoke(ctor, b.model().Entity(ctor).Name, args, pos)
}
