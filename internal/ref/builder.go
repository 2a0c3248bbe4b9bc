// Package ref runs the reference pass: it re-walks each translation unit,
// resolves every name occurrence and records the cross-reference edges of
// the fact model in source order.
package ref

import (
	"github.com/phobologic/cppfacts/internal/ast"
	"github.com/phobologic/cppfacts/internal/binding"
	"github.com/phobologic/cppfacts/internal/def"
	"github.com/phobologic/cppfacts/internal/dict"
	"github.com/phobologic/cppfacts/internal/model"
	"github.com/phobologic/cppfacts/internal/qname"
	"github.com/phobologic/cppfacts/internal/resolve"
	"github.com/phobologic/cppfacts/internal/stack"
)

// Value is what evaluating an expression yields: the entity it denotes and
// the edge recorded for it. Either may be absent.
type Value struct {
	Entity model.EntityID
	Assoc  model.AssocID
}

// None is the empty value.
var None = Value{Entity: model.NoEntity, Assoc: model.NoAssoc}

// IsNone reports whether v carries nothing.
func (v Value) IsNone() bool {
	return v.Entity == model.NoEntity && v.Assoc == model.NoAssoc
}

// Builder records edges against the shared state of one run.
type Builder struct {
	def   *def.Definer
	r     *resolve.Resolver
	dict  *dict.Dictionary
	stack *stack.Stack
}

// NewBuilder returns a builder sharing d's resolver, dictionary and stack.
func NewBuilder(d *def.Definer) *Builder {
	r := d.Resolver()
	return &Builder{def: d, r: r, dict: r.Dict, stack: r.Stack}
}

func (b *Builder) model() *model.Model {
	return b.dict.Model()
}

func (b *Builder) kind(id model.EntityID) model.Kind {
	return b.model().KindOf(id)
}

// Access records an access to variable by the innermost behavioural and
// appends it to that behavioural's access chain. Outside any behavioural
// nothing is recorded and nil is returned.
func (b *Builder) Access(variable model.EntityID, isWrite bool, pos ast.Pos) *model.Association {
	accessor := b.stack.TopBehavioural()
	if accessor == model.NoEntity || variable == model.NoEntity {
		return nil
	}
	a := b.dict.AddAccess(accessor, variable, isWrite, b.stack.LastAccess(accessor))
	a.Anchor = b.def.Anchor(pos)
	b.stack.SetLastAccess(accessor, a.ID)
	return a
}

// Invocation records a call of callee by the innermost behavioural and
// appends it to that behavioural's invocation chain.
func (b *Builder) Invocation(callee model.EntityID, sig string, args []model.AssocID, pos ast.Pos) *model.Association {
	sender := b.stack.TopBehavioural()
	if sender == model.NoEntity || callee == model.NoEntity {
		return nil
	}
	a := b.dict.AddInvocation(sender, callee, sig, args, b.stack.LastInvocation(sender))
	a.Anchor = b.def.Anchor(pos)
	b.stack.SetLastInvocation(sender, a.ID)
	return a
}

// Deref records a call through variable, which holds a function reference.
// It shares the invocation chain.
func (b *Builder) Deref(variable model.EntityID, sig string, args []model.AssocID, pos ast.Pos) *model.Association {
	sender := b.stack.TopBehavioural()
	if sender == model.NoEntity || variable == model.NoEntity {
		return nil
	}
	a := b.dict.AddDereferencedInvocation(sender, variable, sig, args, b.stack.LastInvocation(sender))
	a.Anchor = b.def.Anchor(pos)
	b.stack.SetLastInvocation(sender, a.ID)
	return a
}

// BehaviouralReference records that the innermost behavioural takes a
// reference to target without calling it.
func (b *Builder) BehaviouralReference(target model.EntityID, pos ast.Pos) *model.Association {
	referer := b.stack.TopBehavioural()
	if referer == model.NoEntity || target == model.NoEntity {
		return nil
	}
	a := b.dict.AddBehaviouralReference(referer, target)
	a.Anchor = b.def.Anchor(pos)
	return a
}

// Inheritance records that sub derives from sup.
func (b *Builder) Inheritance(sub, sup model.EntityID, pos ast.Pos) *model.Association {
	if sub == model.NoEntity || sup == model.NoEntity || sub == sup {
		return nil
	}
	a := b.dict.AddInheritance(sub, sup)
	if a.Anchor == nil {
		a.Anchor = b.def.Anchor(pos)
	}
	return a
}

// UnknownAccess records a read of the unknown variable standing for name.
func (b *Builder) UnknownAccess(name string, pos ast.Pos) Value {
	v := b.dict.EnsureUnknownVariable(name)
	return valueOf(v.ID, b.Access(v.ID, false, pos))
}

// emptyArgument records an unchained read of the empty argument placeholder.
func (b *Builder) emptyArgument(pos ast.Pos) model.AssocID {
	accessor := b.stack.TopBehavioural()
	if accessor == model.NoEntity {
		return model.NoAssoc
	}
	v := b.dict.EnsureUnknownVariable(dict.EmptyArgument)
	a := b.dict.AddAccess(accessor, v.ID, false, model.NoAssoc)
	a.Anchor = b.def.Anchor(pos)
	return a.ID
}

func valueOf(id model.EntityID, a *model.Association) Value {
	v := Value{Entity: id, Assoc: model.NoAssoc}
	if a != nil {
		v.Assoc = a.ID
	}
	return v
}

// ResolveName returns the entity a name occurrence denotes: the oracle's
// answer when the dictionary knows it, else a scope search from the top of
// the stack. It creates nothing but the containers named by qualifiers.
func (b *Builder) ResolveName(name *ast.Name) model.EntityID {
	if name == nil || name.Text == "" {
		return model.NoEntity
	}
	if bnd := b.r.Lookup(name); bnd != nil {
		if id := b.dict.LookupBinding(bnd); id != model.NoEntity {
			return id
		}
		if bnd.Key.Kind.IsBehavioural() {
			return b.r.EnsureBehaviouralFromName(bnd, qname.Parse(name.Text).Unqualified(), 0)
		}
	}
	n := qname.Parse(name.Text)
	switch {
	case n.IsEmpty():
		return model.NoEntity
	case n.IsFullyQualified():
		parent := b.r.ResolveOrCreate(n.Qualifiers().String(), true, false)
		if parent == model.NoEntity {
			return model.NoEntity
		}
		return b.r.FindInParent(n.Unqualified(), parent, false)
	case n.IsAbsolute():
		return b.r.FindAtTopLevel(n.Unqualified())
	default:
		if id := b.r.FindInParent(n.Unqualified(), b.stack.Top(), true); id != model.NoEntity {
			return id
		}
		return b.inherited(n.Unqualified())
	}
}

// enclosingClass returns the class whose member code is being walked: the
// innermost type on the stack, else the owner of the innermost behavioural.
func (b *Builder) enclosingClass() model.EntityID {
	if t := b.stack.TopType(); t != model.NoEntity {
		return t
	}
	if beh := b.stack.TopBehavioural(); beh != model.NoEntity {
		if o := b.model().Entity(beh).Owner; b.kind(o).IsType() {
			return o
		}
	}
	return model.NoEntity
}

// inherited searches the supertypes of the enclosing class for name.
func (b *Builder) inherited(name string) model.EntityID {
	cls := b.enclosingClass()
	if cls == model.NoEntity || len(b.dict.Superclasses(cls)) == 0 {
		return model.NoEntity
	}
	return b.memberOf(name, cls, func(model.Kind) bool { return true })
}

// ReferenceToName resolves a name used as a value and records the matching
// edge: an access for a variable, a behavioural reference for a function whose
// address is taken (reference), an invocation for any other use of a
// function. A qualified miss becomes a stub variable of its qualifier; any
// other miss an access to an unknown variable.
func (b *Builder) ReferenceToName(name *ast.Name, reference bool, pos ast.Pos) Value {
	if name == nil || name.Text == "" {
		return None
	}
	id := b.ResolveName(name)
	if id == model.NoEntity {
		n := qname.Parse(name.Text)
		if !n.IsFullyQualified() {
			return b.UnknownAccess(n.Unqualified(), pos)
		}
		parent := b.r.ResolveOrCreate(n.Qualifiers().String(), false, false)
		if b.kind(parent).IsType() {
			bnd, _ := b.r.StubBinding(n.Unqualified(), parent, model.Attribute)
			id = b.dict.EnsureAttribute(bnd, n.Unqualified(), parent).ID
		} else {
			bnd, _ := b.r.StubBinding(n.Unqualified(), parent, model.GlobalVariable)
			id = b.dict.EnsureGlobalVariable(bnd, n.Unqualified(), parent).ID
		}
	}
	switch k := b.kind(id); {
	case k.IsStructural():
		return valueOf(id, b.Access(id, false, pos))
	case k.IsBehavioural() && reference:
		return valueOf(id, b.BehaviouralReference(id, pos))
	case k.IsBehavioural():
		return valueOf(id, b.Invocation(id, b.model().Entity(id).Signature, nil, pos))
	default:
		return Value{Entity: id, Assoc: model.NoAssoc}
	}
}

// ResolveType returns the type a type reference names. When nothing matches,
// a name qualified by a namespace (std::string) becomes a stub type of
// unknown nature and any other name a stub class.
func (b *Builder) ResolveType(t *ast.TypeRef) model.EntityID {
	if t == nil || t.Name == nil || t.Name.Text == "" {
		return model.NoEntity
	}
	if t.Primitive {
		return b.dict.EnsurePrimitiveType(t.Name.Text).ID
	}
	if bnd := b.r.Lookup(t.Name); bnd != nil && bnd.Key.Kind.IsType() {
		if id := b.dict.LookupBinding(bnd); id != model.NoEntity {
			return id
		}
	}
	if n := qname.Parse(t.Name.Text); n.IsFullyQualified() {
		parent := b.r.ResolveOrCreate(n.Qualifiers().String(), false, false)
		if b.kind(parent).IsScoping() {
			simple := n.Unqualified()
			if id := b.r.FindInParent(simple, parent, false); id != model.NoEntity {
				if b.kind(id).IsType() {
					return id
				}
				return model.NoEntity
			}
			bnd := binding.Stub(model.Type, b.dict.CanonicalName(parent, simple))
			return b.dict.EnsureType(bnd, simple, parent).ID
		}
	}
	id := b.r.ResolveOrCreate(t.Name.Text, false, true)
	if !b.kind(id).IsType() {
		return model.NoEntity
	}
	return id
}

// typeOf returns the class-like type of the value id holds: the declared type
// of a variable, the return type of a function, the class of a constructor.
// Aliases are followed.
func (b *Builder) typeOf(id model.EntityID) model.EntityID {
	e := b.model().Entity(id)
	if e == nil {
		return model.NoEntity
	}
	var t model.EntityID
	switch {
	case e.IsConstructor():
		t = e.Owner
	case e.Kind.IsStructural(), e.Kind.IsBehavioural():
		t = e.DeclaredType
	case e.Kind.IsType():
		t = id
	default:
		return model.NoEntity
	}
	for i := 0; i < 8; i++ {
		te := b.model().Entity(t)
		if te == nil || te.Kind != model.TypeAlias || te.AliasedType == model.NoEntity {
			break
		}
		t = te.AliasedType
	}
	switch b.kind(t) {
	case model.Class, model.ParameterizableClass, model.Type:
		return t
	}
	return model.NoEntity
}

// memberOf searches class and then its supertypes, breadth first, for a
// member named name whose kind satisfies want.
func (b *Builder) memberOf(name string, class model.EntityID, want func(model.Kind) bool) model.EntityID {
	seen := make(map[model.EntityID]bool)
	queue := []model.EntityID{class}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == model.NoEntity || seen[c] {
			continue
		}
		seen[c] = true
		if id := b.r.FindInLocals(name, c); id != model.NoEntity && want(b.kind(id)) {
			return id
		}
		queue = append(queue, b.dict.Superclasses(c)...)
	}
	return model.NoEntity
}

// holdsMembers reports whether members may be synthesized in k: classes and
// stub types of unknown nature.
func holdsMembers(k model.Kind) bool {
	return k.IsClass() || k == model.Type
}

// constructorOf returns the constructor of the class typ names taking nArgs
// arguments, or NoEntity when typ is not a class.
func (b *Builder) constructorOf(typ model.EntityID, nArgs int) model.EntityID {
	cls := b.typeOf(typ)
	if !holdsMembers(b.kind(cls)) {
		return model.NoEntity
	}
	return b.r.MakeConstructorStub(cls, nArgs)
}

// self records a read of the implicit variable "this" denotes.
func (b *Builder) self(pos ast.Pos) Value {
	owner := b.stack.TopBehavioural()
	cls := b.enclosingClass()
	if owner == model.NoEntity {
		owner = cls
	}
	if owner == model.NoEntity {
		return None
	}
	v := b.dict.EnsureImplicitVariable(dict.SelfName, owner)
	b.dict.SetDeclaredType(v.ID, cls)
	return valueOf(v.ID, b.Access(v.ID, false, pos))
}

// callee finds the behavioural, class or function-holding variable a called
// name denotes, trying the exact arity before the plain name.
func (b *Builder) callee(name *ast.Name, nArgs int) model.EntityID {
	if bnd := b.r.Lookup(name); bnd != nil {
		if id := b.dict.LookupBinding(bnd); id != model.NoEntity {
			return id
		}
		if bnd.Key.Kind.IsBehavioural() {
			return b.r.EnsureBehaviouralFromName(bnd, qname.Parse(name.Text).Unqualified(), nArgs)
		}
	}
	n := qname.Parse(name.Text)
	sig := resolve.StubSignature(n.Unqualified(), nArgs)
	switch {
	case n.IsFullyQualified():
		parent := b.r.ResolveOrCreate(n.Qualifiers().String(), true, false)
		if parent == model.NoEntity {
			return model.NoEntity
		}
		if id := b.r.FindInParent(sig, parent, false); id != model.NoEntity {
			return id
		}
		return b.memberOf(n.Unqualified(), parent, func(model.Kind) bool { return true })
	case n.IsAbsolute():
		if id := b.r.FindAtTopLevel(sig); id != model.NoEntity {
			return id
		}
		return b.r.FindAtTopLevel(n.Unqualified())
	default:
		if id := b.r.FindInParent(sig, b.stack.Top(), true); id != model.NoEntity {
			return id
		}
		if id := b.r.FindInParent(n.Unqualified(), b.stack.Top(), true); id != model.NoEntity {
			return id
		}
		if id := b.inherited(sig); id != model.NoEntity {
			return id
		}
		return b.inherited(n.Unqualified())
	}
}

// method finds the behavioural a member call name(...) on a receiver of type
// class denotes. A member variable holding a callable is returned as is; a
// stub method is created only when the class has neither.
func (b *Builder) method(name *ast.Name, nArgs int, class model.EntityID) model.EntityID {
	simple := qname.Parse(name.String()).Unqualified()
	sig := resolve.StubSignature(simple, nArgs)
	if class != model.NoEntity {
		if id := b.memberOf(sig, class, model.Kind.IsBehavioural); id != model.NoEntity {
			return id
		}
		if id := b.memberOf(simple, class, model.Kind.IsBehavioural); id != model.NoEntity {
			return id
		}
		if id := b.memberOf(simple, class, model.Kind.IsStructural); id != model.NoEntity {
			return id
		}
		return b.r.MakeStubBehavioural(simple, nArgs, class)
	}
	if bnd := b.r.Lookup(name); bnd != nil && bnd.IsMethod() {
		if id := b.dict.LookupBinding(bnd); id != model.NoEntity {
			return id
		}
		return b.r.EnsureBehaviouralFromName(bnd, simple, nArgs)
	}
	return b.r.MakeStubBehavioural(simple, nArgs, model.NoEntity)
}

// field finds the structural a member access name on a receiver of type
// class denotes, creating a stub attribute when the class has none.
func (b *Builder) field(name *ast.Name, class model.EntityID) model.EntityID {
	simple := qname.Parse(name.String()).Unqualified()
	if class != model.NoEntity {
		if id := b.memberOf(simple, class, func(k model.Kind) bool {
			return k.IsStructural() || k.IsBehavioural()
		}); id != model.NoEntity {
			return id
		}
		if holdsMembers(b.kind(class)) {
			bnd := binding.Stub(model.Attribute, b.dict.CanonicalName(class, simple))
			return b.dict.EnsureAttribute(bnd, simple, class).ID
		}
	}
	if bnd := b.r.Lookup(name); bnd != nil {
		if id := b.dict.LookupBinding(bnd); id != model.NoEntity && b.kind(id).IsStructural() {
			return id
		}
	}
	return model.NoEntity
}
