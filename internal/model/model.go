// Package model defines the fact model of a C++ codebase: entities for every
// program symbol and associations for every cross-reference between them.
//
// Entities and associations live in an arena owned by a Model and refer to one
// another through EntityID and AssocID handles. Owner links are back-references
// used for upward search; the Model is the ownership root.
package model

import "github.com/phobologic/cppfacts/internal/qname"

// EntityID is a handle on an entity of a Model.
type EntityID int32

// NoEntity is the absent entity.
const NoEntity EntityID = -1

// AssocID is a handle on an association of a Model.
type AssocID int32

// NoAssoc is the absent association.
const NoAssoc AssocID = -1

// Anchor locates an entity or association in a source file.
type Anchor struct {
	File  string
	Start int // byte offset
	End   int // byte offset, exclusive
	Line  int // 1-based
}

// Entity is a node of the fact model. Which fields are meaningful depends on
// Kind: Signature, MethodKind and the metrics apply to behaviourals,
// AliasedType to type aliases, DeclaredType to structurals (their type) and
// behaviourals (their return type).
type Entity struct {
	ID        EntityID
	Kind      Kind
	Name      string
	Signature string
	Stub      bool
	Owner     EntityID

	// Package is the directory package the entity was defined in.
	Package EntityID

	DeclaredType EntityID
	AliasedType  EntityID
	MethodKind   MethodKind
	Anchor       *Anchor

	Complexity int
	Statements int

	types        []EntityID
	behaviourals []EntityID
	attributes   []EntityID
	globals      []EntityID
	parameters   []EntityID
	locals       []EntityID
	scopes       []EntityID
}

// Types returns the nested types (classes, aliases) owned by e.
func (e *Entity) Types() []EntityID { return e.types }

// Behaviourals returns the functions and methods owned by e.
func (e *Entity) Behaviourals() []EntityID { return e.behaviourals }

// Attributes returns the attributes owned by e.
func (e *Entity) Attributes() []EntityID { return e.attributes }

// Globals returns the global variables owned by e.
func (e *Entity) Globals() []EntityID { return e.globals }

// Parameters returns the parameters of e in declaration order.
func (e *Entity) Parameters() []EntityID { return e.parameters }

// Locals returns the local and implicit variables owned by e.
func (e *Entity) Locals() []EntityID { return e.locals }

// Scopes returns the child namespaces or packages of e.
func (e *Entity) Scopes() []EntityID { return e.scopes }

// Children returns every entity owned by e.
func (e *Entity) Children() []EntityID {
	var out []EntityID
	for _, list := range [][]EntityID{e.types, e.behaviourals, e.attributes, e.globals, e.parameters, e.locals, e.scopes} {
		out = append(out, list...)
	}
	return out
}

// IsConstructor reports whether e is a method marked as a constructor.
func (e *Entity) IsConstructor() bool {
	return e.Kind == Method && e.MethodKind == Constructor
}

// IsDestructor reports whether e is a method marked as a destructor.
func (e *Entity) IsDestructor() bool {
	return e.Kind == Method && e.MethodKind == Destructor
}

// Association is an edge of the fact model. From is the accessor, sender,
// referer or subclass; To is the accessed variable, callee, referee or
// superclass. Previous links the edge to the one recorded just before it in the
// same chain of the same owner.
type Association struct {
	ID        AssocID
	Kind      AssocKind
	From      EntityID
	To        EntityID
	IsWrite   bool
	Signature string
	Arguments []AssocID
	Previous  AssocID
	Anchor    *Anchor
}

// Model is the arena holding every entity and association of one analysis.
type Model struct {
	entities []*Entity
	assocs   []*Association
}

// New returns an empty model.
func New() *Model {
	return &Model{}
}

// NewEntity allocates an entity with no owner.
func (m *Model) NewEntity(kind Kind, name string) *Entity {
	e := &Entity{
		ID:           EntityID(len(m.entities)),
		Kind:         kind,
		Name:         name,
		Owner:        NoEntity,
		Package:      NoEntity,
		DeclaredType: NoEntity,
		AliasedType:  NoEntity,
	}
	m.entities = append(m.entities, e)
	return e
}

// Entity returns the entity for id, or nil for NoEntity or an unknown handle.
func (m *Model) Entity(id EntityID) *Entity {
	if id < 0 || int(id) >= len(m.entities) {
		return nil
	}
	return m.entities[id]
}

// KindOf returns the kind of id, or KindUnknown when id is absent.
func (m *Model) KindOf(id EntityID) Kind {
	if e := m.Entity(id); e != nil {
		return e.Kind
	}
	return KindUnknown
}

// Entities returns every entity in creation order.
func (m *Model) Entities() []*Entity {
	out := make([]*Entity, len(m.entities))
	copy(out, m.entities)
	return out
}

// EntityCount returns the number of entities.
func (m *Model) EntityCount() int {
	return len(m.entities)
}

// SetOwner attaches child to owner and records it in the owner's child list
// matching the child's kind. An entity keeps the first owner it is given;
// later calls, calls naming an owner that cannot contain entities and calls
// that would make an entity its own ancestor are ignored. It reports whether
// child is owned by owner afterwards.
func (m *Model) SetOwner(child, owner EntityID) bool {
	c := m.Entity(child)
	o := m.Entity(owner)
	if c == nil || o == nil || !o.Kind.IsContainer() {
		return false
	}
	if c.Owner != NoEntity {
		return c.Owner == owner
	}
	for cur := owner; cur != NoEntity; cur = m.entities[cur].Owner {
		if cur == child {
			return false
		}
	}
	c.Owner = owner
	switch {
	case c.Kind.IsType():
		o.types = append(o.types, child)
	case c.Kind.IsBehavioural():
		o.behaviourals = append(o.behaviourals, child)
	case c.Kind == Attribute:
		o.attributes = append(o.attributes, child)
	case c.Kind == GlobalVariable:
		o.globals = append(o.globals, child)
	case c.Kind == Parameter:
		o.parameters = append(o.parameters, child)
	case c.Kind == LocalVariable, c.Kind == ImplicitVariable, c.Kind == UnknownVariable:
		o.locals = append(o.locals, child)
	case c.Kind.IsScoping():
		o.scopes = append(o.scopes, child)
	}
	return true
}

// FullName returns the canonical qualified name of id: the names of its
// ancestors and its own joined with "::". Behaviourals contribute their
// signature so that overloads stay apart.
func (m *Model) FullName(id EntityID) string {
	e := m.Entity(id)
	if e == nil {
		return ""
	}
	return qname.Join(m.FullName(e.Owner), e.segment())
}

func (e *Entity) segment() string {
	if e.Kind.IsBehavioural() && e.Signature != "" {
		return e.Signature
	}
	return e.Name
}

// NewAssociation allocates an association with no predecessor.
func (m *Model) NewAssociation(kind AssocKind, from, to EntityID) *Association {
	a := &Association{
		ID:       AssocID(len(m.assocs)),
		Kind:     kind,
		From:     from,
		To:       to,
		Previous: NoAssoc,
	}
	m.assocs = append(m.assocs, a)
	return a
}

// Association returns the association for id, or nil.
func (m *Model) Association(id AssocID) *Association {
	if id < 0 || int(id) >= len(m.assocs) {
		return nil
	}
	return m.assocs[id]
}

// Associations returns every association in creation order.
func (m *Model) Associations() []*Association {
	out := make([]*Association, len(m.assocs))
	copy(out, m.assocs)
	return out
}

// AssociationsFrom returns the associations of the given kind whose From is id,
// in creation order.
func (m *Model) AssociationsFrom(id EntityID, kind AssocKind) []*Association {
	var out []*Association
	for _, a := range m.assocs {
		if a.From == id && a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// AssociationsTo returns the associations of the given kind whose To is id, in
// creation order.
func (m *Model) AssociationsTo(id EntityID, kind AssocKind) []*Association {
	var out []*Association
	for _, a := range m.assocs {
		if a.To == id && a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Chain walks Previous links back from last and returns the chain in source
// order, oldest first.
func (m *Model) Chain(last AssocID) []AssocID {
	var rev []AssocID
	seen := make(map[AssocID]struct{})
	for id := last; id != NoAssoc; {
		if _, loop := seen[id]; loop {
			break
		}
		seen[id] = struct{}{}
		a := m.Association(id)
		if a == nil {
			break
		}
		rev = append(rev, id)
		id = a.Previous
	}
	out := make([]AssocID, len(rev))
	for i, id := range rev {
		out[len(rev)-1-i] = id
	}
	return out
}
