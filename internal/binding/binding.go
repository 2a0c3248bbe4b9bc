// Package binding defines the identities under which the dictionary stores
// entities: real bindings supplied by the oracle and synthesized stub
// bindings for names the oracle could not resolve.
package binding

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/phobologic/cppfacts/internal/model"
	"github.com/phobologic/cppfacts/internal/qname"
)

// Key is the comparable identity of an entity: its kind and canonical
// qualified name. Real and stub bindings of the same symbol share a key, which
// is what lets a placeholder reconcile with its definition.
type Key struct {
	Kind model.Kind
	Name string
}

// NewKey builds a key, folding class templates into the class kind so a use
// and a template definition agree.
func NewKey(kind model.Kind, canonical string) Key {
	if kind == model.ParameterizableClass {
		kind = model.Class
	}
	return Key{Kind: kind, Name: canonical}
}

func (k Key) String() string {
	return k.Kind.String() + ":" + k.Name
}

// Fingerprint returns a stable 64-bit hash of k.
func Fingerprint(k Key) uint64 {
	return xxh3.HashString(k.String())
}

// FingerprintHex returns Fingerprint as a fixed-width hex string.
func FingerprintHex(k Key) string {
	return fmt.Sprintf("%016x", Fingerprint(k))
}

// Role is the oracle's classification of a binding.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleNamespace
	RoleClass
	RoleFunction
	RoleMethod
	RoleConstructor
	RoleDestructor
	RoleField
	RoleVariable
	RoleParameter
	RoleTypeAlias
)

// Binding is a name's identity together with what the oracle knows about it.
// Owner is the owning class of a member function; it may be nil even for
// members when the oracle lost track of it.
type Binding struct {
	Key   Key
	Role  Role
	Owner *Binding
	Stub  bool
}

// Stub returns a synthesized binding for kind and canonical name.
func Stub(kind model.Kind, canonical string) *Binding {
	return &Binding{Key: NewKey(kind, canonical), Stub: true}
}

// Real returns an oracle binding.
func Real(kind model.Kind, canonical string, role Role) *Binding {
	return &Binding{Key: NewKey(kind, canonical), Role: role}
}

// IsStub reports whether b was synthesized.
func (b *Binding) IsStub() bool {
	return b != nil && b.Stub
}

// IsMethod reports whether b denotes a member function.
func (b *Binding) IsMethod() bool {
	if b == nil {
		return false
	}
	if b.Stub {
		return b.Key.Kind == model.Method
	}
	switch b.Role {
	case RoleMethod, RoleConstructor, RoleDestructor:
		return true
	}
	return false
}

// IsConstructor reports whether b denotes a constructor. For stubs the name
// decides: Foo::Foo(...) is a constructor.
func (b *Binding) IsConstructor() bool {
	if b == nil {
		return false
	}
	if b.Stub {
		return IsConstructorName(b.Key.Name)
	}
	return b.Role == RoleConstructor
}

// IsDestructor reports whether b denotes a destructor. For stubs the name
// decides: a simple name starting with '~'.
func (b *Binding) IsDestructor() bool {
	if b == nil {
		return false
	}
	if b.Stub {
		return IsDestructorName(b.Key.Name)
	}
	return b.Role == RoleDestructor
}

// IsConstructorName reports whether the last two segments of full, parameter
// list and template arguments aside, are equal.
func IsConstructorName(full string) bool {
	segs := qname.Parse(full).Segments()
	if len(segs) < 2 {
		return false
	}
	last := stripTemplateArgs(qname.StripParams(segs[len(segs)-1]))
	prev := stripTemplateArgs(segs[len(segs)-2])
	return last != "" && last == prev
}

// IsDestructorName reports whether the simple name of full starts with '~'.
func IsDestructorName(full string) bool {
	return strings.HasPrefix(qname.Parse(full).Unqualified(), "~")
}

func stripTemplateArgs(s string) string {
	if i := strings.IndexByte(s, '<'); i > 0 {
		return s[:i]
	}
	return s
}
