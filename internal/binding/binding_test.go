package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phobologic/cppfacts/internal/model"
)

func TestStubKeysCompareByContent(t *testing.T) {
	t.Parallel()

	a := Stub(model.Class, "ns::A")
	b := Stub(model.Class, "ns::A")
	assert.NotSame(t, a, b)
	assert.Equal(t, a.Key, b.Key)

	seen := map[Key]int{a.Key: 1}
	assert.Equal(t, 1, seen[b.Key])

	assert.NotEqual(t, Stub(model.Namespace, "ns::A").Key, a.Key)
	assert.Equal(t, Stub(model.ParameterizableClass, "ns::A").Key, a.Key)
	assert.Equal(t, Real(model.Class, "ns::A", RoleClass).Key, a.Key)
}

func TestConstructorHeuristic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		constructor bool
		destructor  bool
	}{
		{"Foo::Foo", true, false},
		{"Foo::Foo(_,_)", true, false},
		{"ns::Foo::Foo()", true, false},
		{"Box<T>::Box(_)", true, false},
		{"Foo::~Foo()", false, true},
		{"~Foo", false, true},
		{"Foo::bar()", false, false},
		{"Foo", false, false},
		{"Foo::Bar::Foo", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := Stub(model.Method, tt.name)
			assert.Equal(t, tt.constructor, b.IsConstructor())
			assert.Equal(t, tt.destructor, b.IsDestructor())
		})
	}
}

func TestRealBindingsUseRole(t *testing.T) {
	t.Parallel()

	ctor := Real(model.Method, "A::make()", RoleConstructor)
	assert.True(t, ctor.IsConstructor(), "role wins over name shape")
	assert.True(t, ctor.IsMethod())

	fn := Real(model.Function, "A::A()", RoleFunction)
	assert.False(t, fn.IsConstructor())
	assert.False(t, fn.IsMethod())

	var none *Binding
	assert.False(t, none.IsStub())
	assert.False(t, none.IsMethod())
}

func TestFingerprintIsStable(t *testing.T) {
	t.Parallel()

	k := NewKey(model.Function, "f()")
	assert.Equal(t, Fingerprint(k), Fingerprint(NewKey(model.Function, "f()")))
	assert.NotEqual(t, Fingerprint(k), Fingerprint(NewKey(model.Method, "f()")))
	assert.Len(t, FingerprintHex(k), 16)
}
