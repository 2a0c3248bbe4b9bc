package qname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	n := Parse("a::b::c")
	assert.True(t, n.IsFullyQualified())
	assert.False(t, n.IsAbsolute())
	assert.Equal(t, "c", n.Unqualified())
	assert.Equal(t, "a::b", n.Qualifiers().String())
	assert.Equal(t, "b", n.Qualifiers().Unqualified())
	assert.Equal(t, "a", n.Qualifiers().Qualifiers().String())
	assert.Equal(t, "a::b::c", n.String())
}

func TestParseUnqualified(t *testing.T) {
	t.Parallel()

	n := Parse("c")
	assert.False(t, n.IsFullyQualified())
	assert.True(t, n.Qualifiers().IsEmpty())
	assert.Equal(t, "", n.Qualifiers().String())
	assert.Equal(t, "c", n.Unqualified())
}

func TestParseAbsolute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in         string
		absolute   bool
		qualified  bool
		simple     string
		qualifiers string
	}{
		{"::x", true, false, "x", ""},
		{"::a::x", true, true, "x", "::a"},
		{"a::x", false, true, "x", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			n := Parse(tt.in)
			assert.Equal(t, tt.absolute, n.IsAbsolute())
			assert.Equal(t, tt.qualified, n.IsFullyQualified())
			assert.Equal(t, tt.simple, n.Unqualified())
			assert.Equal(t, tt.qualifiers, n.Qualifiers().String())
		})
	}
}

func TestParseNestedSeparators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		simple string
		parent string
	}{
		{"A::f(std::string, int)", "f(std::string, int)", "A"},
		{"std::map<std::string, int>::find", "find", "std::map<std::string, int>"},
		{"A::operator<(_)", "operator<(_)", "A"},
		{"A::operator<<", "operator<<", "A"},
		{"A::operator->", "operator->", "A"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			n := Parse(tt.in)
			assert.Equal(t, tt.simple, n.Unqualified())
			assert.Equal(t, tt.parent, n.Qualifiers().String())
		})
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	n := Parse("")
	assert.True(t, n.IsEmpty())
	assert.False(t, n.IsFullyQualified())
	assert.Equal(t, "", n.Unqualified())
	assert.True(t, Parse("   ").IsEmpty())
}

func TestFullnameHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "f(_,_)", SignatureFromFullname("ns::A::f(_,_)"))
	assert.Equal(t, "ns::A", ParentOfFullname("ns::A::f(_,_)"))
	assert.Equal(t, "", ParentOfFullname("f()"))
	assert.Equal(t, "f", StripParams("f(_)"))
	assert.True(t, HasParams("f()"))
	assert.False(t, HasParams("f"))
	assert.Equal(t, "a::b", Join("a", "b"))
	assert.Equal(t, "b", Join("", "b"))
}

func TestSignature(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "f()", Signature("f", 0))
	assert.Equal(t, "f(_,_)", Signature("ns::f", 2))
	assert.Equal(t, "operator==(_)", Signature("A::operator==", 1))
}
