// Package qname splits C++ qualified names such as a::b::c into a qualifier
// chain and a simple name.
package qname

import "strings"

// Separator separates the segments of a qualified C++ name.
const Separator = "::"

// Name is a parsed qualified name. The zero value is the absent name.
type Name struct {
	parts    []string
	absolute bool
}

// Parse splits s on top-level separators. Separators nested in parentheses or
// template argument lists do not split, so "A::f(std::string)" has two
// segments. A leading separator marks the name as root anchored.
func Parse(s string) Name {
	s = strings.TrimSpace(s)
	if s == "" {
		return Name{}
	}

	var n Name
	if strings.HasPrefix(s, Separator) {
		n.absolute = true
		s = s[len(Separator):]
	}

	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '<':
			if !isOperatorSegment(s[start:i]) {
				depth++
			}
		case '>':
			if depth > 0 && !isOperatorSegment(s[start:i]) {
				depth--
			}
		case ':':
			if depth == 0 && i+1 < len(s) && s[i+1] == ':' {
				n.parts = append(n.parts, strings.TrimSpace(s[start:i]))
				i++
				start = i + 1
			}
		}
	}
	n.parts = append(n.parts, strings.TrimSpace(s[start:]))
	return n
}

// isOperatorSegment reports whether seg names an operator function, in which
// case angle brackets are part of the operator token.
func isOperatorSegment(seg string) bool {
	seg = strings.TrimSpace(seg)
	return strings.HasPrefix(seg, "operator") && !strings.Contains(seg, "(")
}

// IsEmpty reports whether n is the absent name.
func (n Name) IsEmpty() bool {
	return len(n.parts) == 0 || (len(n.parts) == 1 && n.parts[0] == "")
}

// IsFullyQualified reports whether n has at least one qualifier.
func (n Name) IsFullyQualified() bool {
	return len(n.parts) > 1
}

// IsAbsolute reports whether n starts with the root separator.
func (n Name) IsAbsolute() bool {
	return n.absolute
}

// Unqualified returns the last segment.
func (n Name) Unqualified() string {
	if len(n.parts) == 0 {
		return ""
	}
	return n.parts[len(n.parts)-1]
}

// Qualifiers returns every segment but the last as a name of its own. The
// result keeps the root anchor. An unqualified name has empty qualifiers.
func (n Name) Qualifiers() Name {
	if len(n.parts) < 2 {
		return Name{}
	}
	return Name{parts: n.parts[:len(n.parts)-1], absolute: n.absolute}
}

// Segments returns a copy of the segments.
func (n Name) Segments() []string {
	out := make([]string, len(n.parts))
	copy(out, n.parts)
	return out
}

// String joins the segments back together.
func (n Name) String() string {
	s := strings.Join(n.parts, Separator)
	if n.absolute {
		return Separator + s
	}
	return s
}

// Join concatenates a prefix and a name with the separator. An empty prefix
// yields name unchanged.
func Join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + Separator + name
}

// SignatureFromFullname returns the last segment of a behavioural's full name,
// parameter list included: "ns::A::f(_,_)" gives "f(_,_)".
func SignatureFromFullname(full string) string {
	return Parse(full).Unqualified()
}

// ParentOfFullname returns the qualifier part of a full name as a string, or ""
// when the name is unqualified.
func ParentOfFullname(full string) string {
	q := Parse(full).Qualifiers()
	if q.IsEmpty() {
		return ""
	}
	return q.String()
}

// StripParams removes a trailing parameter list: "f(_)" gives "f".
func StripParams(name string) string {
	if i := strings.IndexByte(name, '('); i > 0 {
		return name[:i]
	}
	return name
}

// HasParams reports whether name carries a parameter list.
func HasParams(name string) bool {
	return strings.IndexByte(name, '(') > 0
}

// Signature returns the normalized signature of a behavioural: its simple name
// followed by one placeholder per parameter, as in "f(_,_)".
func Signature(name string, arity int) string {
	name = StripParams(Parse(name).Unqualified())
	if arity < 0 {
		arity = 0
	}
	return name + "(" + strings.TrimSuffix(strings.Repeat("_,", arity), ",") + ")"
}
