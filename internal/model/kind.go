package model

// Kind is the closed set of entity kinds.
type Kind uint8

const (
	KindUnknown Kind = iota
	Package
	Namespace
	Class
	ParameterizableClass
	Type
	PrimitiveType
	TypeAlias
	Function
	Method
	Attribute
	Parameter
	LocalVariable
	GlobalVariable
	ImplicitVariable
	UnknownVariable
)

var kindNames = [...]string{
	KindUnknown:          "unknown",
	Package:              "package",
	Namespace:            "namespace",
	Class:                "class",
	ParameterizableClass: "parameterizable-class",
	Type:                 "type",
	PrimitiveType:        "primitive-type",
	TypeAlias:            "type-alias",
	Function:             "function",
	Method:               "method",
	Attribute:            "attribute",
	Parameter:            "parameter",
	LocalVariable:        "local-variable",
	GlobalVariable:       "global-variable",
	ImplicitVariable:     "implicit-variable",
	UnknownVariable:      "unknown-variable",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsClass reports whether k is a class or a class template.
func (k Kind) IsClass() bool {
	return k == Class || k == ParameterizableClass
}

// IsType reports whether k denotes a type.
func (k Kind) IsType() bool {
	switch k {
	case Class, ParameterizableClass, Type, PrimitiveType, TypeAlias:
		return true
	}
	return false
}

// IsScoping reports whether k owns child scopes and global variables.
func (k Kind) IsScoping() bool {
	return k == Namespace || k == Package
}

// IsBehavioural reports whether k is a function or method.
func (k Kind) IsBehavioural() bool {
	return k == Function || k == Method
}

// IsStructural reports whether k holds a value.
func (k Kind) IsStructural() bool {
	switch k {
	case Attribute, Parameter, LocalVariable, GlobalVariable, ImplicitVariable, UnknownVariable:
		return true
	}
	return false
}

// IsContainer reports whether k can own other entities.
func (k Kind) IsContainer() bool {
	return k.IsScoping() || k.IsType() || k.IsBehavioural()
}

// MethodKind marks special methods.
type MethodKind uint8

const (
	Ordinary MethodKind = iota
	Constructor
	Destructor
)

func (k MethodKind) String() string {
	switch k {
	case Constructor:
		return "constructor"
	case Destructor:
		return "destructor"
	}
	return ""
}

// AssocKind is the closed set of association kinds.
type AssocKind uint8

const (
	Access AssocKind = iota
	Invocation
	DereferencedInvocation
	BehaviouralReference
	Inheritance
)

func (k AssocKind) String() string {
	switch k {
	case Access:
		return "access"
	case Invocation:
		return "invocation"
	case DereferencedInvocation:
		return "dereferenced-invocation"
	case BehaviouralReference:
		return "behavioural-reference"
	case Inheritance:
		return "inheritance"
	}
	return "invalid"
}

// IsInvocation reports whether k belongs to the invocation chain.
func (k AssocKind) IsInvocation() bool {
	return k == Invocation || k == DereferencedInvocation
}
