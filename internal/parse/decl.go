package parse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/cppfacts/internal/ast"
	"github.com/phobologic/cppfacts/internal/lang"
	"github.com/phobologic/cppfacts/internal/qname"
)

// decls converts the declarations directly under n.
func (c *converter) decls(n *sitter.Node, scope []string) []*ast.Node {
	var out []*ast.Node
	for _, ch := range named(n) {
		out = append(out, c.decl(ch, scope, false)...)
	}
	return out
}

// decl converts one declaration-level node. A single node may yield several
// ast nodes, as "struct S {...} s;" defines a class and declares a variable.
func (c *converter) decl(n *sitter.Node, scope []string, template bool) []*ast.Node {
	switch n.Type() {
	case "namespace_definition":
		return []*ast.Node{c.namespace(n, scope)}

	case "class_specifier", "struct_specifier", "union_specifier":
		if cls := c.class(n, scope, template); cls != nil {
			return []*ast.Node{cls}
		}

	case "template_declaration":
		var out []*ast.Node
		for _, ch := range named(n) {
			if ch.Type() == "template_parameter_list" {
				continue
			}
			out = append(out, c.decl(ch, scope, true)...)
		}
		return out

	case "function_definition":
		if fn := c.function(n, scope, template); fn != nil {
			return []*ast.Node{fn}
		}

	case "declaration", "field_declaration":
		return c.declaration(n, scope, false)

	case "type_definition":
		return c.declaration(n, scope, true)

	case "alias_declaration":
		name := c.name(n.ChildByFieldName("name"), scope)
		if name == nil {
			return nil
		}
		return []*ast.Node{{
			Kind: ast.AliasDeclaration,
			Pos:  c.pos(n),
			Name: name,
			Type: c.typeRef(n.ChildByFieldName("type"), scope),
		}}

	case "linkage_specification":
		body := n.ChildByFieldName("body")
		if body == nil {
			return nil
		}
		if body.Type() == "declaration_list" {
			return c.decls(body, scope)
		}
		return c.decl(body, scope, template)

	case "declaration_list", "field_declaration_list":
		return c.decls(n, scope)

	case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
		var out []*ast.Node
		for i := 0; i < int(n.ChildCount()); i++ {
			ch := n.Child(i)
			if !ch.IsNamed() {
				continue
			}
			switch n.FieldNameForChild(i) {
			case "condition", "name":
				continue
			}
			out = append(out, c.decl(ch, scope, false)...)
		}
		return out
	}
	return nil
}

func (c *converter) namespace(n *sitter.Node, scope []string) *ast.Node {
	ns := &ast.Node{Kind: ast.NamespaceDef, Pos: c.pos(n)}
	inner := scope
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		ns.Name = c.name(nameNode, scope)
		if ns.Name != nil {
			inner = extend(scope, qname.Parse(ns.Name.Text).Segments()...)
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		ns.Children = c.decls(body, inner)
	}
	return ns
}

// class converts a class, struct or union definition. Forward declarations,
// elaborated type uses and anonymous types yield nil.
func (c *converter) class(n *sitter.Node, scope []string, template bool) *ast.Node {
	body := n.ChildByFieldName("body")
	name := c.name(n.ChildByFieldName("name"), scope)
	if body == nil || name == nil {
		return nil
	}
	cls := &ast.Node{Kind: ast.CompositeType, Pos: c.pos(n), Name: name}
	if template {
		cls.Flags |= ast.Template
	}
	for _, ch := range named(n) {
		if ch.Type() != "base_class_clause" {
			continue
		}
		for _, base := range named(ch) {
			switch base.Type() {
			case "type_identifier", "qualified_identifier", "template_type":
				if b := c.name(base, scope); b != nil {
					cls.Bases = append(cls.Bases, b)
				}
			}
		}
	}
	inner := extend(scope, qname.Parse(name.Text).Segments()...)
	cls.Children = c.decls(body, inner)
	return cls
}

// declaration converts a simple declaration, a member declaration or a
// typedef. An inline class definition in the type position is emitted first.
func (c *converter) declaration(n *sitter.Node, scope []string, typedef bool) []*ast.Node {
	var out []*ast.Node
	typeNode := n.ChildByFieldName("type")
	if typeNode != nil {
		switch typeNode.Type() {
		case "class_specifier", "struct_specifier", "union_specifier":
			if cls := c.class(typeNode, scope, false); cls != nil {
				out = append(out, cls)
			}
		}
	}

	d := &ast.Node{Kind: ast.SimpleDeclaration, Pos: c.pos(n), Type: c.typeRef(typeNode, scope)}
	if typedef {
		d.Flags |= ast.Typedef
	}
	if hasChildType(n, "storage_class_specifier", "static", c.src) {
		d.Flags |= ast.Static
	}
	for _, dn := range fieldChildren(n, "declarator") {
		if decl := c.declarator(dn, scope); decl != nil {
			d.Declarators = append(d.Declarators, decl)
		}
	}
	if def := n.ChildByFieldName("default_value"); def != nil && len(d.Declarators) == 1 && d.Declarators[0].Kind == ast.Declarator {
		d.Declarators[0].Init = c.initializer(def, scope)
	}
	if len(d.Declarators) > 0 {
		out = append(out, d)
	}
	return out
}

// declarator converts one declarator: a function declarator or a variable
// declarator with its initializer. Pointers, references and arrays are
// looked through.
func (c *converter) declarator(n *sitter.Node, scope []string) *ast.Node {
	var init *ast.Node
	for n != nil {
		switch n.Type() {
		case "init_declarator":
			if v := n.ChildByFieldName("value"); v != nil {
				init = c.initializer(v, scope)
			}
			n = n.ChildByFieldName("declarator")
		case "function_declarator":
			if isFunctionPointer(n) {
				n = innerDeclarator(n.ChildByFieldName("declarator"))
				continue
			}
			return c.functionDeclarator(n, scope)
		case "pointer_declarator", "reference_declarator", "array_declarator",
			"parenthesized_declarator", "attributed_declarator", "bitfield_clause":
			n = innerDeclarator(n)
		case "identifier", "field_identifier", "qualified_identifier", "type_identifier",
			"destructor_name", "operator_name", "template_function":
			name := c.name(n, scope)
			if name == nil {
				return nil
			}
			return &ast.Node{Kind: ast.Declarator, Pos: c.pos(n), Name: name, Init: init}
		default:
			return nil
		}
	}
	return nil
}

// innerDeclarator returns the declarator wrapped by a pointer, reference,
// array or parenthesized declarator.
func innerDeclarator(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if d := n.ChildByFieldName("declarator"); d != nil {
		return d
	}
	for _, ch := range named(n) {
		switch ch.Type() {
		case "type_qualifier", "ms_pointer_modifier", "attribute_specifier":
			continue
		}
		return ch
	}
	return nil
}

// isFunctionPointer reports whether a function declarator declares a pointer
// to function, as in "void (*fp)(int)".
func isFunctionPointer(n *sitter.Node) bool {
	d := n.ChildByFieldName("declarator")
	for d != nil && d.Type() == "parenthesized_declarator" {
		d = innerDeclarator(d)
	}
	return d != nil && (d.Type() == "pointer_declarator" || d.Type() == "reference_declarator")
}

// functionDeclarator converts a function declarator. Its name lives in scope;
// its parameters live in the function's own scope.
func (c *converter) functionDeclarator(n *sitter.Node, scope []string) *ast.Node {
	name := c.name(n.ChildByFieldName("declarator"), scope)
	if name == nil {
		return nil
	}
	params := c.paramNodes(n.ChildByFieldName("parameters"))
	body := bodyScope(scope, name.Text, len(params))

	fd := &ast.Node{Kind: ast.FunctionDeclarator, Pos: c.pos(n), Name: name}
	for _, p := range params {
		fd.Params = append(fd.Params, c.parameter(p, body))
	}
	return fd
}

// bodyScope returns the scope path of the body of the function named name,
// declared in scope with n parameters: its qualifiers become part of the
// path, then its signature.
func bodyScope(scope []string, name string, n int) []string {
	qn := qname.Parse(name)
	var segs []string
	if qn.IsFullyQualified() {
		segs = append(segs, qn.Qualifiers().Segments()...)
	}
	segs = append(segs, qname.Signature(qn.Unqualified(), n))
	return extend(scope, segs...)
}

// paramNodes returns the parameter declarations of a parameter list. "(void)"
// has none.
func (c *converter) paramNodes(list *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, ch := range named(list) {
		switch ch.Type() {
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			out = append(out, ch)
		}
	}
	if len(out) == 1 && out[0].ChildByFieldName("declarator") == nil {
		if t := out[0].ChildByFieldName("type"); t != nil && c.text(t) == "void" {
			return nil
		}
	}
	return out
}

func (c *converter) parameter(n *sitter.Node, scope []string) *ast.Node {
	p := &ast.Node{Kind: ast.ParameterDeclaration, Pos: c.pos(n), Type: c.typeRef(n.ChildByFieldName("type"), scope)}
	d := n.ChildByFieldName("declarator")
	for d != nil {
		switch d.Type() {
		case "identifier":
			p.Name = c.name(d, scope)
			return p
		case "function_declarator":
			d = innerDeclarator(d.ChildByFieldName("declarator"))
		default:
			d = innerDeclarator(d)
		}
	}
	return p
}

// function converts a function definition.
func (c *converter) function(n *sitter.Node, scope []string, template bool) *ast.Node {
	dn := n.ChildByFieldName("declarator")
	for dn != nil && dn.Type() != "function_declarator" {
		switch dn.Type() {
		case "pointer_declarator", "reference_declarator", "parenthesized_declarator", "attributed_declarator":
			dn = innerDeclarator(dn)
		default:
			dn = nil
		}
	}
	if dn == nil {
		return nil
	}
	decl := c.functionDeclarator(dn, scope)
	if decl == nil {
		return nil
	}
	body := bodyScope(scope, decl.Name.Text, len(decl.Params))

	fn := &ast.Node{
		Kind:       ast.FunctionDefinition,
		Pos:        c.pos(n),
		Type:       c.typeRef(n.ChildByFieldName("type"), scope),
		Declarator: decl,
	}
	if template {
		fn.Flags |= ast.Template
	}
	for _, ch := range named(n) {
		if ch.Type() == "field_initializer_list" {
			fn.Inits = c.memberInitializers(ch, body)
		}
	}
	if b := n.ChildByFieldName("body"); b != nil && b.Type() == "compound_statement" {
		fn.Body = c.block(b, body)
	} else {
		fn.Body = &ast.Node{Kind: ast.Block, Pos: c.pos(n)}
	}
	return fn
}

func (c *converter) memberInitializers(list *sitter.Node, scope []string) []*ast.Node {
	var out []*ast.Node
	for _, fi := range named(list) {
		if fi.Type() != "field_initializer" {
			continue
		}
		init := &ast.Node{Kind: ast.ConstructorChainInitializer, Pos: c.pos(fi)}
		for _, ch := range named(fi) {
			switch ch.Type() {
			case "argument_list", "initializer_list":
				init.Args = c.exprs(ch, scope)
			default:
				if init.Name == nil {
					init.Name = c.name(ch, scope)
				}
			}
		}
		if init.Name != nil {
			out = append(out, init)
		}
	}
	return out
}

// typeRef converts the type named by a declaration specifier. Types without a
// usable name (auto, decltype, anonymous types) give nil.
func (c *converter) typeRef(n *sitter.Node, scope []string) *ast.TypeRef {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "primitive_type", "sized_type_specifier":
		return ast.Primitive(lang.CollapseWhitespace(c.text(n)))
	case "type_identifier", "qualified_identifier", "template_type":
		if name := c.name(n, scope); name != nil {
			return ast.Named(name)
		}
	case "dependent_type":
		if ch := named(n); len(ch) > 0 {
			return c.typeRef(ch[0], scope)
		}
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		if name := c.name(n.ChildByFieldName("name"), scope); name != nil {
			return ast.Named(name)
		}
	case "type_descriptor":
		return c.typeRef(n.ChildByFieldName("type"), scope)
	}
	return nil
}
