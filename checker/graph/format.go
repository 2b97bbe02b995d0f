package graph

import (
	"strings"
)

// String implements Type
func (i *Instance) String() string {
	return formatInstance(i, i.Fullname(), func(t Type) string { return t.String() })
}

// String implements Type
func (n *NoneType) String() string { return "None" }

// String implements Type
func (a *AnyType) String() string { return "Any" }

// String implements Type
func (v *TypeVarType) String() string { return v.Name }

// String implements Type
func (u *UnionType) String() string {
	return "Union[" + joinTypes(u.Items, func(t Type) string { return t.String() }) + "]"
}

// String implements Type
func (t *TypeType) String() string {
	return "Type[" + t.Item.String() + "]"
}

// String implements Type
func (c *CallableType) String() string {
	builder := &strings.Builder{}
	builder.WriteString("def (")
	seenStar := false
	for i, argType := range c.ArgTypes {
		if i > 0 {
			builder.WriteString(", ")
		}
		kind := c.ArgKinds[i]
		switch kind {
		case ArgStar:
			seenStar = true
			builder.WriteString("*")
		case ArgStar2:
			builder.WriteString("**")
		case ArgNamed, ArgNamedOpt:
			if !seenStar {
				seenStar = true
				builder.WriteString("*, ")
			}
		}
		if name := c.ArgNames[i]; name != "" {
			builder.WriteString(name)
			builder.WriteString(": ")
		}
		builder.WriteString(argType.String())
		if kind == ArgOpt || kind == ArgNamedOpt {
			builder.WriteString(" =")
		}
	}
	builder.WriteString(")")
	if _, ok := c.RetType.(*NoneType); !ok && c.RetType != nil {
		builder.WriteString(" -> ")
		builder.WriteString(c.RetType.String())
	}
	return builder.String()
}

// FormatShort formats a type the way diagnostics quote it: short class names,
// Optional[...] for unions with None
func FormatShort(t Type) string {
	switch actual := t.(type) {
	case *Instance:
		name := actual.Fullname()
		if idx := strings.LastIndex(name, "."); idx != -1 {
			name = name[idx+1:]
		}
		return formatInstance(actual, name, FormatShort)
	case *UnionType:
		if IsOptional(actual) {
			rest := RemoveNone(actual)
			if _, ok := rest.(*UnionType); ok {
				return "Union[" + joinTypes(actual.Items, FormatShort) + "]"
			}
			return "Optional[" + FormatShort(rest) + "]"
		}
		return "Union[" + joinTypes(actual.Items, FormatShort) + "]"
	case *TypeType:
		return "Type[" + FormatShort(actual.Item) + "]"
	case *CallableType:
		var args []string
		for i, arg := range actual.ArgTypes {
			if actual.ArgKinds[i].IsStar() {
				continue
			}
			args = append(args, FormatShort(arg))
		}
		ret := "None"
		if actual.RetType != nil {
			ret = FormatShort(actual.RetType)
		}
		return "Callable[[" + strings.Join(args, ", ") + "], " + ret + "]"
	case nil:
		return "<nil>"
	}
	return t.String()
}

func formatInstance(i *Instance, name string, format func(t Type) string) string {
	if len(i.Args) == 0 {
		return name
	}
	return name + "[" + joinTypes(i.Args, format) + "]"
}

func joinTypes(types []Type, format func(t Type) string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = format(t)
	}
	return strings.Join(parts, ", ")
}
