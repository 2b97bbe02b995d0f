package graph

// Type represents a type judgment made by the checker
type Type interface {
	// String returns the fully qualified representation, e.g. Union[builtins.float, None]
	String() string
	// Serialize returns the persisted form of the type
	Serialize() Serialized
	accept(v visitor) error
}

// ArgKind describes how a formal parameter accepts actual arguments
type ArgKind int

const (
	ArgPos      ArgKind = iota // positional, required
	ArgOpt                     // positional, optional
	ArgStar                    // *args
	ArgNamed                   // keyword-only, required
	ArgStar2                   // **kwargs
	ArgNamedOpt                // keyword-only, optional
)

// IsRequired returns true if an actual argument must be supplied
func (k ArgKind) IsRequired() bool {
	return k == ArgPos || k == ArgNamed
}

// IsPositional returns true if the parameter can be filled by position
func (k ArgKind) IsPositional() bool {
	return k == ArgPos || k == ArgOpt
}

// IsNamed returns true if the parameter is keyword-only
func (k ArgKind) IsNamed() bool {
	return k == ArgNamed || k == ArgNamedOpt
}

// IsStar returns true for *args and **kwargs
func (k ArgKind) IsStar() bool {
	return k == ArgStar || k == ArgStar2
}

// Instance is an instance of a class, optionally parameterized
type Instance struct {
	Type *TypeInfo
	Args []Type
	// Ref holds the fully qualified name of an unresolved (deserialized) instance
	Ref string
}

// NewInstance creates a new instance type
func NewInstance(info *TypeInfo, args ...Type) *Instance {
	return &Instance{Type: info, Args: args}
}

// Fullname returns the class name the instance refers to
func (i *Instance) Fullname() string {
	if i.Type != nil {
		return i.Type.Fullname
	}
	return i.Ref
}

// Resolved returns true when the instance points to a live TypeInfo
func (i *Instance) Resolved() bool {
	return i.Type != nil
}

// NoneType is the type of None
type NoneType struct{}

// AnyType is the dynamic type
type AnyType struct{}

// UnionType is a sum of types
type UnionType struct {
	Items []Type
}

// TypeVarType is a reference to a class type variable
type TypeVarType struct {
	Name string
	ID   int
}

// TypeType is the type of a class object, e.g. the type of MyModel in MyModel.attr
type TypeType struct {
	Item *Instance
}

// CallableType is a function signature
type CallableType struct {
	ArgTypes []Type
	ArgKinds []ArgKind
	ArgNames []string
	RetType  Type
	Name     string
	// Definition is the fully qualified name of the defining function, if any
	Definition string
}

// ArgIndex returns the index of the named parameter or -1
func (c *CallableType) ArgIndex(name string) int {
	for i, argName := range c.ArgNames {
		if argName == name && name != "" {
			return i
		}
	}
	return -1
}

// KindIndex returns the index of the first parameter of the given kind or -1
func (c *CallableType) KindIndex(kind ArgKind) int {
	for i, argKind := range c.ArgKinds {
		if argKind == kind {
			return i
		}
	}
	return -1
}

// Copy returns a shallow copy with independent argument slices
func (c *CallableType) Copy() *CallableType {
	return &CallableType{
		ArgTypes:   append([]Type{}, c.ArgTypes...),
		ArgKinds:   append([]ArgKind{}, c.ArgKinds...),
		ArgNames:   append([]string{}, c.ArgNames...),
		RetType:    c.RetType,
		Name:       c.Name,
		Definition: c.Definition,
	}
}

// DropFirst returns a copy without the first parameter (binds self)
func (c *CallableType) DropFirst() *CallableType {
	ret := c.Copy()
	if len(ret.ArgTypes) > 0 {
		ret.ArgTypes = ret.ArgTypes[1:]
		ret.ArgKinds = ret.ArgKinds[1:]
		ret.ArgNames = ret.ArgNames[1:]
	}
	return ret
}

// MakeOptional returns Union[t, None] unless t already accepts None
func MakeOptional(t Type) Type {
	switch actual := t.(type) {
	case *NoneType, *AnyType:
		return t
	case *UnionType:
		for _, item := range actual.Items {
			if _, ok := item.(*NoneType); ok {
				return t
			}
		}
		items := append(append([]Type{}, actual.Items...), &NoneType{})
		return &UnionType{Items: items}
	}
	return &UnionType{Items: []Type{t, &NoneType{}}}
}

// MakeUnion builds a simplified union: nested unions are flattened, duplicates dropped
func MakeUnion(items ...Type) Type {
	var flat []Type
	for _, item := range items {
		if u, ok := item.(*UnionType); ok {
			flat = append(flat, u.Items...)
			continue
		}
		flat = append(flat, item)
	}
	var result []Type
outer:
	for _, item := range flat {
		if _, ok := item.(*AnyType); ok {
			return item
		}
		for _, existing := range result {
			if IsSame(existing, item) {
				continue outer
			}
		}
		result = append(result, item)
	}
	switch len(result) {
	case 0:
		return &NoneType{}
	case 1:
		return result[0]
	}
	return &UnionType{Items: result}
}

// IsOptional returns true if t is a union containing None
func IsOptional(t Type) bool {
	u, ok := t.(*UnionType)
	if !ok {
		return false
	}
	for _, item := range u.Items {
		if _, ok := item.(*NoneType); ok {
			return true
		}
	}
	return false
}

// RemoveNone returns t without its None items
func RemoveNone(t Type) Type {
	u, ok := t.(*UnionType)
	if !ok {
		return t
	}
	var items []Type
	for _, item := range u.Items {
		if _, ok := item.(*NoneType); ok {
			continue
		}
		items = append(items, item)
	}
	return MakeUnion(items...)
}

// ExpandTypeVars substitutes type variables of info with the instance arguments
func ExpandTypeVars(t Type, instance *Instance) Type {
	if instance == nil || instance.Type == nil || len(instance.Type.TypeVars) == 0 {
		return t
	}
	mapping := map[string]Type{}
	for i, name := range instance.Type.TypeVars {
		if i < len(instance.Args) {
			mapping[name] = instance.Args[i]
		} else {
			mapping[name] = &AnyType{}
		}
	}
	return substitute(t, mapping)
}

func substitute(t Type, mapping map[string]Type) Type {
	switch actual := t.(type) {
	case *TypeVarType:
		if replacement, ok := mapping[actual.Name]; ok {
			return replacement
		}
		return t
	case *Instance:
		if len(actual.Args) == 0 {
			return t
		}
		args := make([]Type, len(actual.Args))
		for i, arg := range actual.Args {
			args[i] = substitute(arg, mapping)
		}
		return &Instance{Type: actual.Type, Args: args, Ref: actual.Ref}
	case *UnionType:
		items := make([]Type, len(actual.Items))
		for i, item := range actual.Items {
			items[i] = substitute(item, mapping)
		}
		return MakeUnion(items...)
	case *CallableType:
		ret := actual.Copy()
		for i, arg := range ret.ArgTypes {
			ret.ArgTypes[i] = substitute(arg, mapping)
		}
		ret.RetType = substitute(ret.RetType, mapping)
		return ret
	case *TypeType:
		if item, ok := substitute(actual.Item, mapping).(*Instance); ok {
			return &TypeType{Item: item}
		}
	}
	return t
}

// MapInstanceToSupertype maps an instance to the given ancestor, carrying type arguments
func MapInstanceToSupertype(instance *Instance, super *TypeInfo) *Instance {
	if instance.Type == nil || super == nil {
		return nil
	}
	if instance.Type == super {
		return instance
	}
	for _, base := range instance.Type.Bases {
		expanded, ok := ExpandTypeVars(base, instance).(*Instance)
		if !ok {
			continue
		}
		if mapped := MapInstanceToSupertype(expanded, super); mapped != nil {
			return mapped
		}
	}
	return nil
}
