package graph

import "strings"

// SymbolKind represents the kind of a symbol table entry
type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolClass
	SymbolFunction
	SymbolModule
	SymbolTypeVar
	SymbolSpecialForm
)

// Symbol is a symbol table entry
type Symbol struct {
	Kind     SymbolKind
	Name     string
	Fullname string
	// Type is the declared or inferred type of a variable or function
	Type Type
	// Declared is set when Type comes from an annotation
	Declared bool
	// Decorators lists the decorator names of a function (classmethod, staticmethod, property)
	Decorators []string
	// Info is set for classes
	Info *TypeInfo
	// Func is set for functions and methods defined in source
	Func *FuncDef
	// Module is set for module references
	Module *Module
	// Owner is the class defining the member, nil for module-level symbols
	Owner *TypeInfo
	Node  Node
}

// SymbolTable maps names to symbols
type SymbolTable map[string]*Symbol

// TypeInfo describes a class
type TypeInfo struct {
	Name     string
	Fullname string
	Module   string
	Defn     *ClassDef
	Bases    []*Instance
	// MRO lists the class followed by its ancestors in method resolution order
	MRO      []*TypeInfo
	Names    SymbolTable
	TypeVars []string
	// Metadata is a per-class store owned by plugins, keyed by namespace
	Metadata map[string]map[string]interface{}

	baseNames map[string]bool
}

// NewTypeInfo creates a new TypeInfo
func NewTypeInfo(module, name string) *TypeInfo {
	fullname := name
	if module != "" {
		fullname = module + "." + name
	}
	return &TypeInfo{
		Name:     name,
		Fullname: fullname,
		Module:   module,
		Names:    SymbolTable{},
		Metadata: map[string]map[string]interface{}{},
	}
}

// SetMRO sets the method resolution order and indexes ancestor names
func (t *TypeInfo) SetMRO(mro []*TypeInfo) {
	t.MRO = mro
	t.baseNames = make(map[string]bool, len(mro))
	for _, info := range mro {
		t.baseNames[info.Fullname] = true
	}
}

// HasBase returns true if the class or one of its ancestors has the given full name
func (t *TypeInfo) HasBase(fullname string) bool {
	if t.baseNames == nil {
		return t.Fullname == fullname
	}
	return t.baseNames[fullname]
}

// Get looks up a member along the MRO
func (t *TypeInfo) Get(name string) *Symbol {
	for _, info := range t.mro() {
		if sym, ok := info.Names[name]; ok {
			return sym
		}
	}
	return nil
}

// GetMethod looks up a function member along the MRO
func (t *TypeInfo) GetMethod(name string) *Symbol {
	sym := t.Get(name)
	if sym == nil || sym.Kind != SymbolFunction {
		return nil
	}
	return sym
}

// MetadataFor returns (creating on demand) the plugin metadata namespace
func (t *TypeInfo) MetadataFor(namespace string) map[string]interface{} {
	if t.Metadata == nil {
		t.Metadata = map[string]map[string]interface{}{}
	}
	data, ok := t.Metadata[namespace]
	if !ok {
		data = map[string]interface{}{}
		t.Metadata[namespace] = data
	}
	return data
}

// IsSubclassOf returns true if other appears in the MRO
func (t *TypeInfo) IsSubclassOf(other *TypeInfo) bool {
	for _, info := range t.mro() {
		if info == other {
			return true
		}
	}
	return false
}

func (t *TypeInfo) mro() []*TypeInfo {
	if len(t.MRO) == 0 {
		return []*TypeInfo{t}
	}
	return t.MRO
}

// Modules maps module names to modules
type Modules map[string]*Module

// LookupFullyQualified resolves a dotted name: the longest module prefix is located
// first, the remainder is resolved through module and class symbol tables
func (m Modules) LookupFullyQualified(fullname string) *Symbol {
	parts := strings.Split(fullname, ".")
	for i := len(parts) - 1; i >= 1; i-- {
		module, ok := m[strings.Join(parts[:i], ".")]
		if !ok {
			continue
		}
		sym, ok := module.Names[parts[i]]
		if !ok {
			return nil
		}
		for _, name := range parts[i+1:] {
			if sym.Info == nil {
				return nil
			}
			if sym, ok = sym.Info.Names[name]; !ok {
				return nil
			}
		}
		return sym
	}
	return nil
}

// LookupTypeInfo resolves a class by its full name
func (m Modules) LookupTypeInfo(fullname string) *TypeInfo {
	sym := m.LookupFullyQualified(fullname)
	if sym == nil {
		return nil
	}
	return sym.Info
}
