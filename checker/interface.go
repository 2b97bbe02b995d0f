package checker

import (
	"github.com/cockroachdb/errors"
	"github.com/viant/attrcheck/checker/cache"
	"github.com/viant/attrcheck/checker/graph"
)

// exportInterface collects the inferred types and plugin metadata other modules can observe
func exportInterface(module *graph.Module) *cache.Interface {
	result := cache.NewInterface()
	for name, sym := range module.Names {
		if inferred(sym) && sym.Fullname == module.Name+"."+name {
			result.Variables[name] = sym.Type.Serialize()
		}
	}
	for _, info := range moduleClasses(module.Defs) {
		class := &cache.Class{Members: map[string]graph.Serialized{}}
		for name, sym := range info.Names {
			if inferred(sym) && sym.Owner == info {
				class.Members[name] = sym.Type.Serialize()
			}
		}
		for namespace, data := range info.Metadata {
			if len(data) == 0 {
				continue
			}
			if class.Metadata == nil {
				class.Metadata = map[string]map[string]interface{}{}
			}
			class.Metadata[namespace] = data
		}
		if len(class.Members) == 0 && len(class.Metadata) == 0 {
			continue
		}
		result.Classes[info.Fullname] = class
	}
	return result
}

func inferred(sym *graph.Symbol) bool {
	return sym.Kind == graph.SymbolVariable && !sym.Declared && sym.Type != nil
}

// moduleClasses returns the classes defined in a module, nested ones included
func moduleClasses(defs []graph.Statement) []*graph.TypeInfo {
	var result []*graph.TypeInfo
	for _, stmt := range defs {
		classDef, ok := stmt.(*graph.ClassDef)
		if !ok || classDef.Info == nil {
			continue
		}
		result = append(result, classDef.Info)
		result = append(result, moduleClasses(classDef.Defs)...)
	}
	return result
}

// restoreInterface applies a cached interface to a freshly analyzed module; nothing is
// applied unless every type resolves against the current modules
func restoreInterface(modules graph.Modules, module *graph.Module, iface *cache.Interface) error {
	type restored struct {
		sym *graph.Symbol
		typ graph.Type
	}
	var pending []restored
	fixer := graph.NewFixer(modules, false)
	resolve := func(sym *graph.Symbol, data graph.Serialized) error {
		if sym == nil || sym.Kind != graph.SymbolVariable {
			return errors.Newf("cached member no longer a variable")
		}
		typ, err := graph.DeserializeType(data)
		if err != nil {
			return err
		}
		if err = fixer.Fix(typ); err != nil {
			return err
		}
		pending = append(pending, restored{sym: sym, typ: typ})
		return nil
	}

	for name, data := range iface.Variables {
		if err := resolve(module.Names[name], data); err != nil {
			return errors.Wrapf(err, "variable %s", name)
		}
	}
	classes := map[string]*graph.TypeInfo{}
	for _, info := range moduleClasses(module.Defs) {
		classes[info.Fullname] = info
	}
	for fullname, class := range iface.Classes {
		info, ok := classes[fullname]
		if !ok {
			return errors.Newf("class %s is gone", fullname)
		}
		for name, data := range class.Members {
			if err := resolve(info.Names[name], data); err != nil {
				return errors.Wrapf(err, "member %s.%s", fullname, name)
			}
		}
	}

	for _, item := range pending {
		item.sym.Type = item.typ
	}
	for fullname, class := range iface.Classes {
		info := classes[fullname]
		for namespace, data := range class.Metadata {
			info.Metadata[namespace] = data
		}
	}
	return nil
}
