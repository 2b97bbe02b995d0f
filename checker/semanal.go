package checker

import (
	"strings"

	"github.com/viant/attrcheck/checker/graph"
	"github.com/viant/attrcheck/checker/report"
	"github.com/viant/attrcheck/checker/stubs"
)

const (
	decoratorClassMethod  = "classmethod"
	decoratorStaticMethod = "staticmethod"
	decoratorProperty     = "property"
)

type (
	// semanticAnalyzer binds names, builds class descriptors and computes declared types
	semanticAnalyzer struct {
		modules   graph.Modules
		module    *graph.Module
		fail      func(message string, node graph.Node, code string)
		classes   []*graph.TypeInfo
		functions []*graph.Symbol
		variables []*variable
	}

	variable struct {
		symbol     *graph.Symbol
		annotation graph.Expression
	}
)

func newSemanticAnalyzer(modules graph.Modules, module *graph.Module, fail func(message string, node graph.Node, code string)) *semanticAnalyzer {
	return &semanticAnalyzer{modules: modules, module: module, fail: fail}
}

func (a *semanticAnalyzer) analyze() {
	a.collect(a.module.Defs, a.module.Names, a.module.Name, nil)
	for _, info := range a.classes {
		a.analyzeTypeVars(info)
	}
	for _, info := range a.classes {
		a.analyzeBases(info)
	}
	for _, info := range a.classes {
		a.computeMRO(info, map[*graph.TypeInfo]bool{})
	}
	for _, sym := range a.functions {
		a.analyzeFunction(sym)
	}
	for _, item := range a.variables {
		item.symbol.Type = a.analyzeType(item.annotation)
		item.symbol.Declared = true
	}
}

func (a *semanticAnalyzer) collect(defs []graph.Statement, names graph.SymbolTable, prefix string, owner *graph.TypeInfo) {
	for _, stmt := range defs {
		switch actual := stmt.(type) {
		case *graph.ClassDef:
			info := graph.NewTypeInfo(a.module.Name, actual.Name)
			info.Fullname = prefix + "." + actual.Name
			info.Defn = actual
			actual.Fullname = info.Fullname
			actual.Info = info
			names[actual.Name] = &graph.Symbol{Kind: graph.SymbolClass, Name: actual.Name, Fullname: info.Fullname, Info: info, Owner: owner, Node: actual}
			a.classes = append(a.classes, info)
			a.collect(actual.Defs, info.Names, info.Fullname, info)
		case *graph.FuncDef:
			actual.Fullname = prefix + "." + actual.Name
			sym := &graph.Symbol{Kind: graph.SymbolFunction, Name: actual.Name, Fullname: actual.Fullname, Func: actual, Owner: owner, Node: actual}
			for _, decorator := range actual.Decorators {
				sym.Decorators = append(sym.Decorators, exprText(decorator))
			}
			names[actual.Name] = sym
			a.functions = append(a.functions, sym)
		case *graph.AssignmentStmt:
			a.collectAssignment(actual, names, prefix, owner)
		case *graph.ImportFrom:
			a.importFrom(actual, names)
		case *graph.Import:
			a.importModules(actual, names)
		}
	}
}

func (a *semanticAnalyzer) collectAssignment(stmt *graph.AssignmentStmt, names graph.SymbolTable, prefix string, owner *graph.TypeInfo) {
	if len(stmt.Lvalues) == 1 {
		if name, ok := stmt.Lvalues[0].(*graph.NameExpr); ok && a.isTypeVarCall(stmt.Rvalue) {
			name.Fullname = prefix + "." + name.Name
			names[name.Name] = &graph.Symbol{Kind: graph.SymbolTypeVar, Name: name.Name, Fullname: name.Fullname, Owner: owner, Node: stmt}
			return
		}
	}
	var declared *graph.Symbol
	for _, lvalue := range stmt.Lvalues {
		for _, name := range targetNames(lvalue) {
			sym, ok := names[name.Name]
			if !ok || sym.Kind != graph.SymbolVariable {
				sym = &graph.Symbol{Kind: graph.SymbolVariable, Name: name.Name, Fullname: prefix + "." + name.Name, Owner: owner, Node: stmt}
				names[name.Name] = sym
			}
			name.Fullname = sym.Fullname
			if declared == nil {
				declared = sym
			}
		}
	}
	if stmt.Annotation != nil && declared != nil {
		a.variables = append(a.variables, &variable{symbol: declared, annotation: stmt.Annotation})
	}
}

func targetNames(lvalue graph.Expression) []*graph.NameExpr {
	switch actual := lvalue.(type) {
	case *graph.NameExpr:
		return []*graph.NameExpr{actual}
	case *graph.TupleExpr:
		var result []*graph.NameExpr
		for _, item := range actual.Items {
			result = append(result, targetNames(item)...)
		}
		return result
	}
	return nil
}

func (a *semanticAnalyzer) isTypeVarCall(expr graph.Expression) bool {
	call, ok := expr.(*graph.CallExpr)
	if !ok {
		return false
	}
	sym := a.lookupExpr(call.Callee)
	return sym != nil && sym.Fullname == stubs.Typing+".TypeVar"
}

func (a *semanticAnalyzer) importFrom(stmt *graph.ImportFrom, names graph.SymbolTable) {
	moduleName := a.absoluteModule(stmt.Module)
	module, ok := a.modules[moduleName]
	if !ok {
		a.fail(moduleNotFound(moduleName), stmt, report.CodeImport)
		return
	}
	if stmt.Wildcard {
		for name, sym := range module.Names {
			if !strings.HasPrefix(name, "_") {
				names[name] = sym
			}
		}
		return
	}
	for _, imported := range stmt.Names {
		alias := imported.Alias
		if alias == "" {
			alias = imported.Name
		}
		if sym, ok := module.Names[imported.Name]; ok {
			names[alias] = sym
			continue
		}
		if submodule, ok := a.modules[moduleName+"."+imported.Name]; ok {
			names[alias] = moduleSymbol(submodule)
			continue
		}
		a.fail(moduleHasNoAttribute(moduleName, imported.Name), stmt, report.CodeAttrDefined)
	}
}

func (a *semanticAnalyzer) importModules(stmt *graph.Import, names graph.SymbolTable) {
	for _, imported := range stmt.Names {
		module, ok := a.modules[imported.Name]
		if !ok {
			a.fail(moduleNotFound(imported.Name), stmt, report.CodeImport)
			continue
		}
		if imported.Alias != "" {
			names[imported.Alias] = moduleSymbol(module)
			continue
		}
		top := strings.Split(imported.Name, ".")[0]
		if topModule, ok := a.modules[top]; ok {
			names[top] = moduleSymbol(topModule)
		}
	}
}

func (a *semanticAnalyzer) absoluteModule(name string) string {
	return absoluteModule(a.module.Name, name)
}

// absoluteModule resolves relative imports (from .models import X)
func absoluteModule(current, name string) string {
	if !strings.HasPrefix(name, ".") {
		return name
	}
	dots := len(name) - len(strings.TrimLeft(name, "."))
	parts := strings.Split(current, ".")
	if dots > len(parts) {
		return strings.TrimLeft(name, ".")
	}
	base := strings.Join(parts[:len(parts)-dots], ".")
	rest := name[dots:]
	switch {
	case base == "":
		return rest
	case rest == "":
		return base
	}
	return base + "." + rest
}

func moduleSymbol(module *graph.Module) *graph.Symbol {
	return &graph.Symbol{Kind: graph.SymbolModule, Name: module.Name, Fullname: module.Name, Module: module}
}

// lookup resolves a name in the module scope, then in builtins
func (a *semanticAnalyzer) lookup(name string) *graph.Symbol {
	return lookupGlobal(a.modules, a.module, name)
}

func lookupGlobal(modules graph.Modules, module *graph.Module, name string) *graph.Symbol {
	if sym, ok := module.Names[name]; ok {
		return sym
	}
	if builtins, ok := modules[stubs.Builtins]; ok {
		if sym, ok := builtins.Names[name]; ok {
			return sym
		}
	}
	return nil
}

// lookupExpr resolves a name or a dotted module member to a symbol
func (a *semanticAnalyzer) lookupExpr(expr graph.Expression) *graph.Symbol {
	switch actual := expr.(type) {
	case *graph.NameExpr:
		sym := a.lookup(actual.Name)
		if sym != nil {
			actual.Fullname = sym.Fullname
		}
		return sym
	case *graph.MemberExpr:
		base := a.lookupExpr(actual.Expr)
		return memberSymbol(a.modules, base, actual.Name)
	}
	return nil
}

// memberSymbol resolves name inside a module or class symbol
func memberSymbol(modules graph.Modules, base *graph.Symbol, name string) *graph.Symbol {
	if base == nil {
		return nil
	}
	switch base.Kind {
	case graph.SymbolModule:
		if sym, ok := base.Module.Names[name]; ok {
			return sym
		}
		if submodule, ok := modules[base.Module.Name+"."+name]; ok {
			return moduleSymbol(submodule)
		}
	case graph.SymbolClass:
		if sym, ok := base.Info.Names[name]; ok && sym.Kind == graph.SymbolClass {
			return sym
		}
	}
	return nil
}

func (a *semanticAnalyzer) analyzeTypeVars(info *graph.TypeInfo) {
	for _, expr := range info.Defn.BaseExprs {
		index, ok := expr.(*graph.IndexExpr)
		if !ok {
			continue
		}
		if sym := a.lookupExpr(index.Base); sym == nil || sym.Fullname != stubs.Typing+".Generic" {
			continue
		}
		for _, item := range index.Index {
			sym := a.lookupExpr(item)
			if sym == nil || sym.Kind != graph.SymbolTypeVar {
				a.fail(invalidType(exprText(item)), item, report.CodeValidType)
				continue
			}
			info.TypeVars = append(info.TypeVars, sym.Name)
		}
	}
}

func (a *semanticAnalyzer) analyzeBases(info *graph.TypeInfo) {
	explicit := len(info.TypeVars) > 0
	seen := map[string]bool{}
	for _, name := range info.TypeVars {
		seen[name] = true
	}
	for _, expr := range info.Defn.BaseExprs {
		if index, ok := expr.(*graph.IndexExpr); ok {
			if sym := a.lookupExpr(index.Base); sym != nil && sym.Fullname == stubs.Typing+".Generic" {
				continue
			}
		}
		base, ok := a.analyzeType(expr).(*graph.Instance)
		if !ok || base.Type == nil {
			a.fail(invalidBaseClass(exprText(expr)), expr, report.CodeMisc)
			continue
		}
		info.Bases = append(info.Bases, base)
		if explicit {
			continue
		}
		for _, arg := range base.Args {
			_ = graph.Walk(arg, func(t graph.Type) error {
				if typeVar, ok := t.(*graph.TypeVarType); ok && !seen[typeVar.Name] {
					seen[typeVar.Name] = true
					info.TypeVars = append(info.TypeVars, typeVar.Name)
				}
				return nil
			})
		}
	}
}

// computeMRO linearizes the class hierarchy with the C3 algorithm
func (a *semanticAnalyzer) computeMRO(info *graph.TypeInfo, visiting map[*graph.TypeInfo]bool) {
	if info.MRO != nil {
		return
	}
	if visiting[info] {
		a.fail(inheritanceCycle(info.Name), info.Defn, report.CodeMisc)
		info.Bases = nil
		return
	}
	visiting[info] = true
	defer delete(visiting, info)

	if len(info.Bases) == 0 && info.Fullname != stubs.Builtins+".object" {
		if object := a.modules.LookupTypeInfo(stubs.Builtins + ".object"); object != nil {
			info.Bases = []*graph.Instance{graph.NewInstance(object)}
		}
	}
	var sequences [][]*graph.TypeInfo
	var direct []*graph.TypeInfo
	for _, base := range info.Bases {
		a.computeMRO(base.Type, visiting)
		sequences = append(sequences, append([]*graph.TypeInfo{}, base.Type.MRO...))
		direct = append(direct, base.Type)
	}
	sequences = append(sequences, direct)
	linear, ok := mergeMRO(sequences)
	if !ok {
		a.fail(inconsistentMRO(info.Name), info.Defn, report.CodeMisc)
		linear = flattenMRO(sequences)
	}
	info.SetMRO(append([]*graph.TypeInfo{info}, linear...))
}

func mergeMRO(sequences [][]*graph.TypeInfo) ([]*graph.TypeInfo, bool) {
	var result []*graph.TypeInfo
	for {
		var remaining [][]*graph.TypeInfo
		for _, sequence := range sequences {
			if len(sequence) > 0 {
				remaining = append(remaining, sequence)
			}
		}
		if len(remaining) == 0 {
			return result, true
		}
		var head *graph.TypeInfo
		for _, sequence := range remaining {
			candidate := sequence[0]
			if !inTail(candidate, remaining) {
				head = candidate
				break
			}
		}
		if head == nil {
			return nil, false
		}
		result = append(result, head)
		for i, sequence := range remaining {
			if sequence[0] == head {
				remaining[i] = sequence[1:]
			}
		}
		sequences = remaining
	}
}

func inTail(candidate *graph.TypeInfo, sequences [][]*graph.TypeInfo) bool {
	for _, sequence := range sequences {
		for _, info := range sequence[1:] {
			if info == candidate {
				return true
			}
		}
	}
	return false
}

func flattenMRO(sequences [][]*graph.TypeInfo) []*graph.TypeInfo {
	var result []*graph.TypeInfo
	seen := map[*graph.TypeInfo]bool{}
	for _, sequence := range sequences {
		for _, info := range sequence {
			if !seen[info] {
				seen[info] = true
				result = append(result, info)
			}
		}
	}
	return result
}

func (a *semanticAnalyzer) analyzeFunction(sym *graph.Symbol) {
	funcDef := sym.Func
	callable := &graph.CallableType{Name: funcDef.Name, Definition: funcDef.Fullname}
	for i, arg := range funcDef.Arguments {
		var argType graph.Type = &graph.AnyType{}
		switch {
		case arg.Annotation != nil:
			argType = a.analyzeType(arg.Annotation)
		case i == 0 && sym.Owner != nil && !hasDecorator(sym, decoratorStaticMethod):
			self := selfInstance(sym.Owner)
			if hasDecorator(sym, decoratorClassMethod) {
				argType = &graph.TypeType{Item: self}
			} else {
				argType = self
			}
		}
		callable.ArgTypes = append(callable.ArgTypes, argType)
		callable.ArgKinds = append(callable.ArgKinds, arg.Kind)
		callable.ArgNames = append(callable.ArgNames, arg.Name)
	}
	switch {
	case funcDef.ReturnType != nil:
		callable.RetType = a.analyzeType(funcDef.ReturnType)
	case funcDef.Name == "__init__":
		callable.RetType = &graph.NoneType{}
	default:
		callable.RetType = &graph.AnyType{}
	}
	funcDef.Type = callable
	sym.Type = callable
	if hasDecorator(sym, decoratorProperty) {
		sym.Kind = graph.SymbolVariable
		sym.Type = callable.RetType
		sym.Declared = true
	}
}

func hasDecorator(sym *graph.Symbol, name string) bool {
	for _, decorator := range sym.Decorators {
		if decorator == name {
			return true
		}
	}
	return false
}

// selfInstance returns the instance type of a class parameterized by its own type variables
func selfInstance(info *graph.TypeInfo) *graph.Instance {
	var args []graph.Type
	for i, name := range info.TypeVars {
		args = append(args, &graph.TypeVarType{Name: name, ID: i + 1})
	}
	return graph.NewInstance(info, args...)
}

// exprText renders an expression for messages
func exprText(expr graph.Expression) string {
	switch actual := expr.(type) {
	case *graph.NameExpr:
		return actual.Name
	case *graph.MemberExpr:
		return exprText(actual.Expr) + "." + actual.Name
	case *graph.IndexExpr:
		var items []string
		for _, item := range actual.Index {
			items = append(items, exprText(item))
		}
		return exprText(actual.Base) + "[" + strings.Join(items, ", ") + "]"
	case *graph.CallExpr:
		return exprText(actual.Callee) + "(...)"
	case *graph.StrExpr:
		return actual.Value
	case *graph.OpaqueExpr:
		return actual.Text
	case *graph.EllipsisExpr:
		return "..."
	}
	return "?"
}
