package checker

import (
	"github.com/viant/attrcheck/checker/graph"
	"github.com/viant/attrcheck/checker/report"
	"github.com/viant/attrcheck/checker/stubs"
	"go.uber.org/zap"
)

// TypeChecker checks module and class bodies and drives plugin hooks.
// It implements TypeCheckerAPI for the duration of a module check.
type TypeChecker struct {
	modules    graph.Modules
	module     *graph.Module
	plugin     Plugin
	collector  *report.Collector
	classes    []*graph.TypeInfo
	generation int
	logger     *zap.SugaredLogger
}

func newTypeChecker(modules graph.Modules, plugin Plugin, collector *report.Collector, generation int, logger *zap.SugaredLogger) *TypeChecker {
	return &TypeChecker{
		modules:    modules,
		plugin:     plugin,
		collector:  collector,
		generation: generation,
		logger:     logger,
	}
}

// Fail reports an error
func (c *TypeChecker) Fail(message string, node graph.Node, code string) {
	c.report(report.SeverityError, message, node, code)
}

// Note reports a note
func (c *TypeChecker) Note(message string, node graph.Node) {
	c.report(report.SeverityNote, message, node, "")
}

func (c *TypeChecker) report(severity report.Severity, message string, node graph.Node, code string) {
	diagnostic := &report.Diagnostic{Severity: severity, Message: message, Code: code}
	if c.module != nil {
		diagnostic.Path = c.module.Path
		diagnostic.Module = c.module.Name
	}
	if node != nil {
		position := node.Pos()
		diagnostic.Line = position.Line
		diagnostic.Column = position.Column
	}
	c.collector.Add(diagnostic)
}

// LookupFullyQualified resolves a dotted name
func (c *TypeChecker) LookupFullyQualified(fullname string) *graph.Symbol {
	return c.modules.LookupFullyQualified(fullname)
}

// ActiveClass returns the innermost class being checked
func (c *TypeChecker) ActiveClass() *graph.TypeInfo {
	if len(c.classes) == 0 {
		return nil
	}
	return c.classes[len(c.classes)-1]
}

// Modules returns the module table
func (c *TypeChecker) Modules() graph.Modules {
	return c.modules
}

// Generation returns the check run identifier
func (c *TypeChecker) Generation() int {
	return c.generation
}

// DescriptorAccessType returns the result type of __get__ for a descriptor instance
func (c *TypeChecker) DescriptorAccessType(descriptor graph.Type, node graph.Node) graph.Type {
	switch actual := descriptor.(type) {
	case *graph.AnyType:
		return actual
	case *graph.Instance:
		method := c.boundMethod(actual, "__get__")
		if method == nil {
			return nil
		}
		return method.RetType
	}
	return nil
}

// boundMethod returns the method signature bound to instance (self dropped, type variables expanded)
func (c *TypeChecker) boundMethod(instance *graph.Instance, name string) *graph.CallableType {
	if instance.Type == nil {
		return nil
	}
	sym := instance.Type.GetMethod(name)
	if sym == nil {
		return nil
	}
	callable, ok := sym.Type.(*graph.CallableType)
	if !ok {
		return nil
	}
	expanded, ok := graph.ExpandTypeVars(callable, graph.MapInstanceToSupertype(instance, sym.Owner)).(*graph.CallableType)
	if !ok {
		return nil
	}
	if hasDecorator(sym, decoratorStaticMethod) {
		return expanded
	}
	return expanded.DropFirst()
}

// CheckModule type checks the module and class bodies of a module
func (c *TypeChecker) CheckModule(module *graph.Module) {
	c.module = module
	c.classes = nil
	c.statements(module.Defs)
}

func (c *TypeChecker) statements(defs []graph.Statement) {
	for _, stmt := range defs {
		c.statement(stmt)
	}
}

func (c *TypeChecker) statement(stmt graph.Statement) {
	switch actual := stmt.(type) {
	case *graph.ClassDef:
		if actual.Info == nil {
			return
		}
		c.classes = append(c.classes, actual.Info)
		c.statements(actual.Defs)
		c.classes = c.classes[:len(c.classes)-1]
	case *graph.AssignmentStmt:
		c.assignment(actual)
	case *graph.ExpressionStmt:
		c.infer(actual.Expr)
	}
}

func (c *TypeChecker) assignment(stmt *graph.AssignmentStmt) {
	if stmt.Rvalue == nil {
		return
	}
	if sym := c.lookupName(firstName(stmt)); sym != nil && sym.Kind == graph.SymbolTypeVar {
		return
	}
	var itemTypes []graph.Type
	var rvalueType graph.Type
	if tuple, ok := stmt.Rvalue.(*graph.TupleExpr); ok {
		for _, item := range tuple.Items {
			itemTypes = append(itemTypes, c.infer(item))
		}
		rvalueType = c.builtinInstance("tuple", &graph.AnyType{})
	} else {
		rvalueType = c.infer(stmt.Rvalue)
	}
	for _, lvalue := range stmt.Lvalues {
		c.assign(lvalue, rvalueType, itemTypes)
	}
}

func firstName(stmt *graph.AssignmentStmt) string {
	if len(stmt.Lvalues) != 1 {
		return ""
	}
	if name, ok := stmt.Lvalues[0].(*graph.NameExpr); ok {
		return name.Name
	}
	return ""
}

func (c *TypeChecker) assign(lvalue graph.Expression, rvalueType graph.Type, itemTypes []graph.Type) {
	switch actual := lvalue.(type) {
	case *graph.NameExpr:
		sym := c.localSymbol(actual.Name)
		if sym == nil || sym.Kind != graph.SymbolVariable {
			return
		}
		actual.Fullname = sym.Fullname
		if sym.Type == nil {
			sym.Type = rvalueType
			return
		}
		if !graph.IsSubtype(rvalueType, sym.Type) {
			c.Fail(incompatibleAssignment(rvalueType, sym.Type), lvalue, report.CodeAssignment)
		}
	case *graph.MemberExpr:
		base := c.infer(actual.Expr)
		expected := c.analyzeMember(base, actual, true)
		if expected != nil && !graph.IsSubtype(rvalueType, expected) {
			c.Fail(incompatibleAssignment(rvalueType, expected), lvalue, report.CodeAssignment)
		}
	case *graph.TupleExpr:
		for i, item := range actual.Items {
			var itemType graph.Type = &graph.AnyType{}
			if len(itemTypes) == len(actual.Items) {
				itemType = itemTypes[i]
			}
			c.assign(item, itemType, nil)
		}
	case *graph.IndexExpr:
		c.infer(actual.Base)
		for _, index := range actual.Index {
			c.infer(index)
		}
	}
}

// localSymbol returns the symbol an assignment target binds in the current scope
func (c *TypeChecker) localSymbol(name string) *graph.Symbol {
	if class := c.ActiveClass(); class != nil {
		return class.Names[name]
	}
	return c.module.Names[name]
}

// lookupName resolves a name: class body, module, builtins
func (c *TypeChecker) lookupName(name string) *graph.Symbol {
	if name == "" {
		return nil
	}
	if class := c.ActiveClass(); class != nil {
		if sym, ok := class.Names[name]; ok {
			return sym
		}
	}
	return lookupGlobal(c.modules, c.module, name)
}

func (c *TypeChecker) builtinInstance(name string, args ...graph.Type) graph.Type {
	info := c.modules.LookupTypeInfo(stubs.Builtins + "." + name)
	if info == nil {
		return &graph.AnyType{}
	}
	if len(info.TypeVars) != len(args) {
		args = nil
		for range info.TypeVars {
			args = append(args, &graph.AnyType{})
		}
	}
	return graph.NewInstance(info, args...)
}
