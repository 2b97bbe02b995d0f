package checker

import (
	"github.com/viant/attrcheck/checker/graph"
)

// Plugin extends the checker with type hooks. For a fully qualified name the checker asks
// whether the plugin wants to intercept an event; a nil hook means no.
type Plugin interface {
	// SetModules hands the plugin the live module table used for name lookups
	SetModules(modules graph.Modules)
	// FunctionHook is called for calls; for class construction fullname is the class name
	FunctionHook(fullname string) FunctionHook
	// AttributeHook is called for member access; fullname is <defining class>.<attribute>
	AttributeHook(fullname string) AttributeHook
	// FunctionSignatureHook adjusts a callee signature before arguments are checked
	FunctionSignatureHook(fullname string) FunctionSignatureHook
}

// FunctionHook returns the type of a call expression
type FunctionHook func(ctx *FunctionContext) graph.Type

// AttributeHook returns the type of a member access
type AttributeHook func(ctx *AttributeContext) graph.Type

// FunctionSignatureHook returns the signature used to check a call
type FunctionSignatureHook func(ctx *FunctionSigContext) *graph.CallableType

// CheckerPluginInterface is the reporting and lookup surface available to every hook
type CheckerPluginInterface interface {
	// Fail reports an error at node
	Fail(message string, node graph.Node, code string)
	// Note reports a note at node
	Note(message string, node graph.Node)
	// LookupFullyQualified resolves a dotted name across all modules
	LookupFullyQualified(fullname string) *graph.Symbol
}

// TypeCheckerAPI is the full analysis surface, only available while type checking
type TypeCheckerAPI interface {
	CheckerPluginInterface
	// ActiveClass returns the class whose body is being checked, nil outside class bodies
	ActiveClass() *graph.TypeInfo
	// Modules returns the live module table
	Modules() graph.Modules
	// DescriptorAccessType returns what reading a descriptor yields (the __get__ result), nil
	// when the type is not a descriptor
	DescriptorAccessType(descriptor graph.Type, node graph.Node) graph.Type
	// Generation identifies the current check run; module tables differ between generations
	Generation() int
}

// FunctionContext is passed to function hooks. Actual arguments are grouped per formal
// parameter of the callee signature.
type FunctionContext struct {
	Args              [][]graph.Expression
	ArgTypes          [][]graph.Type
	ArgNames          [][]string
	ArgKinds          [][]graph.ArgKind
	CalleeArgNames    []string
	DefaultReturnType graph.Type
	Context           *graph.CallExpr
	API               CheckerPluginInterface
}

// AttributeContext is passed to attribute hooks
type AttributeContext struct {
	// Type is the type of the accessed object: an Instance, or a TypeType for class access
	Type            graph.Type
	DefaultAttrType graph.Type
	IsLvalue        bool
	Context         *graph.MemberExpr
	API             CheckerPluginInterface
}

// FunctionSigContext is passed to signature hooks
type FunctionSigContext struct {
	Args             [][]graph.Expression
	DefaultSignature *graph.CallableType
	Context          *graph.CallExpr
	API              CheckerPluginInterface
}
