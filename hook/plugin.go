// Package hook teaches the checker how PynamoDB attribute descriptors behave: nullable
// attributes widen to Optional, model attribute access uses the recorded field types and
// model constructors accept the declared fields as keyword arguments.
package hook

import (
	"strings"

	"github.com/viant/attrcheck/checker"
	"github.com/viant/attrcheck/checker/graph"
	"go.uber.org/zap"
)

const (
	// ModelFullname is the tracked model base class
	ModelFullname = "pynamodb.models.Model"
	// AttributeFullname is the tracked attribute descriptor base class
	AttributeFullname = "pynamodb.attributes.Attribute"
)

// Diagnostic codes
const (
	CodeFlag       = "attr-flag"
	CodeBinding    = "attr-binding"
	CodeDescriptor = "attr-descriptor"
	CodeModelInit  = "model-init"
)

// Plugin dispatches checker events on PynamoDB models and attributes
type Plugin struct {
	modules  graph.Modules
	logger   *zap.SugaredLogger
	bindings *bindings
	types    *typeCache
}

var _ checker.Plugin = (*Plugin)(nil)

// New creates a plugin
func New(logger *zap.SugaredLogger) *Plugin {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Plugin{
		logger:   logger,
		bindings: newBindings(),
		types:    newTypeCache(),
	}
}

// SetModules sets the module table used to resolve hook names
func (p *Plugin) SetModules(modules graph.Modules) {
	p.modules = modules
	p.bindings.reset()
}

// FunctionSignatureHook returns the constructor synthesizer for model classes
func (p *Plugin) FunctionSignatureHook(fullname string) checker.FunctionSignatureHook {
	if p.tracked(fullname, ModelFullname) == nil {
		return nil
	}
	return p.modelInit
}

// AttributeHook returns the field type hook for model attributes; fullname is
// <defining class>.<attribute>
func (p *Plugin) AttributeHook(fullname string) checker.AttributeHook {
	index := strings.LastIndex(fullname, ".")
	if index == -1 {
		return nil
	}
	info := p.tracked(fullname[:index], ModelFullname)
	if info == nil {
		return nil
	}
	name := fullname[index+1:]
	return func(ctx *checker.AttributeContext) graph.Type {
		return p.modelAttribute(info, name, ctx)
	}
}

// FunctionHook returns the metadata recorder for attribute constructions
func (p *Plugin) FunctionHook(fullname string) checker.FunctionHook {
	if p.tracked(fullname, AttributeFullname) == nil {
		return nil
	}
	return p.attributeInit
}

// tracked returns the class named fullname when it derives from base
func (p *Plugin) tracked(fullname, base string) *graph.TypeInfo {
	if p.modules == nil {
		return nil
	}
	sym := p.modules.LookupFullyQualified(fullname)
	if sym == nil || sym.Info == nil || !sym.Info.HasBase(base) {
		return nil
	}
	return sym.Info
}
