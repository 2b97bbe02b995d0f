package hook

import (
	"github.com/cockroachdb/errors"
	"github.com/viant/attrcheck/checker"
	"github.com/viant/attrcheck/checker/graph"
)

// attributeInit handles attribute constructions, e.g. NumberAttribute(null=True). The
// construction type is left unchanged.
func (p *Plugin) attributeInit(ctx *checker.FunctionContext) graph.Type {
	p.record(ctx)
	return ctx.DefaultReturnType
}

// record finds the class variable the attribute is assigned to and records the field
// value type and key flags in the class metadata
func (p *Plugin) record(ctx *checker.FunctionContext) {
	api, ok := ctx.API.(checker.TypeCheckerAPI)
	if !ok {
		panic(errors.AssertionFailedf("attribute inspection requires the type checker API, got %T", ctx.API))
	}
	class := api.ActiveClass()
	name, ok := p.bindings.bind(ctx, class)
	if !ok {
		return
	}
	accessType := api.DescriptorAccessType(ctx.DefaultReturnType, ctx.Context)
	if accessType == nil {
		ctx.API.Fail(errNotDescriptor, ctx.Context, CodeDescriptor)
		return
	}
	flags := resolveFlags(ctx)
	valueType := flags.valueType(accessType)
	SetField(class, name, &FieldMetadata{
		Type:       valueType.Serialize(),
		IsHashKey:  flags.hashKey,
		IsRangeKey: flags.rangeKey,
	})
	p.logger.Debugw("recorded attribute", "class", class.Fullname, "attribute", name, "type", valueType.String())
}
