package hook

import (
	"github.com/viant/attrcheck/checker"
	"github.com/viant/attrcheck/checker/graph"
)

// modelAttribute returns the recorded field type for reads and writes on model instances.
// Class access keeps the descriptor.
func (p *Plugin) modelAttribute(info *graph.TypeInfo, name string, ctx *checker.AttributeContext) graph.Type {
	if _, ok := ctx.Type.(*graph.TypeType); ok {
		return ctx.DefaultAttrType
	}
	field, err := Field(info, name)
	if err != nil {
		p.logger.Warnw("ignoring model metadata", "class", info.Fullname, "attribute", name, "error", err)
		return ctx.DefaultAttrType
	}
	if field == nil {
		return ctx.DefaultAttrType
	}
	typ, err := p.rehydrate(ctx.API, field.Type)
	if err != nil {
		p.logger.Warnw("failed to rehydrate field type", "class", info.Fullname, "attribute", name, "error", err)
		return ctx.DefaultAttrType
	}
	return typ
}
