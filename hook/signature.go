package hook

import (
	"fmt"

	"github.com/viant/attrcheck/checker"
	"github.com/viant/attrcheck/checker/graph"
)

const (
	paramHashKey  = "hash_key"
	paramRangeKey = "range_key"
)

// modelInit rewrites the model constructor: hash_key and range_key take the types of the
// class key fields, **kwargs becomes one optional keyword per field of the class and its
// ancestors. The class's own fields come first and shadow ancestor fields of the same name.
func (p *Plugin) modelInit(ctx *checker.FunctionSigContext) *graph.CallableType {
	signature := ctx.DefaultSignature
	model, ok := signature.RetType.(*graph.Instance)
	if !ok || model.Type == nil {
		return signature
	}
	hashKeyIndex := signature.ArgIndex(paramHashKey)
	rangeKeyIndex := signature.ArgIndex(paramRangeKey)
	kwargsIndex := signature.KindIndex(graph.ArgStar2)
	if hashKeyIndex == -1 || rangeKeyIndex == -1 || kwargsIndex == -1 {
		ctx.API.Fail(fmt.Sprintf("Unexpected signature '%s' for a PynamoDB model initializer: "+
			"expecting 'hash_key', 'range_key' and a keywords argument", signature.String()), ctx.Context, CodeModelInit)
		return signature
	}

	var names []string
	types := map[string]graph.Type{}
	mro := model.Type.MRO
	if len(mro) == 0 {
		mro = []*graph.TypeInfo{model.Type}
	}
	for _, info := range mro {
		fields := p.fields(info)
		for _, name := range fieldNames(fields) {
			if _, ok := types[name]; ok {
				continue
			}
			names = append(names, name)
			types[name] = p.fieldType(ctx.API, info, name, fields[name])
		}
	}

	var hashKeyType, rangeKeyType graph.Type = &graph.NoneType{}, &graph.NoneType{}
	own := p.fields(model.Type)
	for _, name := range fieldNames(own) {
		field := own[name]
		if field.IsHashKey {
			hashKeyType = p.fieldType(ctx.API, model.Type, name, field)
		}
		if field.IsRangeKey {
			rangeKeyType = p.fieldType(ctx.API, model.Type, name, field)
		}
	}

	result := signature.Copy()
	result.ArgTypes[hashKeyIndex] = hashKeyType
	result.ArgTypes[rangeKeyIndex] = rangeKeyType
	argTypes := append([]graph.Type{}, result.ArgTypes[:kwargsIndex]...)
	argKinds := append([]graph.ArgKind{}, result.ArgKinds[:kwargsIndex]...)
	argNames := append([]string{}, result.ArgNames[:kwargsIndex]...)
	for _, name := range names {
		argTypes = append(argTypes, types[name])
		argKinds = append(argKinds, graph.ArgNamedOpt)
		argNames = append(argNames, name)
	}
	result.ArgTypes = append(argTypes, result.ArgTypes[kwargsIndex+1:]...)
	result.ArgKinds = append(argKinds, result.ArgKinds[kwargsIndex+1:]...)
	result.ArgNames = append(argNames, result.ArgNames[kwargsIndex+1:]...)
	return result
}

// fields returns the fields recorded on a class; malformed metadata is logged and ignored
func (p *Plugin) fields(info *graph.TypeInfo) map[string]*FieldMetadata {
	fields, err := Fields(info)
	if err != nil {
		p.logger.Warnw("ignoring model metadata", "class", info.Fullname, "error", err)
		return map[string]*FieldMetadata{}
	}
	return fields
}

// fieldType rehydrates a recorded field type, Any when it no longer resolves
func (p *Plugin) fieldType(api checker.CheckerPluginInterface, info *graph.TypeInfo, name string, field *FieldMetadata) graph.Type {
	typ, err := p.rehydrate(api, field.Type)
	if err != nil {
		p.logger.Warnw("failed to rehydrate field type", "class", info.Fullname, "attribute", name, "error", err)
		return &graph.AnyType{}
	}
	return typ
}
