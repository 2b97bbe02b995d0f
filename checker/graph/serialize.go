package graph

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Serialized is the persisted form of a type: either the full name of an instance
// without arguments, or a JSON object tagged with ".class"
type Serialized = interface{}

const classKey = ".class"

// Serialize implements Type
func (i *Instance) Serialize() Serialized {
	if len(i.Args) == 0 {
		return i.Fullname()
	}
	return map[string]interface{}{
		classKey:   "Instance",
		"type_ref": i.Fullname(),
		"args":     serializeList(i.Args),
	}
}

// Serialize implements Type
func (n *NoneType) Serialize() Serialized {
	return map[string]interface{}{classKey: "NoneType"}
}

// Serialize implements Type
func (a *AnyType) Serialize() Serialized {
	return map[string]interface{}{classKey: "AnyType"}
}

// Serialize implements Type
func (u *UnionType) Serialize() Serialized {
	return map[string]interface{}{
		classKey: "UnionType",
		"items":  serializeList(u.Items),
	}
}

// Serialize implements Type
func (v *TypeVarType) Serialize() Serialized {
	return map[string]interface{}{
		classKey: "TypeVarType",
		"name":   v.Name,
		"id":     v.ID,
	}
}

// Serialize implements Type
func (t *TypeType) Serialize() Serialized {
	return map[string]interface{}{
		classKey: "TypeType",
		"item":   t.Item.Serialize(),
	}
}

// Serialize implements Type
func (c *CallableType) Serialize() Serialized {
	kinds := make([]interface{}, len(c.ArgKinds))
	for i, kind := range c.ArgKinds {
		kinds[i] = int(kind)
	}
	names := make([]interface{}, len(c.ArgNames))
	for i, name := range c.ArgNames {
		names[i] = name
	}
	return map[string]interface{}{
		classKey:     "CallableType",
		"arg_types":  serializeList(c.ArgTypes),
		"arg_kinds":  kinds,
		"arg_names":  names,
		"ret_type":   c.RetType.Serialize(),
		"name":       c.Name,
		"definition": c.Definition,
	}
}

func serializeList(types []Type) []interface{} {
	result := make([]interface{}, len(types))
	for i, t := range types {
		result[i] = t.Serialize()
	}
	return result
}

// DeserializeType decodes a serialized type; instances are left unresolved (Ref set)
// until the type is fixed against a symbol table
func DeserializeType(data Serialized) (Type, error) {
	switch actual := data.(type) {
	case string:
		if actual == "" {
			return nil, errors.New("empty type reference")
		}
		return &Instance{Ref: actual}, nil
	case map[string]interface{}:
		return deserializeObject(actual)
	case nil:
		return nil, errors.New("missing serialized type")
	}
	return nil, errors.Newf("unsupported serialized type: %T", data)
}

func deserializeObject(data map[string]interface{}) (Type, error) {
	class, _ := data[classKey].(string)
	switch class {
	case "Instance":
		ref, _ := data["type_ref"].(string)
		if ref == "" {
			return nil, errors.New("instance without type_ref")
		}
		args, err := deserializeList(data["args"])
		if err != nil {
			return nil, errors.Wrapf(err, "instance %s", ref)
		}
		return &Instance{Ref: ref, Args: args}, nil
	case "NoneType":
		return &NoneType{}, nil
	case "AnyType":
		return &AnyType{}, nil
	case "UnionType":
		items, err := deserializeList(data["items"])
		if err != nil {
			return nil, errors.Wrap(err, "union")
		}
		return &UnionType{Items: items}, nil
	case "TypeVarType":
		name, _ := data["name"].(string)
		id, err := toInt(data["id"])
		if err != nil {
			return nil, errors.Wrapf(err, "type variable %s", name)
		}
		return &TypeVarType{Name: name, ID: id}, nil
	case "TypeType":
		item, err := DeserializeType(data["item"])
		if err != nil {
			return nil, errors.Wrap(err, "type object")
		}
		instance, ok := item.(*Instance)
		if !ok {
			return nil, errors.Newf("type object of non-instance %s", item)
		}
		return &TypeType{Item: instance}, nil
	case "CallableType":
		return deserializeCallable(data)
	}
	return nil, errors.Newf("unknown serialized type class %q", class)
}

func deserializeCallable(data map[string]interface{}) (Type, error) {
	argTypes, err := deserializeList(data["arg_types"])
	if err != nil {
		return nil, errors.Wrap(err, "callable arguments")
	}
	ret, err := DeserializeType(data["ret_type"])
	if err != nil {
		return nil, errors.Wrap(err, "callable return type")
	}
	rawKinds, _ := data["arg_kinds"].([]interface{})
	rawNames, _ := data["arg_names"].([]interface{})
	if len(rawKinds) != len(argTypes) || len(rawNames) != len(argTypes) {
		return nil, errors.Newf("callable has %d types, %d kinds and %d names", len(argTypes), len(rawKinds), len(rawNames))
	}
	result := &CallableType{ArgTypes: argTypes, RetType: ret}
	for i := range argTypes {
		kind, err := toInt(rawKinds[i])
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d kind", i)
		}
		name, _ := rawNames[i].(string)
		result.ArgKinds = append(result.ArgKinds, ArgKind(kind))
		result.ArgNames = append(result.ArgNames, name)
	}
	result.Name, _ = data["name"].(string)
	result.Definition, _ = data["definition"].(string)
	return result, nil
}

func deserializeList(data interface{}) ([]Type, error) {
	if data == nil {
		return nil, nil
	}
	items, ok := data.([]interface{})
	if !ok {
		return nil, errors.Newf("expected list, got %T", data)
	}
	result := make([]Type, 0, len(items))
	for _, item := range items {
		t, err := DeserializeType(item)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

// toInt accepts ints and the float64 values produced by encoding/json
func toInt(value interface{}) (int, error) {
	switch actual := value.(type) {
	case int:
		return actual, nil
	case int64:
		return int(actual), nil
	case float64:
		return int(actual), nil
	case json.Number:
		n, err := actual.Int64()
		return int(n), err
	}
	return 0, errors.Newf("expected number, got %T", value)
}

// MarshalSerialized encodes a serialized type as canonical JSON (sorted keys)
func MarshalSerialized(data Serialized) ([]byte, error) {
	return json.Marshal(data)
}
