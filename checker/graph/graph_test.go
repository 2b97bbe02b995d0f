package graph

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	modules Modules
	object  *TypeInfo
	int     *TypeInfo
	float   *TypeInfo
	str     *TypeInfo
	attr    *TypeInfo
	number  *TypeInfo
}

func newFixture() *fixture {
	builtins := NewModule("builtins", "builtins.pyi", nil)
	lib := NewModule("lib", "lib.pyi", nil)
	f := &fixture{modules: Modules{"builtins": builtins, "lib": lib}}
	define := func(module *Module, name string, base *TypeInfo, baseArgs ...Type) *TypeInfo {
		info := NewTypeInfo(module.Name, name)
		mro := []*TypeInfo{info}
		if base != nil {
			info.Bases = []*Instance{NewInstance(base, baseArgs...)}
			mro = append(mro, base.MRO...)
		}
		info.SetMRO(mro)
		module.Names[name] = &Symbol{Kind: SymbolClass, Name: name, Fullname: info.Fullname, Info: info}
		return info
	}
	f.object = define(builtins, "object", nil)
	f.int = define(builtins, "int", f.object)
	f.float = define(builtins, "float", f.object)
	f.str = define(builtins, "str", f.object)
	f.attr = define(lib, "Attribute", f.object)
	f.attr.TypeVars = []string{"_T"}
	f.number = define(lib, "NumberAttribute", f.attr, NewInstance(f.float))
	f.attr.Names["value"] = &Symbol{Kind: SymbolVariable, Name: "value", Type: &TypeVarType{Name: "_T"}, Owner: f.attr}
	return f
}

func TestSerialize_RoundTrip(t *testing.T) {
	f := newFixture()
	var testCases = []struct {
		description string
		typ         Type
		expectJSON  string
	}{
		{
			description: "plain instance serializes to its name",
			typ:         NewInstance(f.float),
			expectJSON:  `"builtins.float"`,
		},
		{
			description: "optional instance",
			typ:         MakeOptional(NewInstance(f.str)),
			expectJSON:  `{".class":"UnionType","items":["builtins.str",{".class":"NoneType"}]}`,
		},
		{
			description: "generic instance",
			typ:         NewInstance(f.attr, NewInstance(f.int)),
			expectJSON:  `{".class":"Instance","args":["builtins.int"],"type_ref":"lib.Attribute"}`,
		},
		{
			description: "callable",
			typ: &CallableType{
				ArgTypes: []Type{NewInstance(f.int), MakeOptional(NewInstance(f.str))},
				ArgKinds: []ArgKind{ArgPos, ArgNamedOpt},
				ArgNames: []string{"a", "b"},
				RetType:  &NoneType{},
				Name:     "f",
			},
		},
		{
			description: "type object",
			typ:         &TypeType{Item: NewInstance(f.number)},
			expectJSON:  `{".class":"TypeType","item":"lib.NumberAttribute"}`,
		},
	}

	for _, testCase := range testCases {
		serialized := testCase.typ.Serialize()
		encoded, err := json.Marshal(serialized)
		require.NoError(t, err, testCase.description)
		if testCase.expectJSON != "" {
			assert.JSONEq(t, testCase.expectJSON, string(encoded), testCase.description)
		}
		var decoded interface{}
		require.NoError(t, json.Unmarshal(encoded, &decoded), testCase.description)
		restored, err := DeserializeType(decoded)
		require.NoError(t, err, testCase.description)
		require.NoError(t, NewFixer(f.modules, false).Fix(restored), testCase.description)
		assert.True(t, IsSame(testCase.typ, restored), testCase.description)
		assert.Equal(t, testCase.typ.String(), restored.String(), testCase.description)
	}
}

func TestFixer_Fix(t *testing.T) {
	f := newFixture()
	restored, err := DeserializeType(map[string]interface{}{
		".class": "UnionType",
		"items":  []interface{}{"lib.Gone", map[string]interface{}{".class": "NoneType"}},
	})
	require.NoError(t, err)

	err = NewFixer(f.modules, false).Fix(restored)
	assert.True(t, errors.Is(err, ErrUnresolvedReference))

	assert.NoError(t, NewFixer(f.modules, true).Fix(restored))
	instance := restored.(*UnionType).Items[0].(*Instance)
	assert.False(t, instance.Resolved())
	assert.Equal(t, "lib.Gone", instance.Fullname())
}

func TestDeserializeType_Errors(t *testing.T) {
	var testCases = []struct {
		description string
		data        interface{}
	}{
		{description: "nil", data: nil},
		{description: "empty name", data: ""},
		{description: "unknown class", data: map[string]interface{}{".class": "Overloaded"}},
		{description: "instance without ref", data: map[string]interface{}{".class": "Instance"}},
		{description: "bad kinds", data: map[string]interface{}{".class": "CallableType", "arg_types": []interface{}{"builtins.int"}, "ret_type": "builtins.int"}},
		{description: "number", data: 42},
	}
	for _, testCase := range testCases {
		_, err := DeserializeType(testCase.data)
		assert.Error(t, err, testCase.description)
	}
}

func TestFormat(t *testing.T) {
	f := newFixture()
	var testCases = []struct {
		description string
		typ         Type
		expect      string
		expectShort string
	}{
		{
			description: "optional",
			typ:         MakeOptional(NewInstance(f.float)),
			expect:      "Union[builtins.float, None]",
			expectShort: "Optional[float]",
		},
		{
			description: "generic",
			typ:         NewInstance(f.attr, NewInstance(f.str)),
			expect:      "lib.Attribute[builtins.str]",
			expectShort: "Attribute[str]",
		},
		{
			description: "constructor",
			typ: &CallableType{
				ArgTypes: []Type{&AnyType{}, &NoneType{}, NewInstance(f.float)},
				ArgKinds: []ArgKind{ArgOpt, ArgOpt, ArgNamedOpt},
				ArgNames: []string{"hash_key", "range_key", "count"},
				RetType:  NewInstance(f.number),
			},
			expect:      "def (hash_key: Any =, range_key: None =, *, count: builtins.float =) -> lib.NumberAttribute",
			expectShort: "Callable[[Any, None, float], NumberAttribute]",
		},
		{
			description: "method without result",
			typ:         &CallableType{RetType: &NoneType{}},
			expect:      "def ()",
			expectShort: "Callable[[], None]",
		},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, testCase.typ.String(), testCase.description)
		assert.Equal(t, testCase.expectShort, FormatShort(testCase.typ), testCase.description)
	}
}

func TestIsSubtype(t *testing.T) {
	f := newFixture()
	float := NewInstance(f.float)
	var testCases = []struct {
		description string
		left        Type
		right       Type
		expect      bool
	}{
		{description: "same", left: float, right: float, expect: true},
		{description: "int promotes to float", left: NewInstance(f.int), right: float, expect: true},
		{description: "str is not float", left: NewInstance(f.str), right: float, expect: false},
		{description: "none to optional", left: &NoneType{}, right: MakeOptional(float), expect: true},
		{description: "none to plain", left: &NoneType{}, right: float, expect: false},
		{description: "optional to plain", left: MakeOptional(float), right: float, expect: false},
		{description: "anything to object", left: NewInstance(f.str), right: NewInstance(f.object), expect: true},
		{description: "any", left: &AnyType{}, right: float, expect: true},
		{description: "subclass to generic base", left: NewInstance(f.number), right: NewInstance(f.attr, float), expect: true},
		{description: "subclass to wrong generic base", left: NewInstance(f.number), right: NewInstance(f.attr, NewInstance(f.str)), expect: false},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, IsSubtype(testCase.left, testCase.right), testCase.description)
	}
}

func TestMakeOptional(t *testing.T) {
	f := newFixture()
	optional := MakeOptional(NewInstance(f.str))
	assert.True(t, IsOptional(optional))
	assert.Same(t, optional, MakeOptional(optional))
	assert.True(t, IsSame(NewInstance(f.str), RemoveNone(optional)))
}

func TestModules_LookupFullyQualified(t *testing.T) {
	f := newFixture()
	assert.Equal(t, f.number, f.modules.LookupTypeInfo("lib.NumberAttribute"))
	assert.NotNil(t, f.modules.LookupFullyQualified("lib.Attribute.value"))
	assert.Nil(t, f.modules.LookupFullyQualified("lib.Missing"))
	assert.Nil(t, f.modules.LookupFullyQualified("nowhere.Missing"))
	assert.True(t, f.number.HasBase("lib.Attribute"))
	assert.False(t, f.attr.HasBase("lib.NumberAttribute"))
}

func TestExpandTypeVars(t *testing.T) {
	f := newFixture()
	mapped := MapInstanceToSupertype(NewInstance(f.number), f.attr)
	require.NotNil(t, mapped)
	value := f.number.Get("value")
	require.NotNil(t, value)
	assert.Equal(t, "builtins.float", ExpandTypeVars(value.Type, mapped).String())
}

func TestFingerprint(t *testing.T) {
	f := newFixture()
	first, err := Fingerprint(MakeOptional(NewInstance(f.str)).Serialize())
	require.NoError(t, err)
	second, err := Fingerprint(MakeOptional(NewInstance(f.str)).Serialize())
	require.NoError(t, err)
	other, err := Fingerprint(NewInstance(f.str).Serialize())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}
