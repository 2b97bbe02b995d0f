package hook

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/viant/attrcheck/checker/graph"
)

// Namespace is the metadata namespace holding the model fields
const Namespace = "pynamodb_attributes"

const (
	keyType       = "type"
	keyIsHashKey  = "is_hash_key"
	keyIsRangeKey = "is_range_key"
	keyOrder      = "order"
)

// FieldMetadata is what is recorded for a model field
type FieldMetadata struct {
	// Type is the serialized value type seen when reading the field
	Type       graph.Serialized
	IsHashKey  bool
	IsRangeKey bool
	// Order is the declaration position of the field within its class
	Order int
}

// ToMap returns the persisted form
func (f *FieldMetadata) ToMap() map[string]interface{} {
	return map[string]interface{}{
		keyType:       f.Type,
		keyIsHashKey:  f.IsHashKey,
		keyIsRangeKey: f.IsRangeKey,
		keyOrder:      f.Order,
	}
}

// FieldMetadataFromMap decodes the persisted form
func FieldMetadataFromMap(value interface{}) (*FieldMetadata, error) {
	data, ok := value.(map[string]interface{})
	if !ok {
		return nil, errors.Newf("expected field metadata object, got %T", value)
	}
	typ, ok := data[keyType]
	if !ok {
		return nil, errors.New("field metadata has no type")
	}
	isHashKey, _ := data[keyIsHashKey].(bool)
	isRangeKey, _ := data[keyIsRangeKey].(bool)
	order, err := toInt(data[keyOrder])
	if err != nil {
		return nil, err
	}
	return &FieldMetadata{Type: typ, IsHashKey: isHashKey, IsRangeKey: isRangeKey, Order: order}, nil
}

// toInt accepts the in-memory int and the float64 a JSON round trip yields
func toInt(value interface{}) (int, error) {
	switch actual := value.(type) {
	case nil:
		return 0, nil
	case int:
		return actual, nil
	case float64:
		return int(actual), nil
	}
	return 0, errors.Newf("expected field order number, got %T", value)
}

// Fields returns the fields recorded on the class itself; ancestors are not included
func Fields(info *graph.TypeInfo) (map[string]*FieldMetadata, error) {
	result := map[string]*FieldMetadata{}
	for name, value := range info.Metadata[Namespace] {
		field, err := FieldMetadataFromMap(value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid metadata of %s.%s", info.Fullname, name)
		}
		result[name] = field
	}
	return result, nil
}

// Field returns the metadata of one field of the class, nil when not recorded
func Field(info *graph.TypeInfo, name string) (*FieldMetadata, error) {
	value, ok := info.Metadata[Namespace][name]
	if !ok {
		return nil, nil
	}
	field, err := FieldMetadataFromMap(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid metadata of %s.%s", info.Fullname, name)
	}
	return field, nil
}

// SetField records (or overwrites) a field of the class. A new field is ordered after the
// fields already recorded; an overwritten field keeps its position.
func SetField(info *graph.TypeInfo, name string, field *FieldMetadata) {
	fields := info.MetadataFor(Namespace)
	field.Order = len(fields)
	if existing, err := FieldMetadataFromMap(fields[name]); err == nil {
		field.Order = existing.Order
	}
	fields[name] = field.ToMap()
}

// fieldNames returns field names in declaration order, by name for equal positions
func fieldNames(fields map[string]*FieldMetadata) []string {
	var result []string
	for name := range fields {
		result = append(result, name)
	}
	sort.Slice(result, func(i, j int) bool {
		left, right := fields[result[i]], fields[result[j]]
		if left.Order != right.Order {
			return left.Order < right.Order
		}
		return result[i] < result[j]
	})
	return result
}
