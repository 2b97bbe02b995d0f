package graph

const objectName = "builtins.object"

// promotions lists implicit numeric promotions (int is accepted where float is expected)
var promotions = map[string][]string{
	"builtins.int":  {"builtins.float", "builtins.complex"},
	"builtins.bool": {"builtins.float", "builtins.complex"},
}

// IsSame returns true if both types are judged identical
func IsSame(left, right Type) bool {
	switch l := left.(type) {
	case *Instance:
		r, ok := right.(*Instance)
		if !ok || l.Fullname() != r.Fullname() || len(l.Args) != len(r.Args) {
			return false
		}
		for i := range l.Args {
			if !IsSame(l.Args[i], r.Args[i]) {
				return false
			}
		}
		return true
	case *NoneType:
		_, ok := right.(*NoneType)
		return ok
	case *AnyType:
		_, ok := right.(*AnyType)
		return ok
	case *TypeVarType:
		r, ok := right.(*TypeVarType)
		return ok && r.Name == l.Name
	case *TypeType:
		r, ok := right.(*TypeType)
		return ok && IsSame(l.Item, r.Item)
	case *UnionType:
		r, ok := right.(*UnionType)
		if !ok || len(r.Items) != len(l.Items) {
			return false
		}
		return containsAll(l.Items, r.Items) && containsAll(r.Items, l.Items)
	case *CallableType:
		r, ok := right.(*CallableType)
		if !ok || len(r.ArgTypes) != len(l.ArgTypes) || !IsSame(l.RetType, r.RetType) {
			return false
		}
		for i := range l.ArgTypes {
			if l.ArgKinds[i] != r.ArgKinds[i] || l.ArgNames[i] != r.ArgNames[i] || !IsSame(l.ArgTypes[i], r.ArgTypes[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func containsAll(items, candidates []Type) bool {
outer:
	for _, candidate := range candidates {
		for _, item := range items {
			if IsSame(item, candidate) {
				continue outer
			}
		}
		return false
	}
	return true
}

// IsSubtype returns true if a value of type left can be used where right is expected
func IsSubtype(left, right Type) bool {
	if _, ok := right.(*AnyType); ok {
		return true
	}
	if _, ok := left.(*AnyType); ok {
		return true
	}
	if r, ok := right.(*Instance); ok && r.Fullname() == objectName {
		return true
	}
	if l, ok := left.(*UnionType); ok {
		for _, item := range l.Items {
			if !IsSubtype(item, right) {
				return false
			}
		}
		return true
	}
	if r, ok := right.(*UnionType); ok {
		for _, item := range r.Items {
			if IsSubtype(left, item) {
				return true
			}
		}
		return false
	}
	switch l := left.(type) {
	case *NoneType:
		_, ok := right.(*NoneType)
		return ok
	case *Instance:
		r, ok := right.(*Instance)
		if !ok {
			return false
		}
		return isInstanceSubtype(l, r)
	case *TypeType:
		switch r := right.(type) {
		case *TypeType:
			return isInstanceSubtype(l.Item, r.Item)
		case *Instance:
			return r.Fullname() == "builtins.type"
		case *CallableType:
			return true
		}
	case *CallableType:
		switch r := right.(type) {
		case *CallableType:
			return IsSubtype(l.RetType, r.RetType)
		case *Instance:
			return r.Fullname() == "builtins.function"
		}
	case *TypeVarType:
		r, ok := right.(*TypeVarType)
		return ok && r.Name == l.Name
	}
	return false
}

func isInstanceSubtype(left, right *Instance) bool {
	if left.Type == nil || right.Type == nil {
		return left.Fullname() == right.Fullname()
	}
	for _, promoted := range promotions[left.Fullname()] {
		if promoted == right.Fullname() {
			return true
		}
	}
	mapped := MapInstanceToSupertype(left, right.Type)
	if mapped == nil {
		return false
	}
	if len(right.Args) == 0 || len(mapped.Args) == 0 {
		return true
	}
	for i := range right.Args {
		if i >= len(mapped.Args) {
			break
		}
		if _, ok := right.Args[i].(*AnyType); ok {
			continue
		}
		if _, ok := mapped.Args[i].(*AnyType); ok {
			continue
		}
		if !IsSame(mapped.Args[i], right.Args[i]) {
			return false
		}
	}
	return true
}
