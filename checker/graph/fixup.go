package graph

import (
	"github.com/cockroachdb/errors"
)

// ErrUnresolvedReference is returned when a serialized type refers to a class that no longer exists
var ErrUnresolvedReference = errors.New("unresolved type reference")

type visitor func(t Type) error

func (i *Instance) accept(v visitor) error {
	if err := v(i); err != nil {
		return err
	}
	return acceptAll(i.Args, v)
}

func (n *NoneType) accept(v visitor) error { return v(n) }

func (a *AnyType) accept(v visitor) error { return v(a) }

func (t *TypeVarType) accept(v visitor) error { return v(t) }

func (u *UnionType) accept(v visitor) error {
	if err := v(u); err != nil {
		return err
	}
	return acceptAll(u.Items, v)
}

func (t *TypeType) accept(v visitor) error {
	if err := v(t); err != nil {
		return err
	}
	return t.Item.accept(v)
}

func (c *CallableType) accept(v visitor) error {
	if err := v(c); err != nil {
		return err
	}
	if err := acceptAll(c.ArgTypes, v); err != nil {
		return err
	}
	return c.RetType.accept(v)
}

func acceptAll(types []Type, v visitor) error {
	for _, t := range types {
		if err := t.accept(v); err != nil {
			return err
		}
	}
	return nil
}

// Walk calls fn for t and every nested type
func Walk(t Type, fn func(t Type) error) error {
	return t.accept(fn)
}

// Fixer resolves the class references of deserialized types against live modules
type Fixer struct {
	modules      Modules
	allowMissing bool
}

// NewFixer creates a fixer; with allowMissing unresolved references are left unresolved
func NewFixer(modules Modules, allowMissing bool) *Fixer {
	return &Fixer{modules: modules, allowMissing: allowMissing}
}

// Fix resolves every class reference of t in place; the first reference that cannot be
// resolved fails the whole type unless missing references are allowed
func (f *Fixer) Fix(t Type) error {
	return Walk(t, func(t Type) error {
		instance, ok := t.(*Instance)
		if !ok {
			return nil
		}
		fullname := instance.Fullname()
		info := f.modules.LookupTypeInfo(fullname)
		if info == nil {
			if f.allowMissing {
				instance.Ref = fullname
				instance.Type = nil
				return nil
			}
			return errors.Wrapf(ErrUnresolvedReference, "%s", fullname)
		}
		instance.Type = info
		instance.Ref = ""
		return nil
	})
}
