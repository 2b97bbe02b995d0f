package hook

import (
	"github.com/cockroachdb/errors"
	"github.com/viant/attrcheck/checker"
	"github.com/viant/attrcheck/checker/graph"
)

// state of a memoized type
type state int

const (
	// resolved types are valid for the current generation
	resolved state = iota
	// stale types were resolved in an earlier generation and must be fixed again
	stale
	// invalid types failed to resolve in the current generation
	invalid
)

type cachedType struct {
	state state
	data  graph.Serialized
	typ   graph.Type
	err   error
}

// typeCache memoizes rehydrated types by fingerprint of their serialized form
type typeCache struct {
	generation int
	entries    map[uint64]*cachedType
}

func newTypeCache() *typeCache {
	return &typeCache{entries: map[uint64]*cachedType{}}
}

// rehydrate deserializes a persisted type and resolves it against the live modules. It
// is only valid while type checking; any other API is a programming error.
func (p *Plugin) rehydrate(api checker.CheckerPluginInterface, data graph.Serialized) (graph.Type, error) {
	internal, ok := api.(checker.TypeCheckerAPI)
	if !ok {
		panic(errors.AssertionFailedf("type rehydration requires the type checker API, got %T", api))
	}
	return p.types.get(internal, data)
}

func (c *typeCache) get(api checker.TypeCheckerAPI, data graph.Serialized) (graph.Type, error) {
	if generation := api.Generation(); generation != c.generation {
		c.expire(generation)
	}
	key, err := graph.Fingerprint(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fingerprint serialized type")
	}
	entry, ok := c.entries[key]
	if !ok {
		entry = &cachedType{state: stale, data: data}
		c.entries[key] = entry
	}
	switch entry.state {
	case resolved:
		return entry.typ, nil
	case invalid:
		return nil, entry.err
	}
	entry.typ, entry.err = resolve(api.Modules(), entry.data)
	if entry.err != nil {
		entry.state = invalid
		entry.typ = nil
		return nil, entry.err
	}
	entry.state = resolved
	return entry.typ, nil
}

// expire marks every entry stale; module tables of an earlier generation are gone
func (c *typeCache) expire(generation int) {
	c.generation = generation
	for _, entry := range c.entries {
		entry.state = stale
		entry.typ = nil
		entry.err = nil
	}
}

func resolve(modules graph.Modules, data graph.Serialized) (graph.Type, error) {
	typ, err := graph.DeserializeType(data)
	if err != nil {
		return nil, err
	}
	if err = graph.NewFixer(modules, false).Fix(typ); err != nil {
		return nil, errors.Wrap(err, "failed to resolve type")
	}
	return typ, nil
}
