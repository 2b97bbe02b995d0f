// Package cache persists per-module check results so unchanged modules are not checked again
package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/viant/attrcheck/checker/graph"
	"github.com/viant/attrcheck/checker/report"
	"go.uber.org/zap"
)

// Version is bumped whenever the entry format changes
const Version = 1

type (
	// Store persists cache entries
	Store interface {
		// Get returns the entry of a module, nil when absent
		Get(ctx context.Context, module string) (*Entry, error)
		Put(ctx context.Context, entry *Entry) error
		Close() error
	}

	// Entry is the cached result of checking one module
	Entry struct {
		Version    int    `json:"version"`
		Module     string `json:"module"`
		Path       string `json:"path"`
		SourceHash uint64 `json:"sourceHash"`
		// Dependencies records the interface hash of every imported module at check time
		Dependencies  map[string]uint64  `json:"dependencies,omitempty"`
		Interface     *Interface         `json:"interface"`
		InterfaceHash uint64             `json:"interfaceHash"`
		Diagnostics   report.Diagnostics `json:"diagnostics,omitempty"`
	}

	// Interface is what other modules observe from a checked module: inferred variable
	// types and plugin metadata
	Interface struct {
		Variables map[string]graph.Serialized `json:"variables,omitempty"`
		Classes   map[string]*Class           `json:"classes,omitempty"`
	}

	// Class holds the inferred member types and plugin metadata of a class, keyed by full name
	Class struct {
		Members  map[string]graph.Serialized       `json:"members,omitempty"`
		Metadata map[string]map[string]interface{} `json:"metadata,omitempty"`
	}
)

// NewInterface creates an empty interface
func NewInterface() *Interface {
	return &Interface{Variables: map[string]graph.Serialized{}, Classes: map[string]*Class{}}
}

// Hash returns the fingerprint of the interface; map keys are encoded in sorted order
func (i *Interface) Hash() (uint64, error) {
	data, err := json.Marshal(i)
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode interface")
	}
	return graph.Hash(data)
}

// Fresh returns true when the entry was computed from the same source against the same
// dependency interfaces
func (e *Entry) Fresh(sourceHash uint64, dependencies map[string]uint64) bool {
	if e == nil || e.Version != Version || e.SourceHash != sourceHash || e.Interface == nil {
		return false
	}
	if len(e.Dependencies) != len(dependencies) {
		return false
	}
	for name, hash := range dependencies {
		if recorded, ok := e.Dependencies[name]; !ok || recorded != hash {
			return false
		}
	}
	return true
}

// DependencyNames returns the recorded dependency names in sorted order
func (e *Entry) DependencyNames() []string {
	var result []string
	for name := range e.Dependencies {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func encode(entry *Entry) ([]byte, error) {
	entry.Version = Version
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode cache entry %s", entry.Module)
	}
	return data, nil
}

func decode(module string, data []byte) (*Entry, error) {
	entry := &Entry{}
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, errors.Wrapf(err, "failed to decode cache entry %s", module)
	}
	return entry, nil
}

func formatHash(hash uint64) string {
	return strconv.FormatUint(hash, 16)
}

// Backend names
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
)

// Open creates the store of a backend; location is a base URL for fs and a database path
// for sqlite
func Open(backend, location string, logger *zap.SugaredLogger) (Store, error) {
	switch backend {
	case BackendFS:
		return NewFSStore(location), nil
	case BackendSQLite:
		store, err := OpenSQLite(location, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, errors.WithHint(errors.Newf("unsupported cache backend %q", backend), "use fs or sqlite")
}
