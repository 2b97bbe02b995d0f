// Package stubs provides the library stubs shipped with the checker
package stubs

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/viant/attrcheck/checker/graph"
)

//go:embed all:lib
var lib embed.FS

// Builtins is the name of the builtins module
const Builtins = "builtins"

// Typing is the name of the typing module
const Typing = "typing"

// Stub is an embedded stub source
type Stub struct {
	Module string
	Path   string
	Source []byte
}

// Lookup returns the stub of a module
func Lookup(module string) (*Stub, bool) {
	base := strings.ReplaceAll(module, ".", "/")
	for _, candidate := range []string{base + ".pyi", base + "/__init__.pyi"} {
		data, err := lib.ReadFile(path.Join("lib", candidate))
		if err == nil {
			return &Stub{Module: module, Path: "stubs/" + candidate, Source: data}, true
		}
	}
	return nil, false
}

// Modules returns the names of all embedded stub modules
func Modules() []string {
	var result []string
	_ = fs.WalkDir(lib, "lib", func(name string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() || !strings.HasSuffix(name, ".pyi") {
			return err
		}
		module := strings.TrimSuffix(strings.TrimPrefix(name, "lib/"), ".pyi")
		module = strings.TrimSuffix(module, "/__init__")
		result = append(result, strings.ReplaceAll(module, "/", "."))
		return nil
	})
	sort.Strings(result)
	return result
}

// special forms of the typing module, resolved by the type analyzer
var specialForms = []string{
	"Any", "Optional", "Union", "TypeVar", "Generic", "Type", "Callable",
	"ClassVar", "Dict", "List", "Set", "Tuple",
}

// TypingModule builds the typing module; its names are special forms interpreted by
// the type analyzer rather than classes
func TypingModule() *graph.Module {
	module := graph.NewModule(Typing, "stubs/typing.pyi", nil)
	module.IsStub = true
	for _, name := range specialForms {
		module.Names[name] = &graph.Symbol{
			Kind:     graph.SymbolSpecialForm,
			Name:     name,
			Fullname: Typing + "." + name,
		}
	}
	return module
}
