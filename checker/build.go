package checker

import (
	"context"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/attrcheck/checker/cache"
	"github.com/viant/attrcheck/checker/graph"
	"github.com/viant/attrcheck/checker/project"
	"github.com/viant/attrcheck/checker/python"
	"github.com/viant/attrcheck/checker/report"
	"github.com/viant/attrcheck/checker/stubs"
	"go.uber.org/zap"
)

type (
	// Source is a module to check
	Source struct {
		Module string
		Path   string
		Data   []byte
	}

	// Result is the outcome of a build
	Result struct {
		Modules     graph.Modules
		Diagnostics report.Diagnostics
		// Checked lists the modules that were type checked
		Checked []string
		// Cached lists the modules restored from the cache
		Cached []string
		Files  int
	}

	// Build checks a set of modules with their library stubs
	Build struct {
		plugin     Plugin
		store      cache.Store
		logger     *zap.SugaredLogger
		fs         afs.Service
		inspector  *python.Inspector
		detector   *project.Detector
		generation int
	}

	// Option configures a build
	Option func(b *Build)
)

// WithPlugin registers the type hook plugin
func WithPlugin(plugin Plugin) Option {
	return func(b *Build) {
		b.plugin = plugin
	}
}

// WithCache enables the incremental cache
func WithCache(store cache.Store) Option {
	return func(b *Build) {
		b.store = store
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(b *Build) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a build
func New(options ...Option) *Build {
	b := &Build{
		logger:    zap.NewNop().Sugar(),
		fs:        afs.New(),
		inspector: python.NewInspector(),
	}
	for _, option := range options {
		option(b)
	}
	b.detector = project.New(b.fs)
	return b
}

// CheckURLs checks Python files; directories are walked and module names derive from the
// path relative to the directory
func (b *Build) CheckURLs(ctx context.Context, URLs ...string) (*Result, error) {
	var sources []*Source
	for _, URL := range URLs {
		object, err := b.fs.Object(ctx, URL)
		if err != nil {
			return nil, errors.WithHint(errors.Wrapf(err, "failed to locate %s", URL), "pass Python files or directories")
		}
		if !object.IsDir() {
			module, err := b.detector.ModuleName(ctx, URL)
			if err != nil {
				return nil, err
			}
			source, err := b.load(ctx, URL, module)
			if err != nil {
				return nil, err
			}
			sources = append(sources, source)
			continue
		}
		var files []string
		var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
			if info.IsDir() {
				return !strings.HasPrefix(info.Name(), ".") && info.Name() != "__pycache__", nil
			}
			if path.Ext(info.Name()) == ".py" {
				files = append(files, path.Join(parent, info.Name()))
			}
			return true, nil
		}
		if err := b.fs.Walk(ctx, URL, visitor); err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s", URL)
		}
		sort.Strings(files)
		for _, file := range files {
			source, err := b.load(ctx, url.Join(URL, file), moduleName(file))
			if err != nil {
				return nil, err
			}
			sources = append(sources, source)
		}
	}
	return b.Check(ctx, sources)
}

// Project detects the project enclosing a file or folder URL
func (b *Build) Project(ctx context.Context, URL string) (*project.Project, error) {
	object, err := b.fs.Object(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to locate %s", URL)
	}
	return b.detector.Detect(ctx, URL, object.IsDir())
}

func (b *Build) load(ctx context.Context, URL, module string) (*Source, error) {
	data, err := b.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", URL)
	}
	return &Source{Module: module, Path: URL, Data: data}, nil
}

// moduleName converts a relative file path (pkg/models.py) to a module name (pkg.models)
func moduleName(file string) string {
	name := strings.TrimSuffix(strings.TrimPrefix(file, "/"), ".py")
	name = strings.TrimSuffix(name, "/__init__")
	return strings.ReplaceAll(name, "/", ".")
}

// Check parses, analyzes and checks the sources
func (b *Build) Check(ctx context.Context, sources []*Source) (*Result, error) {
	b.generation++
	collector := report.NewCollector()
	modules := graph.Modules{stubs.Typing: stubs.TypingModule()}
	checker := newTypeChecker(modules, b.plugin, collector, b.generation, b.logger)
	result := &Result{Modules: modules, Files: len(sources)}

	parsed := map[string]*graph.Module{}
	var roots []string
	for _, source := range sources {
		module, err := b.inspector.InspectSource(source.Module, source.Path, source.Data)
		if err != nil {
			var syntaxErr *python.SyntaxError
			if !errors.As(err, &syntaxErr) {
				return nil, err
			}
			collector.Add(&report.Diagnostic{Path: source.Path, Module: source.Module, Line: syntaxErr.Position.Line, Column: syntaxErr.Position.Column, Severity: report.SeverityError, Message: "Invalid syntax", Code: report.CodeSyntax})
			continue
		}
		parsed[source.Module] = module
		roots = append(roots, source.Module)
	}

	order, err := b.order(parsed, roots)
	if err != nil {
		return nil, err
	}
	if b.plugin != nil {
		b.plugin.SetModules(modules)
	}

	hashes := map[string]uint64{}
	for _, module := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		modules[module.Name] = module
		checker.module = module
		newSemanticAnalyzer(modules, module, checker.Fail).analyze()

		sourceHash, err := graph.Hash(module.Source)
		if err != nil {
			return nil, err
		}
		if module.IsStub {
			hashes[module.Name] = sourceHash
			continue
		}
		dependencies := map[string]uint64{}
		for _, name := range module.Imports {
			dependencies[name] = hashes[name]
		}
		if b.restore(ctx, modules, module, sourceHash, dependencies, collector, hashes) {
			result.Cached = append(result.Cached, module.Name)
			continue
		}

		checker.CheckModule(module)
		result.Checked = append(result.Checked, module.Name)
		iface := exportInterface(module)
		interfaceHash, err := iface.Hash()
		if err != nil {
			return nil, err
		}
		hashes[module.Name] = interfaceHash
		if b.store == nil {
			continue
		}
		entry := &cache.Entry{
			Module:        module.Name,
			Path:          module.Path,
			SourceHash:    sourceHash,
			Dependencies:  dependencies,
			Interface:     iface,
			InterfaceHash: interfaceHash,
			Diagnostics:   collector.Module(module.Name),
		}
		if err := b.store.Put(ctx, entry); err != nil {
			b.logger.Warnw("failed to update cache", "module", module.Name, "error", err)
		}
	}
	result.Diagnostics = collector.Diagnostics()
	return result, nil
}

// restore applies a fresh cache entry; false means the module has to be checked
func (b *Build) restore(ctx context.Context, modules graph.Modules, module *graph.Module, sourceHash uint64, dependencies map[string]uint64, collector *report.Collector, hashes map[string]uint64) bool {
	if b.store == nil {
		return false
	}
	entry, err := b.store.Get(ctx, module.Name)
	if err != nil {
		b.logger.Warnw("failed to read cache, checking module", "module", module.Name, "error", err)
		return false
	}
	if !entry.Fresh(sourceHash, dependencies) {
		return false
	}
	if err := restoreInterface(modules, module, entry.Interface); err != nil {
		b.logger.Infow("stale cache entry, checking module", "module", module.Name, "error", err)
		return false
	}
	collector.AddAll(entry.Diagnostics)
	hashes[module.Name] = entry.InterfaceHash
	b.logger.Debugw("module restored from cache", "module", module.Name)
	return true
}

// order loads stubs on demand and returns modules with dependencies first
func (b *Build) order(parsed map[string]*graph.Module, roots []string) ([]*graph.Module, error) {
	loaded := map[string]*graph.Module{}
	load := func(name string) (*graph.Module, error) {
		if module, ok := loaded[name]; ok {
			return module, nil
		}
		if module, ok := parsed[name]; ok {
			loaded[name] = module
			return module, nil
		}
		stub, ok := stubs.Lookup(name)
		if !ok {
			loaded[name] = nil
			return nil, nil
		}
		module, err := b.inspector.InspectSource(stub.Module, stub.Path, stub.Source)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid library stub %s", stub.Path)
		}
		module.IsStub = true
		loaded[name] = module
		return module, nil
	}

	var result []*graph.Module
	state := map[string]bool{}
	var visit func(name string) error
	visit = func(name string) error {
		if name == stubs.Typing {
			return nil
		}
		if _, seen := state[name]; seen {
			return nil
		}
		module, err := load(name)
		if err != nil || module == nil {
			return err
		}
		state[name] = false
		var imports []string
		if name != stubs.Builtins {
			imports = append(imports, stubs.Builtins)
		}
		for _, candidate := range importCandidates(module) {
			dependency, err := load(candidate)
			if err != nil {
				return err
			}
			if dependency != nil && candidate != name {
				imports = append(imports, candidate)
			}
		}
		module.Imports = dedupe(imports)
		for _, dependency := range module.Imports {
			if err := visit(dependency); err != nil {
				return err
			}
		}
		state[name] = true
		result = append(result, module)
		return nil
	}
	if err := visit(stubs.Builtins); err != nil {
		return nil, err
	}
	if _, ok := state[stubs.Builtins]; !ok {
		return nil, errors.AssertionFailedf("builtins stub is missing")
	}
	for _, root := range roots {
		if err := visit(root); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// importCandidates lists the module names a module may import, including submodules
// named in from-imports
func importCandidates(module *graph.Module) []string {
	var result []string
	for _, stmt := range module.Defs {
		switch actual := stmt.(type) {
		case *graph.ImportFrom:
			name := absoluteModule(module.Name, actual.Module)
			result = append(result, name)
			for _, imported := range actual.Names {
				result = append(result, name+"."+imported.Name)
			}
		case *graph.Import:
			for _, imported := range actual.Names {
				parts := strings.Split(imported.Name, ".")
				for i := range parts {
					result = append(result, strings.Join(parts[:i+1], "."))
				}
			}
		}
	}
	return result
}

func dedupe(names []string) []string {
	seen := map[string]bool{}
	var result []string
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	return result
}
