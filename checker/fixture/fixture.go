// Package fixture runs annotated Python programs through the checker and rebuilds them
// with the reported diagnostics as `# N:` / `# E:` comments, so expected and actual
// output can be compared as text
package fixture

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
	"github.com/viant/attrcheck/checker"
	"github.com/viant/attrcheck/checker/report"
	"gopkg.in/yaml.v3"
)

// MainModule is the module name of a case program
const MainModule = "__main__"

type (
	// Suite is a named list of cases loaded from a YAML document
	Suite struct {
		Name  string  `yaml:"name"`
		URL   string  `yaml:"-"`
		Cases []*Case `yaml:"cases"`
	}

	// Case is an annotated program; Modules are extra modules it may import, keyed by
	// module name, also annotated
	Case struct {
		Description string            `yaml:"description"`
		Program     string            `yaml:"program"`
		Modules     map[string]string `yaml:"modules,omitempty"`
	}

	// Outcome holds the expected and the reconstructed program of a module
	Outcome struct {
		Module   string
		Expected string
		Actual   string
	}
)

// Load reads a suite
func Load(ctx context.Context, fs afs.Service, URL string) (*Suite, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read suite %s", URL)
	}
	suite := &Suite{}
	if err = yaml.Unmarshal(data, suite); err != nil {
		return nil, errors.Wrapf(err, "failed to parse suite %s", URL)
	}
	if suite.Name == "" {
		suite.Name = strings.TrimSuffix(path.Base(URL), path.Ext(URL))
	}
	suite.URL = URL
	return suite, nil
}

// LoadAll reads every .yaml suite under baseURL, ordered by location
func LoadAll(ctx context.Context, fs afs.Service, baseURL string) ([]*Suite, error) {
	var locations []string
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if !info.IsDir() && (path.Ext(info.Name()) == ".yaml" || path.Ext(info.Name()) == ".yml") {
			locations = append(locations, url.Join(url.Join(baseURL, parent), info.Name()))
		}
		return true, nil
	}
	if err := fs.Walk(ctx, baseURL, visitor); err != nil {
		return nil, errors.Wrapf(err, "failed to list suites in %s", baseURL)
	}
	sort.Strings(locations)
	var result []*Suite
	for _, location := range locations {
		suite, err := Load(ctx, fs, location)
		if err != nil {
			return nil, err
		}
		result = append(result, suite)
	}
	return result, nil
}

// Run checks the case and returns one outcome per module, the main program first;
// diagnostics reported in any other file come last, one outcome per file
func (c *Case) Run(ctx context.Context, build *checker.Build) ([]*Outcome, error) {
	programs := map[string]string{MainModule: c.Program}
	names := []string{MainModule}
	var others []string
	for name, program := range c.Modules {
		programs[name] = program
		others = append(others, name)
	}
	sort.Strings(others)
	names = append(names, others...)

	var sources []*checker.Source
	for _, name := range names {
		sources = append(sources, &checker.Source{
			Module: name,
			Path:   modulePath(name),
			Data:   []byte(report.Strip(normalize(programs[name]))),
		})
	}
	result, err := build.Check(ctx, sources)
	if err != nil {
		return nil, err
	}
	byPath := map[string]report.Diagnostics{}
	for _, diagnostic := range result.Diagnostics {
		byPath[diagnostic.Path] = append(byPath[diagnostic.Path], diagnostic)
	}
	var outcomes []*Outcome
	for _, name := range names {
		expected := normalize(programs[name])
		outcomes = append(outcomes, &Outcome{
			Module:   name,
			Expected: expected,
			Actual:   report.Annotate(expected, byPath[modulePath(name)]),
		})
		delete(byPath, modulePath(name))
	}
	return append(outcomes, unexpected(byPath)...), nil
}

// unexpected reports diagnostics of files that are not part of the case, e.g. library
// stubs; nothing is expected there
func unexpected(byPath map[string]report.Diagnostics) []*Outcome {
	var paths []string
	for location := range byPath {
		paths = append(paths, location)
	}
	sort.Strings(paths)
	var result []*Outcome
	for _, location := range paths {
		var lines []string
		for _, diagnostic := range byPath[location] {
			lines = append(lines, diagnostic.String())
		}
		result = append(result, &Outcome{Module: location, Actual: strings.Join(lines, "\n")})
	}
	return result
}

func modulePath(module string) string {
	return strings.ReplaceAll(module, ".", "/") + ".py"
}

// normalize drops surrounding blank lines the way YAML block scalars keep them
func normalize(program string) string {
	return strings.Trim(program, "\n")
}
