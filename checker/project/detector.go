// Package project locates the Python project and package layout around source files
package project

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// Kinds of detected projects
const (
	KindPython  = "python"
	KindGit     = "git"
	KindUnknown = "unknown"
)

const packageMarker = "__init__.py"

var (
	pyProjectName = regexp.MustCompile(`(?m)^\s*name\s*=\s*["']([^"']+)["']`)
	setupName     = regexp.MustCompile(`name\s*=\s*["']([^"']+)["']`)
)

// Project represents a detected project
type Project struct {
	// Root is the URL of the project root folder
	Root string
	Kind string
	Name string
}

// Detector identifies project roots and module names of Python files
type Detector struct {
	fs      afs.Service
	markers []string
}

// New creates a detector
func New(fs afs.Service) *Detector {
	if fs == nil {
		fs = afs.New()
	}
	return &Detector{
		fs: fs,
		markers: []string{
			"pyproject.toml",
			"setup.py",
			"setup.cfg",
			"requirements.txt",
			".git",
		},
	}
}

// Detect searches up from the folder of URL for project markers; without a marker the
// folder itself is the root
func (d *Detector) Detect(ctx context.Context, URL string, isDir bool) (*Project, error) {
	dir := URL
	if !isDir {
		dir, _ = parent(URL)
	}
	for current, ok := dir, true; ok; current, ok = parent(current) {
		for _, marker := range d.markers {
			exists, err := d.fs.Exists(ctx, url.Join(current, marker))
			if err != nil {
				return nil, errors.Wrapf(err, "failed to check %s", url.Join(current, marker))
			}
			if !exists {
				continue
			}
			result := &Project{Root: current, Kind: kind(marker)}
			result.Name = d.name(ctx, current, marker)
			return result, nil
		}
	}
	return &Project{Root: dir, Kind: KindUnknown, Name: path.Base(strings.TrimSuffix(dir, "/"))}, nil
}

// ModuleName returns the dotted module name of a Python file: enclosing folders holding
// __init__.py are packages and contribute to the name
func (d *Detector) ModuleName(ctx context.Context, fileURL string) (string, error) {
	name := strings.TrimSuffix(path.Base(fileURL), ".py")
	parts := []string{}
	if name != "__init__" {
		parts = append(parts, name)
	}
	dir, ok := parent(fileURL)
	for ok {
		exists, err := d.fs.Exists(ctx, url.Join(dir, packageMarker))
		if err != nil {
			return "", errors.Wrapf(err, "failed to check package %s", dir)
		}
		if !exists {
			break
		}
		parts = append([]string{path.Base(dir)}, parts...)
		dir, ok = parent(dir)
	}
	if len(parts) == 0 {
		return "", errors.Newf("no module name for %s", fileURL)
	}
	return strings.Join(parts, "."), nil
}

func (d *Detector) name(ctx context.Context, root, marker string) string {
	fallback := path.Base(strings.TrimSuffix(root, "/"))
	var expr *regexp.Regexp
	switch marker {
	case "pyproject.toml":
		expr = pyProjectName
	case "setup.py", "setup.cfg":
		expr = setupName
	default:
		return fallback
	}
	data, err := d.fs.DownloadWithURL(ctx, url.Join(root, marker))
	if err != nil {
		return fallback
	}
	matches := expr.FindSubmatch(data)
	if len(matches) < 2 {
		return fallback
	}
	return string(matches[1])
}

func kind(marker string) string {
	if marker == ".git" {
		return KindGit
	}
	return KindPython
}

// parent returns the URL of the enclosing folder; false at the file system root
func parent(URL string) (string, bool) {
	trimmed := strings.TrimSuffix(URL, "/")
	index := strings.LastIndex(trimmed, "/")
	if index == -1 {
		return "", false
	}
	result := trimmed[:index]
	if strings.HasSuffix(result, ":/") || strings.HasSuffix(result, ":") || result == "" {
		return "", false
	}
	if scheme := strings.Index(result, "://"); scheme != -1 && !strings.Contains(result[scheme+3:], "/") {
		// host only, e.g. mem://localhost
		return "", false
	}
	return result, true
}
