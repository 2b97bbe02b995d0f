// Package python converts Python source into the checker's syntax tree using tree-sitter
package python

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/viant/afs"
	"github.com/viant/attrcheck/checker/graph"
)

// SyntaxError is returned when the source cannot be parsed
type SyntaxError struct {
	Path     string
	Position graph.Position
	Text     string
}

// Error implements error
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: invalid syntax near %q", e.Path, e.Position.Line, e.Text)
}

// Inspector parses Python modules
type Inspector struct {
	fs     afs.Service
	source []byte
}

// NewInspector creates a new Inspector
func NewInspector() *Inspector {
	return &Inspector{fs: afs.New()}
}

// InspectSource parses source code and returns the module syntax tree
func (i *Inspector) InspectSource(moduleName, path string, src []byte) (*graph.Module, error) {
	i.source = src

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if errNode := findErrorNode(rootNode); errNode != nil {
		text := errNode.Content(src)
		if idx := strings.IndexByte(text, '\n'); idx != -1 {
			text = text[:idx]
		}
		return nil, &SyntaxError{Path: path, Position: position(errNode), Text: text}
	}

	module := graph.NewModule(moduleName, path, src)
	module.Defs = i.statements(rootNode)
	return module, nil
}

// InspectFile downloads and parses a source file
func (i *Inspector) InspectFile(ctx context.Context, moduleName, URL string) (*graph.Module, error) {
	src, err := i.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %s", URL)
	}
	return i.InspectSource(moduleName, URL, src)
}

// findErrorNode returns the first error or missing node in document order
func findErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for j := 0; j < int(node.ChildCount()); j++ {
		if found := findErrorNode(node.Child(j)); found != nil {
			return found
		}
	}
	return node
}

func position(node *sitter.Node) graph.Position {
	point := node.StartPoint()
	return graph.Position{Line: int(point.Row) + 1, Column: int(point.Column)}
}

func (i *Inspector) content(node *sitter.Node) string {
	return node.Content(i.source)
}

// namedChildren returns the named children, skipping comments
func namedChildren(node *sitter.Node) []*sitter.Node {
	var result []*sitter.Node
	for j := 0; j < int(node.NamedChildCount()); j++ {
		child := node.NamedChild(j)
		if child.Type() == "comment" {
			continue
		}
		result = append(result, child)
	}
	return result
}
