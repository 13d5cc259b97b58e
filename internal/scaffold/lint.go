package scaffold

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// maxFindings caps the syntax findings reported per file.
const maxFindings = 5

// Finding is one syntax problem in a generated TypeScript file.
type Finding struct {
	File   string
	Line   int
	Column int
	Kind   string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", f.File, f.Line, f.Column, f.Kind)
}

var typescript = tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())

// LintTypeScript parses source as TypeScript and returns the error and
// missing nodes tree-sitter recovered from. A clean file yields no findings.
func LintTypeScript(path string, source []byte) ([]Finding, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(typescript); err != nil {
		return nil, fmt.Errorf("set language typescript: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	var findings []Finding
	collectErrors(root, path, &findings)
	if len(findings) == 0 {
		pos := root.StartPosition()
		findings = append(findings, Finding{File: path, Line: int(pos.Row) + 1, Column: int(pos.Column) + 1, Kind: "syntax error"})
	}
	return findings, nil
}

func collectErrors(node *tree_sitter.Node, path string, out *[]Finding) {
	if len(*out) >= maxFindings {
		return
	}
	switch {
	case node.IsMissing():
		pos := node.StartPosition()
		*out = append(*out, Finding{File: path, Line: int(pos.Row) + 1, Column: int(pos.Column) + 1, Kind: "missing " + node.Kind()})
		return
	case node.IsError():
		pos := node.StartPosition()
		*out = append(*out, Finding{File: path, Line: int(pos.Row) + 1, Column: int(pos.Column) + 1, Kind: "syntax error"})
		return
	case !node.HasError():
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		collectErrors(child, path, out)
	}
}
