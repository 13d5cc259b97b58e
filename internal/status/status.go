// Package status inspects generated project trees on disk.
package status

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RequiredFiles must all exist for a project tree to be considered valid.
var RequiredFiles = []string{
	"package.json",
	"tsconfig.json",
	"src/mastra/index.ts",
}

// skipDirs are not listed in ProjectStatus.Files.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"dist":         true,
	".mastra":      true,
}

// ProjectStatus describes one generated project directory.
type ProjectStatus struct {
	Name    string   `json:"name"`
	Exists  bool     `json:"exists"`
	IsValid bool     `json:"isValid"`
	Path    string   `json:"path"`
	Files   []string `json:"files"`
	Missing []string `json:"missing,omitempty"`
	Message string   `json:"message"`
}

// Check reports whether <outputPath>/<projectName> exists and holds the
// required files. Files lists every file in the tree, slash-separated and
// sorted, outside build and dependency directories.
func Check(projectName, outputPath string) ProjectStatus {
	path := filepath.Join(outputPath, projectName)
	st := ProjectStatus{Name: projectName, Path: path, Files: []string{}}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		st.Message = fmt.Sprintf("project %q not found in %s", projectName, outputPath)
		return st
	}
	st.Exists = true

	for _, rel := range RequiredFiles {
		if _, err := os.Stat(filepath.Join(path, filepath.FromSlash(rel))); err != nil {
			st.Missing = append(st.Missing, rel)
		}
	}

	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != path && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err == nil {
			st.Files = append(st.Files, filepath.ToSlash(rel))
		}
		return nil
	})
	sort.Strings(st.Files)

	if len(st.Missing) > 0 {
		st.Message = "missing " + strings.Join(st.Missing, ", ")
		return st
	}
	st.IsValid = true
	st.Message = fmt.Sprintf("project %q is valid (%d files)", projectName, len(st.Files))
	return st
}

// List checks every directory directly under outputPath. The second result
// is false when outputPath cannot be read.
func List(outputPath string) ([]ProjectStatus, bool) {
	entries, err := os.ReadDir(outputPath)
	if err != nil {
		return nil, false
	}

	var results []ProjectStatus
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		results = append(results, Check(entry.Name(), outputPath))
	}
	return results, true
}
