package project

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

func upload(t *testing.T, fs afs.Service, baseURL string, files map[string]string) {
	for name, content := range files {
		require.NoError(t, fs.Upload(context.Background(), baseURL+"/"+name, file.DefaultFileOsMode, strings.NewReader(content)))
	}
}

func TestDetector_Detect(t *testing.T) {
	var testCases = []struct {
		description string
		baseURL     string
		files       map[string]string
		target      string
		isDir       bool
		expect      *Project
	}{
		{
			description: "pyproject name",
			baseURL:     "mem://localhost/detector/pyproject",
			files: map[string]string{
				"pyproject.toml":  "[project]\nname = \"billing\"\nversion = \"1.0\"\n",
				"src/app/main.py": "",
			},
			target: "src/app/main.py",
			expect: &Project{Root: "mem://localhost/detector/pyproject", Kind: KindPython, Name: "billing"},
		},
		{
			description: "setup.py name",
			baseURL:     "mem://localhost/detector/setup",
			files: map[string]string{
				"setup.py":  "from setuptools import setup\nsetup(name='orders')\n",
				"models.py": "",
			},
			target: "models.py",
			expect: &Project{Root: "mem://localhost/detector/setup", Kind: KindPython, Name: "orders"},
		},
		{
			description: "requirements fall back to folder name",
			baseURL:     "mem://localhost/detector/reqs",
			files:       map[string]string{"requirements.txt": "pynamodb\n", "pkg/a.py": ""},
			target:      "pkg",
			isDir:       true,
			expect:      &Project{Root: "mem://localhost/detector/reqs", Kind: KindPython, Name: "reqs"},
		},
		{
			description: "no marker",
			baseURL:     "mem://localhost/detector/plain",
			files:       map[string]string{"lib/a.py": ""},
			target:      "lib/a.py",
			expect:      &Project{Root: "mem://localhost/detector/plain/lib", Kind: KindUnknown, Name: "lib"},
		},
	}
	fs := afs.New()
	for _, testCase := range testCases {
		upload(t, fs, testCase.baseURL, testCase.files)
		actual, err := New(fs).Detect(context.Background(), testCase.baseURL+"/"+testCase.target, testCase.isDir)
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestDetector_ModuleName(t *testing.T) {
	baseURL := "mem://localhost/detector/modules"
	fs := afs.New()
	upload(t, fs, baseURL, map[string]string{
		"app/__init__.py":        "",
		"app/models/__init__.py": "",
		"app/models/user.py":     "",
		"scripts/run.py":         "",
		"top.py":                 "",
	})
	var testCases = []struct {
		description string
		target      string
		expect      string
	}{
		{description: "nested package module", target: "app/models/user.py", expect: "app.models.user"},
		{description: "package initializer", target: "app/models/__init__.py", expect: "app.models"},
		{description: "folder without initializer", target: "scripts/run.py", expect: "run"},
		{description: "top level module", target: "top.py", expect: "top"},
	}
	for _, testCase := range testCases {
		actual, err := New(fs).ModuleName(context.Background(), baseURL+"/"+testCase.target)
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestParent(t *testing.T) {
	var testCases = []struct {
		URL    string
		expect string
		ok     bool
	}{
		{URL: "file:///tmp/project/app", expect: "file:///tmp/project", ok: true},
		{URL: "file:///tmp/", expect: "", ok: false},
		{URL: "mem://localhost/a/b.py", expect: "mem://localhost/a", ok: true},
		{URL: "mem://localhost/a", expect: "", ok: false},
	}
	for _, testCase := range testCases {
		actual, ok := parent(testCase.URL)
		assert.Equal(t, testCase.expect, actual, testCase.URL)
		assert.Equal(t, testCase.ok, ok, testCase.URL)
	}
}
