package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelsSource = `from pynamodb.attributes import NumberAttribute, UnicodeAttribute
from pynamodb.models import Model

class Thing(Model):
    id = UnicodeAttribute(hash_key=True)
    size = NumberAttribute(null=True)
`

func writeProject(t *testing.T, main string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.py"), []byte(modelsSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte(main), 0o644))
	return dir
}

func TestExecute_Check(t *testing.T) {
	var testCases = []struct {
		description string
		main        string
		args        []string
		expectCode  int
		expect      []string
	}{
		{
			description: "clean project",
			main:        "from models import Thing\n\nThing('id', size=None)\n",
			args:        []string{"--no-cache", "--no-color"},
			expectCode:  0,
			expect:      []string{"Success: no issues found in 2 source files"},
		},
		{
			description: "errors fail the run",
			main:        "from models import Thing\n\nThing(1)\n",
			args:        []string{"--no-cache", "--no-color"},
			expectCode:  1,
			expect: []string{
				`main.py:3: error: Argument 1 to "Thing" has incompatible type "int"; expected "str"  [arg-type]`,
				"Found 1 error in 1 file (checked 2 source files)",
			},
		},
		{
			description: "sqlite cache",
			main:        "from models import Thing\n\nreveal_type(Thing().size)\n",
			args:        []string{"--no-color", "--cache-backend", "sqlite"},
			expectCode:  0,
			expect:      []string{`main.py:3: note: Revealed type is "Union[builtins.float, None]"`},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			dir := writeProject(t, testCase.main)
			args := append([]string{"check", dir, "--cache-dir", filepath.Join(t.TempDir(), "cache.db")}, testCase.args...)
			stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
			code := execute(args, stdout, stderr)
			assert.Equal(t, testCase.expectCode, code, stderr.String())
			for _, expect := range testCase.expect {
				assert.Contains(t, stdout.String(), expect)
			}
		})
	}
}

func TestExecute_CheckJSON(t *testing.T) {
	dir := writeProject(t, "from models import Thing\n\nThing(1)\n")
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := execute([]string{"check", dir, "--no-cache", "--format", "json"}, stdout, stderr)
	assert.Equal(t, 1, code, stderr.String())
	var diagnostics []map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &diagnostics))
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "arg-type", diagnostics[0]["code"])
}

func TestExecute_Failures(t *testing.T) {
	var testCases = []struct {
		description string
		args        []string
		expect      string
	}{
		{description: "no paths", args: []string{"check"}},
		{description: "bad format", args: []string{"check", ".", "--no-cache", "--format", "xml"}, expect: "hint: use text or json"},
		{description: "missing path", args: []string{"check", "does-not-exist", "--no-cache"}, expect: "hint: pass Python files or directories"},
		{description: "missing config", args: []string{"check", ".", "--config", "absent.yaml"}, expect: "failed to read config file"},
	}
	for _, testCase := range testCases {
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		code := execute(testCase.args, stdout, stderr)
		assert.Equal(t, 2, code, testCase.description)
		assert.Contains(t, stderr.String(), testCase.expect, testCase.description)
	}
}

func TestExecute_Version(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	assert.Equal(t, 0, execute([]string{"version"}, stdout, stderr))
	assert.Contains(t, stdout.String(), "attrcheck version: dev")
}

func TestExecute_CheckLogsProject(t *testing.T) {
	dir := writeProject(t, "from models import Thing\n\nThing('id')\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte("[project]\nname = \"shop\"\n"), 0o644))
	configPath := filepath.Join(t.TempDir(), "attrcheck.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: info\ncache:\n  enabled: false\n"), 0o644))

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := execute([]string{"check", dir, "--config", configPath, "--no-color"}, stdout, stderr)
	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "project detected")
	assert.Contains(t, stderr.String(), "shop")
}
