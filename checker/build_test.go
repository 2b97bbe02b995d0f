package checker_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/attrcheck/checker"
	"github.com/viant/attrcheck/checker/cache"
	"github.com/viant/attrcheck/checker/fixture"
	"github.com/viant/attrcheck/checker/report"
)

func TestBuild_Check(t *testing.T) {
	var testCases = []*fixture.Case{
		{
			Description: "inferred and declared member types",
			Program: `
from typing import Optional

class User:
    name: Optional[str] = None
    age = 1

    def greet(self, other: str) -> str: ...

user = User()
reveal_type(user)  # N: Revealed type is "__main__.User"
reveal_type(user.age)  # N: Revealed type is "builtins.int"
reveal_type(user.name)  # N: Revealed type is "Union[builtins.str, None]"
reveal_type(user.greet)  # N: Revealed type is "def (other: builtins.str) -> builtins.str"
user.name.lower()  # E: Item "None" of "Optional[str]" has no attribute "lower"  [union-attr]
user.age = 'old'  # E: Incompatible types in assignment (expression has type "str", variable has type "int")  [assignment]
user.missing  # E: "User" has no attribute "missing"  [attr-defined]
`,
		},
		{
			Description: "call argument matching",
			Program: `
def greet(name: str, *, loud: bool = False) -> str: ...

greet('a')
greet(1)  # E: Argument 1 to "greet" has incompatible type "int"; expected "str"  [arg-type]
greet()  # E: Missing positional argument "name" in call to "greet"  [call-arg]
greet('a', 'b')  # E: Too many positional arguments for "greet"  [call-arg]
greet('a', shout=True)  # E: Unexpected keyword argument "shout" for "greet"  [call-arg]
greet('a', name='b')  # E: "greet" gets multiple values for keyword argument "name"  [misc]
reveal_type(greet('a', loud=True))  # N: Revealed type is "builtins.str"
undefined()  # E: Name "undefined" is not defined  [name-defined]
`,
		},
		{
			Description: "imports of library stubs",
			Program: `
import pynamodb.models
from pynamodb.attributes import NumberAttribute, Missing  # E: Module "pynamodb.attributes" has no attribute "Missing"  [attr-defined]
from nowhere import thing  # E: Cannot find implementation or library stub for module named "nowhere"  [import]

reveal_type(pynamodb.models.Model().to_json())  # N: Revealed type is "builtins.str"
reveal_type(NumberAttribute().exists)  # N: Revealed type is "def () -> pynamodb.expressions.condition.Exists"
`,
		},
		{
			Description: "generic classes and method resolution order",
			Program: `
from typing import Generic, TypeVar

T = TypeVar('T')

class Box(Generic[T]):
    def get(self) -> T: ...

class IntBox(Box[int]): ...

class A: ...
class B(A): ...
class C(A, B): ...  # E: Cannot determine consistent method resolution order (MRO) for "C"  [misc]

reveal_type(IntBox().get())  # N: Revealed type is "builtins.int"
reveal_type(Box().get())  # N: Revealed type is "Any"
`,
		},
		{
			Description: "imports between checked modules",
			Program: `
from shapes import Square

reveal_type(Square().side)  # N: Revealed type is "builtins.float"
`,
			Modules: map[string]string{
				"shapes": `
class Square:
    side = 1.5
`,
			},
		},
	}

	build := checker.New()
	for _, testCase := range testCases {
		outcomes, err := testCase.Run(context.Background(), build)
		if !assert.NoError(t, err, testCase.Description) {
			continue
		}
		for _, outcome := range outcomes {
			assert.Equal(t, outcome.Expected, outcome.Actual, testCase.Description+": "+outcome.Module)
		}
	}
}

func TestBuild_Check_SyntaxError(t *testing.T) {
	build := checker.New()
	result, err := build.Check(context.Background(), []*checker.Source{
		{Module: "__main__", Path: "__main__.py", Data: []byte("class Broken(:\n    pass\n")},
	})
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, report.CodeSyntax, result.Diagnostics[0].Code)
	assert.Equal(t, 1, result.Diagnostics[0].Line)
	assert.Empty(t, result.Checked)
}

func TestBuild_Check_Cache(t *testing.T) {
	models := `from pynamodb.attributes import NumberAttribute
from pynamodb.models import Model

class Thing(Model):
    size = NumberAttribute()
`
	main := `from models import Thing

thing = Thing()
reveal_type(thing)
missing_name
`
	sources := func(models, main string) []*checker.Source {
		return []*checker.Source{
			{Module: "__main__", Path: "__main__.py", Data: []byte(main)},
			{Module: "models", Path: "models.py", Data: []byte(models)},
		}
	}

	var testCases = []struct {
		description string
		models      string
		main        string
		checked     []string
		cached      []string
	}{
		{description: "cold cache", models: models, main: main, checked: []string{"models", "__main__"}},
		{description: "warm cache", models: models, main: main, cached: []string{"models", "__main__"}},
		{description: "changed importer", models: models, main: main + "x = 1\n", checked: []string{"__main__"}, cached: []string{"models"}},
		{description: "unchanged interface", models: "# size in inches\n" + models, main: main + "x = 1\n", checked: []string{"models"}, cached: []string{"__main__"}},
		{description: "changed interface", models: models + "    weight = 1.5\n", main: main + "x = 1\n", checked: []string{"models", "__main__"}},
	}

	store := cache.NewFSStore("mem://localhost/attrcheck/build_test/cache")
	build := checker.New(checker.WithCache(store))
	for _, testCase := range testCases {
		result, err := build.Check(context.Background(), sources(testCase.models, testCase.main))
		require.NoError(t, err, testCase.description)
		assert.ElementsMatch(t, testCase.checked, result.Checked, testCase.description)
		assert.ElementsMatch(t, testCase.cached, result.Cached, testCase.description)

		var texts []string
		for _, diagnostic := range result.Diagnostics {
			texts = append(texts, diagnostic.String())
		}
		assert.Equal(t, []string{
			`__main__.py:4: note: Revealed type is "models.Thing"`,
			`__main__.py:5: error: Name "missing_name" is not defined  [name-defined]`,
		}, texts, testCase.description)
	}
}

func TestBuild_CheckURLs(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	baseURL := "mem://localhost/attrcheck/build_test/project"
	files := map[string]string{
		"app/__init__.py": "",
		"app/models.py":   "class Item:\n    price = 1.5\n",
		"app/main.py":     "from app.models import Item\nreveal_type(Item().price)\n",
	}
	for name, content := range files {
		require.NoError(t, fs.Upload(ctx, baseURL+"/"+name, file.DefaultFileOsMode, strings.NewReader(content)))
	}

	result, err := checker.New().CheckURLs(ctx, baseURL)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Files)
	assert.ElementsMatch(t, []string{"app", "app.models", "app.main"}, result.Checked)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, `Revealed type is "builtins.float"`, result.Diagnostics[0].Message)
	assert.Equal(t, "app.main", result.Diagnostics[0].Module)
}

func TestBuild_CheckURLs_File(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	baseURL := "mem://localhost/attrcheck/build_test/single"
	files := map[string]string{
		"shop/__init__.py": "",
		"shop/models.py":   "class Item:\n    price = 1.5\nreveal_type(Item.price)\n",
	}
	for name, content := range files {
		require.NoError(t, fs.Upload(ctx, baseURL+"/"+name, file.DefaultFileOsMode, strings.NewReader(content)))
	}

	result, err := checker.New().CheckURLs(ctx, baseURL+"/shop/models.py")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, []string{"shop.models"}, result.Checked)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "shop.models", result.Diagnostics[0].Module)
}

func TestBuild_Check_StubsAnalyzeCleanly(t *testing.T) {
	program := `from datetime import datetime
from pynamodb.attributes import Attribute, MapAttribute, UTCDateTimeAttribute
from pynamodb.models import Model

reveal_type(Model().save())
reveal_type(MapAttribute().attr_name)
`
	result, err := checker.New().Check(context.Background(), []*checker.Source{{Module: "__main__", Path: "__main__.py", Data: []byte(program)}})
	require.NoError(t, err)
	var texts []string
	for _, diagnostic := range result.Diagnostics {
		texts = append(texts, diagnostic.String())
	}
	assert.Equal(t, []string{
		`__main__.py:5: note: Revealed type is "builtins.dict[builtins.str, Any]"`,
		`__main__.py:6: note: Revealed type is "Union[builtins.str, None]"`,
	}, texts)
}

func TestBuild_Project(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	baseURL := "mem://localhost/attrcheck/build_test/detected"
	files := map[string]string{
		"pyproject.toml":    "[project]\nname = \"inventory\"\n",
		"src/app/models.py": "",
	}
	for name, content := range files {
		require.NoError(t, fs.Upload(ctx, baseURL+"/"+name, file.DefaultFileOsMode, strings.NewReader(content)))
	}
	build := checker.New()
	for _, target := range []string{baseURL + "/src/app/models.py", baseURL + "/src/app"} {
		detected, err := build.Project(ctx, target)
		require.NoError(t, err, target)
		assert.Equal(t, baseURL, detected.Root, target)
		assert.Equal(t, "inventory", detected.Name, target)
	}
	_, err := build.Project(ctx, baseURL+"/absent.py")
	assert.Error(t, err)
}
