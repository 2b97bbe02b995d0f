package checker

import (
	"fmt"
	"strings"

	"github.com/viant/attrcheck/checker/graph"
)

func quote(text string) string {
	return `"` + text + `"`
}

func forCallee(name string) string {
	if name == "" {
		return ""
	}
	return " for " + quote(name)
}

func inCallTo(name string) string {
	if name == "" {
		return ""
	}
	return " in call to " + quote(name)
}

func nameNotDefined(name string) string {
	return fmt.Sprintf("Name %s is not defined", quote(name))
}

func hasNoAttribute(typ graph.Type, name string) string {
	return fmt.Sprintf("%s has no attribute %s", quote(graph.FormatShort(typ)), quote(name))
}

func itemHasNoAttribute(item, union graph.Type, name string) string {
	return fmt.Sprintf("Item %s of %s has no attribute %s", quote(graph.FormatShort(item)), quote(graph.FormatShort(union)), quote(name))
}

func tooManyPositional(callee string) string {
	return "Too many positional arguments" + forCallee(callee)
}

func unexpectedKeyword(name, callee string) string {
	return fmt.Sprintf("Unexpected keyword argument %s%s", quote(name), forCallee(callee))
}

func multipleValues(name, callee string) string {
	subject := "Function"
	if callee != "" {
		subject = quote(callee)
	}
	return fmt.Sprintf("%s gets multiple values for keyword argument %s", subject, quote(name))
}

func missingPositional(names []string, callee string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = quote(name)
	}
	noun := "argument"
	if len(names) > 1 {
		noun = "arguments"
	}
	return fmt.Sprintf("Missing positional %s %s%s", noun, strings.Join(quoted, ", "), inCallTo(callee))
}

func missingNamed(name, callee string) string {
	return fmt.Sprintf("Missing named argument %s%s", quote(name), forCallee(callee))
}

func incompatibleArgument(position int, name, callee string, actual, expected graph.Type) string {
	argument := fmt.Sprintf("Argument %d", position)
	if name != "" {
		argument = "Argument " + quote(name)
	}
	to := ""
	if callee != "" {
		to = " to " + quote(callee)
	}
	return fmt.Sprintf("%s%s has incompatible type %s; expected %s", argument, to, quote(graph.FormatShort(actual)), quote(graph.FormatShort(expected)))
}

func incompatibleAssignment(actual, expected graph.Type) string {
	return fmt.Sprintf("Incompatible types in assignment (expression has type %s, variable has type %s)", quote(graph.FormatShort(actual)), quote(graph.FormatShort(expected)))
}

func notCallable(typ graph.Type) string {
	return fmt.Sprintf("%s not callable", quote(graph.FormatShort(typ)))
}

func revealedType(typ graph.Type) string {
	return fmt.Sprintf("Revealed type is %s", quote(typ.String()))
}

func moduleNotFound(name string) string {
	return fmt.Sprintf("Cannot find implementation or library stub for module named %s", quote(name))
}

func moduleHasNoAttribute(module, name string) string {
	return fmt.Sprintf("Module %s has no attribute %s", quote(module), quote(name))
}

func invalidBaseClass(text string) string {
	return fmt.Sprintf("Invalid base class %s", quote(text))
}

func inconsistentMRO(name string) string {
	return fmt.Sprintf("Cannot determine consistent method resolution order (MRO) for %s", quote(name))
}

func inheritanceCycle(name string) string {
	return fmt.Sprintf("Cycle in inheritance hierarchy of %s", quote(name))
}

func invalidType(text string) string {
	return fmt.Sprintf("Invalid type %s", quote(text))
}

const cannotAssignToMethod = "Cannot assign to a method"
