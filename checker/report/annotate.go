package report

import (
	"regexp"
	"strings"
)

var expectationComment = regexp.MustCompile(`(\s+# ([NWE]): .*)?$`)

// Annotate rebuilds a program with its diagnostics as trailing comments: `# E: msg  [code]`
// for errors, `# N: msg` for notes. Further messages for the same line are written on
// continuation lines; blank continuation lines present in the source are consumed.
func Annotate(source string, diagnostics Diagnostics) string {
	byLine := diagnostics.ByLine()
	var result []string
	extra := 0
	for i, line := range strings.Split(source, "\n") {
		line = expectationComment.ReplaceAllString(line, "")
		if extra > 0 {
			if strings.TrimSpace(line) == "" {
				extra--
				continue
			}
			extra = 0
		}
		messages := byLine[i+1]
		if len(messages) == 0 {
			result = append(result, line)
			continue
		}
		for j, message := range messages {
			comment := severityLetter(message.Severity) + ": " + message.Text()
			if j == 0 {
				result = append(result, line+"  # "+comment)
				continue
			}
			result = append(result, strings.Repeat(" ", len(line))+"  # "+comment)
			extra++
		}
	}
	return strings.Join(result, "\n")
}

// Strip removes expectation comments from a program
func Strip(source string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = expectationComment.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}

func severityLetter(severity Severity) string {
	switch severity {
	case SeverityError:
		return "E"
	case SeverityWarning:
		return "W"
	}
	return "N"
}
