package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// shorthandRule rewrites one field:value term into expr syntax.
type shorthandRule struct {
	pattern *regexp.Regexp
	rewrite func(m []string) (string, error)
}

var shorthandRules = []shorthandRule{
	// status:"download pending", status!:"seed pending"
	{
		pattern: regexp.MustCompile(`status(!?):"([^"]+)"`),
		rewrite: rewriteStatus,
	},
	// status:seeding, status!:stopped
	{
		pattern: regexp.MustCompile(`status(!?):([a-zA-Z]+)`),
		rewrite: rewriteStatus,
	},
	// name:"ubuntu", name!:"sample"
	{
		pattern: regexp.MustCompile(`name(!?):"([^"]+)"`),
		rewrite: func(m []string) (string, error) {
			return negate(m[1], fmt.Sprintf("hasText(Name, %q)", m[2])), nil
		},
	},
	// dir:"/downloads/linux"
	{
		pattern: regexp.MustCompile(`dir(!?):"([^"]+)"`),
		rewrite: func(m []string) (string, error) {
			return negate(m[1], fmt.Sprintf("inDir(%q)", m[2])), nil
		},
	},
	// done:true, done:false
	{
		pattern: regexp.MustCompile(`done:(true|false)`),
		rewrite: func(m []string) (string, error) {
			return negate(map[string]string{"true": "", "false": "!"}[m[1]], "isComplete()"), nil
		},
	},
	// rate:>1024, progress:<0.5, size:>=1073741824
	{
		pattern: regexp.MustCompile(`(rate|progress|size):(>=|<=|>|<|=)([0-9.]+)`),
		rewrite: func(m []string) (string, error) {
			field := map[string]string{"rate": "RateDownload", "progress": "PercentDone", "size": "SizeWhenDone"}[m[1]]
			op := m[2]
			if op == "=" {
				op = "=="
			}
			return fmt.Sprintf("%s %s %s", field, op, m[3]), nil
		},
	},
}

var shorthandPrefixes = []string{"status:", "status!:", "name:", "name!:", "dir:", "dir!:", "done:", "rate:", "progress:", "size:"}

// IsShorthand reports whether expression uses field:value terms.
func IsShorthand(expression string) bool {
	for _, prefix := range shorthandPrefixes {
		if strings.Contains(expression, prefix) {
			return true
		}
	}
	return false
}

// ConvertShorthand rewrites field:value terms into expr syntax. AND, OR and
// NOT are accepted in upper case.
func ConvertShorthand(expression string) (string, error) {
	if strings.TrimSpace(expression) == "" {
		return "", nil
	}

	out := strings.ReplaceAll(expression, " AND ", " and ")
	out = strings.ReplaceAll(out, " OR ", " or ")
	out = strings.ReplaceAll(out, "NOT ", "not ")

	for _, rule := range shorthandRules {
		var ruleErr error
		out = rule.pattern.ReplaceAllStringFunc(out, func(match string) string {
			rewritten, err := rule.rewrite(rule.pattern.FindStringSubmatch(match))
			if err != nil && ruleErr == nil {
				ruleErr = err
			}
			return rewritten
		})
		if ruleErr != nil {
			return "", &CompilationError{Expression: expression, Reason: "invalid shorthand", Err: ruleErr}
		}
	}

	return out, nil
}

func rewriteStatus(m []string) (string, error) {
	name, ok := statusByLabel(m[2])
	if !ok {
		return "", fmt.Errorf("unknown status %q", m[2])
	}
	op := "=="
	if m[1] == "!" {
		op = "!="
	}
	return fmt.Sprintf("Status %s %s", op, name), nil
}

func negate(bang, term string) string {
	if bang == "!" {
		return "not " + term
	}
	return term
}

// statusByLabel resolves "seeding", "download pending" or "DownloadPending"
// to the constant name used in expressions.
func statusByLabel(label string) (string, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(label), " ", ""))
	for name := range statusNames {
		if strings.ToLower(name) == key {
			return name, true
		}
	}
	return "", false
}
