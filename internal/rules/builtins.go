package rules

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"checkr/internal/check"
	"checkr/internal/pattern"
	"checkr/internal/source"
)

var (
	scriptExts = []string{"js", "jsx", "ts", "tsx", "mjs", "cjs"}
	jsxExts    = []string{"jsx", "tsx"}
)

// jsxFunctionLimit bounds the scan of missing-jsx-return independently of
// the runner's count guard.
const jsxFunctionLimit = 50

var (
	prefixIncrement = regexp2.MustCompile(`\+\+[a-zA-Z]+`, regexp2.None)
	jsxFunction     = regexp2.MustCompile(`function .+ \{[\s\S]+?\}`, regexp2.None)
	jsxTag          = regexp2.MustCompile(`<.+>`, regexp2.None)

	// blocks are kept inside one argument list, switch or catch body
	dupeArgs        = pattern.MustCompile(`function $a(REGEX([^()]*?)$b REGEX([^()]*?)$b REGEX([^()]*))`)
	duplicateCase   = pattern.MustCompile(`case $1: REGEX((?:(?!switch)[\s\S])*?) case $1:`)
	exAssign        = pattern.MustCompile(`catch ($e) { REGEX([^{}]*?)$e REGEX(=(?!=))`)
	constantIfLit   = pattern.MustCompile(`if ($1)`)
	constantIfCmp   = pattern.MustCompile(`if ($1 $@ $2)`)
	setterReturn    = pattern.MustCompile(`set $a($$) { REGEX([^{}]*?)return REGEX([^;\s][^;]*);`)
	selfCompare     = pattern.MustCompile(`$a REGEX((?:===?|!==?)) $a`)
	dangerousHTML   = pattern.MustCompile(`dangerouslySetInnerHTML =`)
	stateInSetState = pattern.MustCompile(`this.setState($$ this.state $$)`)

	buttonTemplate    = `<button $$>`
	componentTemplate = `function $name($$) { $$ return $$<`
)

func init() {
	for _, b := range []Builtin{
		{
			Name: "no-prefix-increment",
			Doc:  "Prefer a++ over ++a.",
			Func: onlyExtensions(scriptExts, func(_ *source.FileContext, _ check.Capabilities, report check.ReportFunc) error {
				report(prefixIncrement, "Prefer a++ over ++a.", "info")
				return nil
			}),
		},
		{
			Name: "missing-jsx-return",
			Doc:  "Functions that build JSX must return it.",
			Func: onlyExtensions(jsxExts, missingJSXReturn),
		},
		{
			Name: "no-dupe-args",
			Doc:  "Disallow duplicate arguments in function definitions.",
			Func: reportAll(dupeArgs, "Duplicate argument in function definition.", "error"),
		},
		{
			Name: "no-duplicate-case",
			Doc:  "Disallow duplicate case labels.",
			Func: reportAll(duplicateCase, "Duplicate case label.", "error"),
		},
		{
			Name: "no-ex-assign",
			Doc:  "Disallow reassigning the exception parameter of a catch clause.",
			Func: reportAll(exAssign, "Do not assign to the exception parameter.", "error"),
		},
		{
			Name: "no-constant-condition",
			Doc:  "Disallow constant expressions in conditions.",
			Func: func(_ *source.FileContext, _ check.Capabilities, report check.ReportFunc) error {
				report(constantIfLit, "Unexpected constant condition.", "warn")
				report(constantIfCmp, "Unexpected constant condition.", "warn")
				return nil
			},
		},
		{
			Name: "no-setter-return",
			Doc:  "Disallow returning values from setters.",
			Func: reportAll(setterReturn, "Setter cannot return a value.", "error"),
		},
		{
			Name: "no-self-compare",
			Doc:  "Disallow comparisons where both sides are the same identifier.",
			Func: reportAll(selfCompare, "Comparing to itself is potentially pointless.", "error"),
		},
		{
			Name: "require-button-type",
			Doc:  "Buttons need an explicit type attribute.",
			Func: onlyExtensions(jsxExts, requireButtonType),
		},
		{
			Name: "no-danger",
			Doc:  "Disallow dangerouslySetInnerHTML.",
			Func: onlyExtensions(jsxExts, reportAll(dangerousHTML, "Dangerous property 'dangerouslySetInnerHTML' found.", "warn")),
		},
		{
			Name: "no-state-in-setstate",
			Doc:  "Use the updater callback when the next state depends on this.state.",
			Func: reportAll(stateInSetState, "Use callback in setState when referencing the previous state.", "error"),
		},
		{
			Name: "jsx-pascal-case",
			Doc:  "Components must be named in PascalCase.",
			Func: onlyExtensions(jsxExts, jsxPascalCase),
		},
	} {
		Default.MustRegister(b)
	}
}

// missingJSXReturn walks function bodies with its own bound and flags the
// ones that mention a tag but never return.
func missingJSXReturn(file *source.FileContext, _ check.Capabilities, report check.ReportFunc) error {
	m, err := jsxFunction.FindStringMatch(file.Contents)
	for n := 0; m != nil && n < jsxFunctionLimit; n++ {
		if err != nil {
			return err
		}
		body := m.String()
		hasTag, tagErr := jsxTag.MatchString(body)
		if tagErr != nil {
			return tagErr
		}
		if hasTag && !strings.Contains(body, "return") {
			report(body, "Missing 'return' in JSX function.", "error")
		}
		m, err = jsxFunction.FindNextMatch(m)
	}
	return err
}

func requireButtonType(file *source.FileContext, caps check.Capabilities, report check.ReportFunc) error {
	p, err := caps.Code(buttonTemplate)
	if err != nil {
		return err
	}
	seen := make(map[string]bool)
	for m, err := range p.Matches(file.Contents) {
		if err != nil {
			return err
		}
		res := m.Result()
		if len(res.Blocks) > 0 && strings.Contains(res.Blocks[0], "type=") {
			continue
		}
		// одинаковые кнопки: report уже находит все вхождения
		if seen[m.Text] {
			continue
		}
		seen[m.Text] = true
		report(m.Text, "Missing an explicit type attribute for button.", "warn")
	}
	return nil
}

func jsxPascalCase(file *source.FileContext, caps check.Capabilities, report check.ReportFunc) error {
	p, err := caps.Code(componentTemplate)
	if err != nil {
		return err
	}
	for m, err := range p.Matches(file.Contents) {
		if err != nil {
			return err
		}
		vars := m.Result().Variables
		if len(vars) == 0 || isPascalCase(vars[0]) {
			continue
		}
		report("function "+vars[0]+"(", fmt.Sprintf("Component %s must be in PascalCase.", vars[0]), "warn")
	}
	return nil
}

// isPascalCase accepts names starting upper case that are not all caps.
func isPascalCase(name string) bool {
	runes := []rune(name)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) || strings.ContainsRune(name, '_') {
		return false
	}
	if len(runes) == 1 {
		return true
	}
	for _, r := range runes[1:] {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}
