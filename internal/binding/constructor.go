package binding

import (
	"regexp"
	"strings"

	"github.com/funvibe/luabind/internal/config"
)

const noConstructor = "sol::no_constructor"

var (
	identRe      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	declRefRe    = regexp.MustCompile(`\s*([&*]+)\s*`)
	angleOpenRe  = regexp.MustCompile(`\s*<\s*`)
	angleCloseRe = regexp.MustCompile(`\s*>`)
	commaRe      = regexp.MustCompile(`\s*,\s*`)
)

// builtinTypeWords are spellings that end a parameter type rather than name it.
var builtinTypeWords = map[string]bool{
	"int": true, "char": true, "short": true, "long": true, "float": true,
	"double": true, "bool": true, "void": true, "unsigned": true, "signed": true,
	"wchar_t": true, "char8_t": true, "char16_t": true, "char32_t": true,
	"size_t": true, "auto": true, "const": true, "volatile": true,
}

// typeQualifiers can precede a type name without being one.
var typeQualifiers = map[string]bool{
	"const": true, "volatile": true, "struct": true, "class": true, "enum": true,
	"typename": true, "unsigned": true, "signed": true, "long": true, "short": true,
}

// SynthesizeConstructors builds the constructor declarator for a type.
// Overloads are distinct by normalized signature and keep first-seen order.
// Deleted, copy and move constructors are not exposed. With no eligible
// constructor the declarator is sol::no_constructor.
func SynthesizeConstructors(typeName, className string, ctors []ExportRecord) string {
	sigs := NewOrderedSet[string]()
	for i := range ctors {
		rec := &ctors[i]
		if rec.Flag(config.AttrDeleted) {
			continue
		}
		sig := normalizeSignature(rec.ParameterTypes)
		if isCopyOrMove(sig, typeName, className) {
			continue
		}
		sigs.Add(sig)
	}
	if sigs.Len() == 0 {
		return noConstructor
	}

	overloads := make([]string, 0, sigs.Len())
	for _, sig := range sigs.Keys() {
		overloads = append(overloads, typeName+"("+sig+")")
	}
	return "sol::constructors<" + strings.Join(overloads, ", ") + ">()"
}

// normalizeSignature joins normalized parameter types with ", ".
func normalizeSignature(params []string) string {
	norm := make([]string, 0, len(params))
	for _, p := range params {
		if n := normalizeParam(p); n != "" && n != "void" {
			norm = append(norm, n)
		}
	}
	return strings.Join(norm, ", ")
}

// normalizeParam canonicalizes one parameter spelling: default values and
// trailing parameter names are dropped, whitespace is collapsed, and
// reference/pointer markers attach to the type ("const Foo &x" becomes
// "const Foo&").
func normalizeParam(p string) string {
	if idx := strings.IndexByte(p, '='); idx >= 0 {
		p = p[:idx]
	}
	p = declRefRe.ReplaceAllString(p, "$1 ")
	p = angleOpenRe.ReplaceAllString(p, "<")
	p = angleCloseRe.ReplaceAllString(p, ">")
	p = commaRe.ReplaceAllString(p, ", ")

	tokens := strings.Fields(p)
	if len(tokens) >= 2 && isParamName(tokens) {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// isParamName reports whether the last token names the parameter.
func isParamName(tokens []string) bool {
	last := tokens[len(tokens)-1]
	if !identRe.MatchString(last) || builtinTypeWords[last] {
		return false
	}
	for _, tok := range tokens[:len(tokens)-1] {
		if !typeQualifiers[tok] {
			return true
		}
	}
	return false
}

// isCopyOrMove reports whether a normalized signature is the copy or move
// constructor of the type.
func isCopyOrMove(sig, typeName, className string) bool {
	if sig == "" || strings.Contains(sig, ",") {
		return false
	}
	for _, name := range []string{typeName, className, lastSegment(typeName)} {
		if name == "" {
			continue
		}
		switch sig {
		case "const " + name + "&", name + " const&", name + "&", name + "&&", "const " + name + "&&":
			return true
		}
	}
	return false
}
