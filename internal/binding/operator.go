package binding

import (
	"fmt"
	"strings"

	"github.com/funvibe/luabind/internal/config"
)

// MetaOp is a Lua metamethod an operator can be bound to.
type MetaOp int

const (
	MetaNone MetaOp = iota
	MetaAddition
	MetaSubtraction
	MetaMultiplication
	MetaDivision
	MetaEquality
	MetaLessThan
	MetaLessOrEqual
	MetaGreaterThan
	MetaGreaterOrEqual
	MetaIndex
	MetaCall
)

var operatorTable = map[string]MetaOp{
	"+":  MetaAddition,
	"-":  MetaSubtraction,
	"*":  MetaMultiplication,
	"/":  MetaDivision,
	"==": MetaEquality,
	"<":  MetaLessThan,
	"<=": MetaLessOrEqual,
	">":  MetaGreaterThan,
	">=": MetaGreaterOrEqual,
	"[]": MetaIndex,
	"()": MetaCall,
}

var metaNames = map[MetaOp]string{
	MetaAddition:       "Addition",
	MetaSubtraction:    "Subtraction",
	MetaMultiplication: "Multiplication",
	MetaDivision:       "Division",
	MetaEquality:       "Equality",
	MetaLessThan:       "LessThan",
	MetaLessOrEqual:    "LessOrEqual",
	MetaGreaterThan:    "GreaterThan",
	MetaGreaterOrEqual: "GreaterOrEqual",
	MetaIndex:          "Index",
	MetaCall:           "Call",
}

func (m MetaOp) String() string {
	if name, ok := metaNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MetaOp(%d)", int(m))
}

// slot is the sol2 meta_function a MetaOp occupies. Lua has no
// greater-than metamethods, so > and >= share the less-than slots with
// swapped operands.
func (m MetaOp) slot() string {
	var name string
	switch m {
	case MetaAddition:
		name = "addition"
	case MetaSubtraction:
		name = "subtraction"
	case MetaMultiplication:
		name = "multiplication"
	case MetaDivision:
		name = "division"
	case MetaEquality:
		name = "equal_to"
	case MetaLessThan, MetaGreaterThan:
		name = "less_than"
	case MetaLessOrEqual, MetaGreaterOrEqual:
		name = "less_than_or_equal_to"
	case MetaIndex:
		name = "index"
	case MetaCall:
		name = "call"
	default:
		return ""
	}
	return "sol::meta_function::" + name
}

// operatorSpelling strips the optional "operator" keyword and whitespace.
func operatorSpelling(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "operator")
	return strings.Join(strings.Fields(s), "")
}

// MapOperator maps an operator spelling ("+", "operator==", "operator []")
// to its metamethod. Unsupported operators report false.
func MapOperator(spelling string) (MetaOp, bool) {
	op, ok := operatorTable[operatorSpelling(spelling)]
	return op, ok
}

// isOperatorName reports whether a method name spells an operator.
func isOperatorName(name string) bool {
	rest, ok := strings.CutPrefix(strings.TrimSpace(name), "operator")
	if !ok {
		return false
	}
	rest = strings.TrimSpace(rest)
	return rest != "" && !identRe.MatchString(rest)
}

// operatorEntry builds the meta-function entry for an operator record.
func operatorEntry(rec *ExportRecord, typeName string) (Entry, MetaOp, bool) {
	spelling := operatorSpelling(rec.Name)
	op, ok := operatorTable[spelling]
	if !ok {
		return Entry{}, MetaNone, false
	}

	var value string
	switch op {
	case MetaGreaterThan, MetaGreaterOrEqual:
		value = fmt.Sprintf("[](const %s& lhs, const %s& rhs) { return rhs %s lhs; }", typeName, typeName, spelling)
	default:
		ref := rec.QualifiedName
		if !strings.Contains(ref, config.NamespaceSeparator) || !strings.Contains(ref, "operator") {
			ref = typeName + config.NamespaceSeparator + "operator" + spelling
		}
		value = "&" + ref
	}
	return Entry{Name: op.slot(), Meta: true, Value: value}, op, true
}
