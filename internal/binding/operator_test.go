package binding

import "testing"

func TestMapOperator(t *testing.T) {
	tests := []struct {
		spelling string
		expected MetaOp
		ok       bool
	}{
		{"+", MetaAddition, true},
		{"operator+", MetaAddition, true},
		{"operator -", MetaSubtraction, true},
		{"*", MetaMultiplication, true},
		{"/", MetaDivision, true},
		{"operator==", MetaEquality, true},
		{"<", MetaLessThan, true},
		{"<=", MetaLessOrEqual, true},
		{">", MetaGreaterThan, true},
		{"operator>=", MetaGreaterOrEqual, true},
		{"operator [ ]", MetaIndex, true},
		{"operator()", MetaCall, true},
		{"operator!=", MetaNone, false},
		{"=", MetaNone, false},
		{"->", MetaNone, false},
		{"&", MetaNone, false},
		{"operator bool", MetaNone, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.spelling, func(t *testing.T) {
			t.Parallel()
			got, ok := MapOperator(tt.spelling)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("MapOperator(%q) = %v, %v; want %v, %v", tt.spelling, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestIsOperatorName(t *testing.T) {
	tests := map[string]bool{
		"operator+":     true,
		"operator ==":   true,
		"operator[]":    true,
		"operator bool": false,
		"operatorCount": false,
		"operator":      false,
		"getHealth":     false,
	}
	for name, expected := range tests {
		if got := isOperatorName(name); got != expected {
			t.Errorf("isOperatorName(%q) = %v; want %v", name, got, expected)
		}
	}
}

func TestOperatorEntry(t *testing.T) {
	tests := []struct {
		name     string
		rec      ExportRecord
		slot     string
		expected string
	}{
		{
			name:     "qualified member operator",
			rec:      ExportRecord{Kind: KindOperator, Name: "operator+", QualifiedName: "math::Vec::operator+", OwnerClass: "Vec"},
			slot:     "sol::meta_function::addition",
			expected: "&math::Vec::operator+",
		},
		{
			name:     "bare spelling",
			rec:      ExportRecord{Kind: KindOperator, Name: "==", OwnerClass: "Vec"},
			slot:     "sol::meta_function::equal_to",
			expected: "&math::Vec::operator==",
		},
		{
			name:     "greater than swaps operands",
			rec:      ExportRecord{Kind: KindOperator, Name: "operator>", OwnerClass: "Vec"},
			slot:     "sol::meta_function::less_than",
			expected: "[](const math::Vec& lhs, const math::Vec& rhs) { return rhs > lhs; }",
		},
		{
			name:     "greater or equal swaps operands",
			rec:      ExportRecord{Kind: KindOperator, Name: ">=", OwnerClass: "Vec"},
			slot:     "sol::meta_function::less_than_or_equal_to",
			expected: "[](const math::Vec& lhs, const math::Vec& rhs) { return rhs >= lhs; }",
		},
		{
			name:     "index",
			rec:      ExportRecord{Kind: KindMethod, Name: "operator[]", OwnerClass: "Vec", ReturnType: "float"},
			slot:     "sol::meta_function::index",
			expected: "&math::Vec::operator[]",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, _, ok := operatorEntry(&tt.rec, "math::Vec")
			if !ok {
				t.Fatal("operatorEntry() reported unsupported")
			}
			if !e.Meta || e.Name != tt.slot {
				t.Errorf("slot = %q (meta %v); want %q", e.Name, e.Meta, tt.slot)
			}
			if e.Value != tt.expected {
				t.Errorf("value = %q; want %q", e.Value, tt.expected)
			}
		})
	}
}

func TestOperatorEntry_Unsupported(t *testing.T) {
	rec := ExportRecord{Kind: KindOperator, Name: "operator!=", OwnerClass: "Vec"}
	if _, _, ok := operatorEntry(&rec, "Vec"); ok {
		t.Error("operator!= should have no metamethod")
	}
}
