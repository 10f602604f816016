package binding

import (
	"reflect"
	"testing"
)

func method(owner, name string) ExportRecord {
	return ExportRecord{Kind: KindMethod, Name: name, OwnerClass: owner, QualifiedName: owner + "::" + name, ReturnType: "void"}
}

func names(recs []ExportRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

func TestDeduplicate(t *testing.T) {
	first := ExportRecord{Kind: KindFunction, Name: "spawn", QualifiedName: "game::spawn", ReturnType: "void", AliasName: "first"}
	second := first
	second.AliasName = "second"
	ctorA := ExportRecord{Kind: KindConstructor, Name: "Player", OwnerClass: "Player", ParameterTypes: []string{"int"}}
	ctorB := ExportRecord{Kind: KindConstructor, Name: "Player", OwnerClass: "Player", ParameterTypes: []string{" int "}}
	ctorC := ExportRecord{Kind: KindConstructor, Name: "Player", OwnerClass: "Player"}

	kept, dropped := Deduplicate([]ExportRecord{first, ctorA, second, ctorB, ctorC})
	if dropped != 2 {
		t.Errorf("dropped = %d; want 2", dropped)
	}
	if len(kept) != 3 {
		t.Fatalf("kept %d records; want 3", len(kept))
	}
	if kept[0].AliasName != "first" {
		t.Errorf("kept alias %q; want the first occurrence", kept[0].AliasName)
	}
	if kept[1].Kind != KindConstructor || kept[2].Kind != KindConstructor {
		t.Errorf("constructor overloads should survive in order, got %v", kept)
	}
}

func TestMembers_Partition(t *testing.T) {
	records := []ExportRecord{
		{Kind: KindClass, Name: "Vec", QualifiedName: "math::Vec"},
		{Kind: KindConstructor, Name: "Vec", OwnerClass: "Vec"},
		method("Vec", "length"),
		{Kind: KindMethod, Name: "zero", OwnerClass: "math::Vec", ReturnType: "Vec", IsStatic: true},
		{Kind: KindStaticMethod, Name: "unit", OwnerClass: "Vec"},
		{Kind: KindProperty, Name: "x", OwnerClass: "Vec"},
		{Kind: KindOperator, Name: "+", OwnerClass: "Vec"},
		method("Vec", "operator=="),
		method("Other", "ignored"),
	}
	agg := newAggregator(records)
	classes := agg.Classes()
	if len(classes) != 1 {
		t.Fatalf("Classes() = %d; want 1", len(classes))
	}
	set := agg.Members(classes[0], "math::Vec")

	checks := []struct {
		what     string
		got      []ExportRecord
		expected []string
	}{
		{"constructors", set.Constructors, []string{"Vec"}},
		{"methods", set.Methods, []string{"length"}},
		{"static", set.StaticMethods, []string{"zero", "unit"}},
		{"properties", set.Properties, []string{"x"}},
		{"operators", set.Operators, []string{"+", "operator=="}},
	}
	for _, c := range checks {
		if got := names(c.got); !reflect.DeepEqual(got, c.expected) {
			t.Errorf("%s = %v; want %v", c.what, got, c.expected)
		}
	}

	if got := agg.Unconsumed(records); !reflect.DeepEqual(got, []string{"Other"}) {
		t.Errorf("Unconsumed() = %v; want [Other]", got)
	}
}

func TestMembers_FlattenUnexportedBases(t *testing.T) {
	private := method("Base", "secret")
	private.Attributes = map[string]string{"access": "private"}
	static := method("Base", "create")
	static.IsStatic = true

	records := []ExportRecord{
		{Kind: KindClass, Name: "Player", QualifiedName: "game::Player", BaseClasses: []string{"Base", "Entity", "Hidden"}},
		{Kind: KindClass, Name: "Entity", QualifiedName: "game::Entity"},
		{Kind: KindClass, Name: "Hidden", Attributes: map[string]string{"exported": "false"}, BaseClasses: []string{"Root", "Hidden"}},
		method("Player", "update"),
		method("Base", "update"),
		method("Base", "tick"),
		method("Base", "~Base"),
		method("Base", "operator=="),
		{Kind: KindConstructor, Name: "Base", OwnerClass: "Base"},
		private,
		static,
		method("Entity", "draw"),
		method("Hidden", "serialize"),
		method("Root", "reset"),
		method("Root", "tick"),
	}
	agg := newAggregator(records)

	classes := agg.Classes()
	if len(classes) != 2 || classes[0].Name != "Player" || classes[1].Name != "Entity" {
		t.Fatalf("Classes() = %d records; want Player, Entity", len(classes))
	}

	set := agg.Members(classes[0], "game::Player")
	if expected := []string{"update", "tick", "serialize", "reset"}; !reflect.DeepEqual(names(set.Methods), expected) {
		t.Errorf("methods = %v; want %v", names(set.Methods), expected)
	}
	if set.Flattened != 3 {
		t.Errorf("Flattened = %d; want 3", set.Flattened)
	}
	if set.Methods[0].QualifiedName != "Player::update" {
		t.Errorf("own method should keep its qualified name, got %q", set.Methods[0].QualifiedName)
	}
	for _, m := range set.Methods[1:] {
		if m.QualifiedName != "game::Player::"+m.Name || m.OwnerClass != "Player" {
			t.Errorf("flattened %s = %q (owner %q); want requalified under game::Player", m.Name, m.QualifiedName, m.OwnerClass)
		}
	}
	if len(set.StaticMethods) != 0 || len(set.Operators) != 0 || len(set.Constructors) != 0 {
		t.Errorf("special base members leaked: %+v", set)
	}

	agg.Members(classes[1], "game::Entity")
	if got := agg.Unconsumed(records); len(got) != 0 {
		t.Errorf("Unconsumed() = %v; want none", got)
	}
}
