package binding

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"
)

func playerRecords() []ExportRecord {
	return []ExportRecord{
		{Kind: KindClass, Name: "Player", QualifiedName: "game::Player", NamespaceHint: "game"},
		{Kind: KindConstructor, Name: "Player", QualifiedName: "game::Player::Player", OwnerClass: "Player"},
		{Kind: KindConstructor, Name: "Player", QualifiedName: "game::Player::Player", OwnerClass: "Player", ParameterTypes: []string{"int"}},
		{Kind: KindConstructor, Name: "Player", QualifiedName: "game::Player::Player", OwnerClass: "Player", ParameterTypes: []string{" int "}},
		{Kind: KindMethod, Name: "getHealth", QualifiedName: "game::Player::getHealth", OwnerClass: "Player", ReturnType: "double", IsConst: true},
		{Kind: KindProperty, Name: "health", QualifiedName: "game::Player::health", OwnerClass: "Player", PropertyAccess: AccessReadWrite},
	}
}

func assertContains(t *testing.T, code string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(code, want) {
			t.Errorf("output missing %q\n%s", want, code)
		}
	}
}

func assertNotContains(t *testing.T, code string, unwanted ...string) {
	t.Helper()
	for _, s := range unwanted {
		if strings.Contains(code, s) {
			t.Errorf("output unexpectedly contains %q\n%s", s, code)
		}
	}
}

func TestGenerateModuleBinding_Player(t *testing.T) {
	res := NewGenerator().GenerateModuleBinding("game", playerRecords())
	if !res.Success {
		t.Fatalf("generation failed: %v", res.Errors)
	}

	assertContains(t, res.Code,
		`sol::table game_ns = lua["game"].get_or_create<sol::table>();`,
		`game_ns.new_usertype<game::Player>("Player",`,
		`sol::constructors<game::Player(), game::Player(int)>(),`,
		`"getHealth", &game::Player::getHealth,`,
		`"health", sol::property(&game::Player::health, &game::Player::setHealth)`,
		"void register_game_bindings(sol::state_view lua) {",
		"#include <sol/sol.hpp>",
	)
	if strings.Count(res.Code, "game::Player(int)") != 1 {
		t.Errorf("constructor overload not deduplicated:\n%s", res.Code)
	}

	if res.BindingCount != 3 {
		t.Errorf("BindingCount = %d; want 3", res.BindingCount)
	}
	if res.Stats.DuplicatesDropped != 1 || res.Stats.BatchedClasses != 0 || res.Stats.Classes != 1 {
		t.Errorf("unexpected stats: %+v", res.Stats)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "setHealth") {
		t.Errorf("expected an unverified setter warning, got %v", res.Warnings)
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
}

func TestGenerateModuleBinding_Idempotent(t *testing.T) {
	records := append(playerRecords(),
		ExportRecord{Kind: KindFunction, Name: "spawn", QualifiedName: "game::ai::spawn", ReturnType: "void"},
		ExportRecord{Kind: KindEnum, Name: "Mode", EnumValues: []string{"A", "B"}},
		ExportRecord{Kind: KindContainer, Name: "Names", ContainerElementTypes: []string{"std::string"}},
	)
	gen := NewGenerator()
	first := gen.GenerateModuleBinding("game", records)
	second := gen.GenerateModuleBinding("game", records)
	if first.Code != second.Code {
		t.Errorf("output differs between runs:\n%s\n---\n%s", first.Code, second.Code)
	}
	if first.Code == "" {
		t.Error("empty output")
	}
}

func TestGenerateModuleBinding_FirstOccurrenceWins(t *testing.T) {
	records := []ExportRecord{
		{Kind: KindFunction, Name: "spawn", QualifiedName: "game::spawn", ReturnType: "void", AliasName: "spawnFirst"},
		{Kind: KindFunction, Name: "spawn", QualifiedName: "game::spawn", ReturnType: "void", AliasName: "spawnSecond"},
	}
	res := NewGenerator().GenerateModuleBinding("game", records)
	assertContains(t, res.Code, `game_ns.set_function("spawnFirst", &game::spawn);`)
	assertNotContains(t, res.Code, "spawnSecond")
	if res.Stats.DuplicatesDropped != 1 || res.Stats.Functions != 1 {
		t.Errorf("unexpected stats: %+v", res.Stats)
	}
}

func TestGenerateModuleBinding_Batched(t *testing.T) {
	records := []ExportRecord{{Kind: KindClass, Name: "Big", QualifiedName: "game::Big"}}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		records = append(records, method("Big", name))
	}
	res := NewGenerator().GenerateModuleBinding("game", records)
	assertContains(t, res.Code,
		`auto game_Big_type = game_ns.new_usertype<game::Big>("Big", sol::no_constructor);`,
		`game_Big_type["a"] = &Big::a;`,
		`game_Big_type["k"] = &Big::k;`,
	)
	if res.Stats.BatchedClasses != 1 || res.Stats.Methods != 11 {
		t.Errorf("unexpected stats: %+v", res.Stats)
	}
}

func TestGenerateModuleBinding_InvalidRecords(t *testing.T) {
	records := []ExportRecord{
		{Kind: KindFunction, Name: "", ReturnType: "void"},
		{Kind: KindMethod, Name: "broken", OwnerClass: "Player"},
		{Kind: "macro", Name: "X"},
		{Kind: KindFunction, Name: "ok", ReturnType: "int"},
	}
	res := NewGenerator().GenerateModuleBinding("m", records)
	if !res.Success {
		t.Fatal("invalid records must not fail the pass")
	}
	if len(res.Errors) != 3 || res.Stats.RecordsRejected != 3 {
		t.Errorf("errors = %v; want 3", res.Errors)
	}
	if !strings.Contains(res.Errors[1], "missing return type") {
		t.Errorf("error[1] = %q", res.Errors[1])
	}
	assertContains(t, res.Code, `lua.set_function("ok", &ok);`)
}

func TestGenerateModuleBinding_ClassFlags(t *testing.T) {
	records := []ExportRecord{
		{Kind: KindClass, Name: "Shape", Attributes: map[string]string{"abstract": ""}},
		{Kind: KindConstructor, Name: "Shape", OwnerClass: "Shape"},
		method("Shape", "area"),
		{Kind: KindClass, Name: "MathUtils", Attributes: map[string]string{"static": "true"}},
		{Kind: KindStaticMethod, Name: "clamp", QualifiedName: "MathUtils::clamp", OwnerClass: "MathUtils"},
		method("MathUtils", "instanceOnly"),
		{Kind: KindClass, Name: "Registry", Attributes: map[string]string{"singleton": ""}},
		method("Registry", "size"),
	}
	res := NewGenerator().GenerateModuleBinding("m", records)
	assertContains(t, res.Code,
		"sol::no_constructor,",
		`sol::table MathUtils_tbl = lua.create_named_table("MathUtils");`,
		`MathUtils_tbl.set_function("clamp", &MathUtils::clamp);`,
		`"getInstance", &Registry::getInstance`,
	)
	assertNotContains(t, res.Code, "Shape()", "instanceOnly")
}

func TestGenerateModuleBinding_SkippedClassReportsMembers(t *testing.T) {
	records := []ExportRecord{
		{Kind: KindClass, Name: "Player"},
		{Kind: KindClass, Name: "Hero", AliasName: "Player"},
		{Kind: KindMethod, Name: "jump", QualifiedName: "Hero::jump", OwnerClass: "Hero", ReturnType: "void"},
	}
	res := NewGenerator().GenerateModuleBinding("m", records)
	if !res.Success {
		t.Fatalf("generation failed: %v", res.Errors)
	}
	assertNotContains(t, res.Code, "Hero::jump")

	var collided, reported bool
	for _, w := range res.Warnings {
		collided = collided || strings.Contains(w, "class Player: name already bound")
		reported = reported || strings.Contains(w, "members of Hero skipped")
	}
	if !collided || !reported {
		t.Errorf("warnings = %v; want the name collision and the skipped members of Hero", res.Warnings)
	}
}

func TestGenerateModuleBinding_Operators(t *testing.T) {
	records := []ExportRecord{
		{Kind: KindClass, Name: "Vec"},
		{Kind: KindOperator, Name: "operator+", OwnerClass: "Vec"},
		{Kind: KindOperator, Name: "operator!=", OwnerClass: "Vec"},
		{Kind: KindOperator, Name: "operator<", OwnerClass: "Vec"},
		{Kind: KindOperator, Name: "operator>", OwnerClass: "Vec"},
		method("Vec", "operator[]"),
	}
	res := NewGenerator().GenerateModuleBinding("m", records)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	assertContains(t, res.Code,
		"sol::meta_function::addition, &Vec::operator+",
		"sol::meta_function::less_than, &Vec::operator<",
		"sol::meta_function::index, &Vec::operator[]",
	)
	assertNotContains(t, res.Code, "operator!=", "rhs > lhs")
	if res.Stats.Operators != 3 || res.Stats.OperatorsDropped != 2 {
		t.Errorf("unexpected stats: %+v", res.Stats)
	}
}

func TestGenerateModuleBinding_NamespaceGrouping(t *testing.T) {
	records := []ExportRecord{
		{Kind: KindFunction, Name: "a", QualifiedName: "util::a", ReturnType: "void"},
		{Kind: KindFunction, Name: "b", ReturnType: "void"},
		{Kind: KindFunction, Name: "c", QualifiedName: "util::c", ReturnType: "void"},
		{Kind: KindConstant, Name: "K", NamespaceHint: "cfg.limits"},
	}
	res := NewGenerator().GenerateModuleBinding("m", records)
	code := res.Code
	b := strings.Index(code, `lua.set_function("b"`)
	a := strings.Index(code, `util_ns.set_function("a"`)
	c := strings.Index(code, `util_ns.set_function("c"`)
	if b < 0 || a < 0 || c < 0 || !(b < a && a < c) {
		t.Errorf("functions not grouped global-first in record order:\n%s", code)
	}
	assertContains(t, code,
		`sol::table cfg_ns = lua["cfg"].get_or_create<sol::table>();`,
		`sol::table cfg_limits_ns = lua["cfg"]["limits"].get_or_create<sol::table>();`,
		`cfg_limits_ns["K"] = K;`,
	)
}

func TestGenerateModuleBinding_Options(t *testing.T) {
	records := []ExportRecord{
		{Kind: KindClass, Name: "Entity", QualifiedName: "game::Entity", SourceFile: "src/game/entity.hpp"},
		{Kind: KindClass, Name: "Player", QualifiedName: "game::Player", BaseClasses: []string{"Entity"}, SourceFile: `src\game\player.hpp`},
	}

	plain := NewGenerator(WithIncludes(false), WithWrapFunction(false), WithIndentWidth(2)).GenerateModuleBinding("game", records)
	assertNotContains(t, plain.Code, "#include", "register_game_bindings", "sol::base_classes")
	assertContains(t, plain.Code, "game_ns.new_usertype<game::Player>(\"Player\",\n  sol::no_constructor\n);")

	full := NewGenerator(WithInheritance(true)).GenerateModuleBinding("game", records)
	assertContains(t, full.Code,
		"#include <sol/sol.hpp>\n#include \"entity.hpp\"\n#include \"player.hpp\"\n",
		"sol::base_classes, sol::bases<game::Entity>()",
	)
}

func TestGenerateModuleBinding_Containers(t *testing.T) {
	records := []ExportRecord{
		{Kind: KindContainer, Name: "Scores", ContainerElementTypes: []string{"std::string", "int"}},
		{Kind: KindContainer, Name: "Other", QualifiedName: "std::unordered_map<std::string, int>"},
		{Kind: KindContainer, Name: "Ids", ContainerElementTypes: []string{"int"}, Attributes: map[string]string{"alias": "IdList"}},
	}
	res := NewGenerator().GenerateModuleBinding("m", records)
	assertContains(t, res.Code,
		`lua.new_usertype<std::map<std::string, int>>("StdStringIntMap"`,
		`lua.new_usertype<std::unordered_map<std::string, int>>("StdStringIntMap2"`,
		`lua.new_usertype<std::vector<int>>("IdList"`,
	)
	if res.Stats.Containers != 3 {
		t.Errorf("Containers = %d; want 3", res.Stats.Containers)
	}
}

func TestPass_StructuralError(t *testing.T) {
	records := []ExportRecord{{Kind: KindClass, Name: "Player", QualifiedName: "game::Player"}}
	result := &GenerationResult{Success: true}
	p := newPass(DefaultOptions(), "game", records, result)
	// Without discovery the class namespace has no handle.
	err := p.emit()
	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("emit() error = %v; want *StructuralError", err)
	}
	if !strings.Contains(structural.Error(), "game") {
		t.Errorf("error = %q", structural.Error())
	}
}

func TestGenerateModuleBinding_Golden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range paths {
		path := path
		module := strings.TrimSuffix(filepath.Base(path), ".txtar")
		t.Run(module, func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatal(err)
			}
			input, ok := archiveFile(ar, "records.yaml")
			if !ok {
				t.Fatalf("%s: no records.yaml", path)
			}
			var records []ExportRecord
			if err := yaml.Unmarshal(input, &records); err != nil {
				t.Fatalf("%s: %v", path, err)
			}

			res := NewGenerator().GenerateModuleBinding(module, records)
			if !res.Success {
				t.Fatalf("generation failed: %v", res.Errors)
			}

			if os.Getenv("UPDATE_GOLDEN") != "" {
				setArchiveFile(ar, "want.cpp", []byte(res.Code))
				if err := os.WriteFile(path, txtar.Format(ar), 0o644); err != nil {
					t.Fatal(err)
				}
				return
			}
			want, ok := archiveFile(ar, "want.cpp")
			if !ok {
				t.Logf("%s: no want.cpp; run with UPDATE_GOLDEN=1 to create it", path)
				t.Skip()
			}
			if res.Code != string(want) {
				t.Errorf("output mismatch for %s\n--- got ---\n%s\n--- want ---\n%s", path, res.Code, want)
			}
			if len(res.Warnings) != 0 {
				t.Errorf("unexpected warnings: %v", res.Warnings)
			}
		})
	}
}

func archiveFile(ar *txtar.Archive, name string) ([]byte, bool) {
	for _, f := range ar.Files {
		if f.Name == name {
			return f.Data, true
		}
	}
	return nil, false
}

func setArchiveFile(ar *txtar.Archive, name string, data []byte) {
	for i := range ar.Files {
		if ar.Files[i].Name == name {
			ar.Files[i].Data = data
			return
		}
	}
	ar.Files = append(ar.Files, txtar.File{Name: name, Data: data})
}
