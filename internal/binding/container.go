package binding

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/funvibe/luabind/internal/config"
)

// ContainerCategory groups container templates by the operations they support.
type ContainerCategory int

const (
	CategoryUnknown ContainerCategory = iota
	CategorySequence
	CategoryAssociative
	CategorySet
	CategoryList
	// CategoryArray is a fixed-size sequence: no growth or removal.
	CategoryArray
)

func (c ContainerCategory) String() string {
	switch c {
	case CategorySequence:
		return "sequence"
	case CategoryAssociative:
		return "associative"
	case CategorySet:
		return "set"
	case CategoryList:
		return "list"
	case CategoryArray:
		return "array"
	}
	return "unknown"
}

var containerTemplates = map[string]ContainerCategory{
	"vector":             CategorySequence,
	"deque":              CategorySequence,
	"array":              CategoryArray,
	"map":                CategoryAssociative,
	"unordered_map":      CategoryAssociative,
	"multimap":           CategoryAssociative,
	"unordered_multimap": CategoryAssociative,
	"set":                CategorySet,
	"unordered_set":      CategorySet,
	"multiset":           CategorySet,
	"list":               CategoryList,
	"forward_list":       CategoryList,
}

// defaultTemplates is used when only element types are known.
var defaultTemplates = map[ContainerCategory]string{
	CategorySequence:    "vector",
	CategoryAssociative: "map",
	CategorySet:         "set",
	CategoryList:        "list",
}

// friendlySynonyms are display names for common element types.
var friendlySynonyms = map[string]string{
	"int":                "Int",
	"unsigned":           "UInt",
	"unsigned int":       "UInt",
	"long":               "Long",
	"long int":           "Long",
	"unsigned long":      "ULong",
	"long long":          "LongLong",
	"unsigned long long": "ULongLong",
	"short":              "Short",
	"unsigned short":     "UShort",
	"double":             "Double",
	"float":              "Float",
	"char":               "Char",
	"unsigned char":      "UChar",
	"bool":               "Bool",
	"size_t":             "SizeT",
	"std::size_t":        "SizeT",
	"int8_t":             "Int8",
	"int16_t":            "Int16",
	"int32_t":            "Int32",
	"int64_t":            "Int64",
	"uint8_t":            "UInt8",
	"uint16_t":           "UInt16",
	"uint32_t":           "UInt32",
	"uint64_t":           "UInt64",
	"std::int32_t":       "Int32",
	"std::int64_t":       "Int64",
	"std::uint32_t":      "UInt32",
	"std::uint64_t":      "UInt64",
	"string":             "String",
}

var friendlySuffix = map[ContainerCategory]string{
	CategorySequence: "Vector",
	CategorySet:      "Set",
	CategoryList:     "List",
}

var spaceRe = regexp.MustCompile(`\s+`)

// containerShape is the classified form of a container record.
type containerShape struct {
	Category ContainerCategory
	// Template is the unqualified template name, e.g. "vector".
	Template string
	// NativeType is the full instantiated type, e.g. "std::vector<int>".
	NativeType string
	Elements   []string
}

// classifyContainer determines a container's category, native type and
// element types. The container attribute wins, then the template name in
// the qualified name or name, then the number of element types.
func classifyContainer(rec *ExportRecord) containerShape {
	shape := containerShape{Elements: trimAll(rec.ContainerElementTypes)}

	native := ""
	for _, candidate := range []string{rec.QualifiedName, rec.Name} {
		if strings.Contains(candidate, "<") {
			native = collapseSpace(candidate)
			break
		}
	}
	if native != "" {
		if tmpl, args, ok := splitTemplate(native); ok {
			shape.Template = lastSegment(tmpl)
			if len(shape.Elements) == 0 {
				shape.Elements = args
			}
		}
	}

	if attr, ok := rec.Attr(config.AttrContainer); ok && strings.TrimSpace(attr) != "" {
		shape.Template = lastSegment(strings.ToLower(strings.TrimSpace(attr)))
	}
	shape.Category = containerTemplates[shape.Template]
	if shape.Category == CategoryUnknown {
		switch len(shape.Elements) {
		case 1:
			shape.Category = CategorySequence
		case 2:
			shape.Category = CategoryAssociative
		}
	}
	if shape.Template == "" {
		shape.Template = defaultTemplates[shape.Category]
	}

	switch {
	case native != "":
		shape.NativeType = native
	case shape.Template != "" && len(shape.Elements) > 0:
		shape.NativeType = "std::" + shape.Template + "<" + strings.Join(shape.Elements, ", ") + ">"
	default:
		shape.NativeType = rec.qualified()
	}
	return shape
}

// splitTemplate splits "std::map<std::string, int>" into its template name
// and top-level arguments.
func splitTemplate(t string) (string, []string, bool) {
	open := strings.IndexByte(t, '<')
	if open <= 0 || !strings.HasSuffix(t, ">") {
		return "", nil, false
	}
	inner := t[open+1 : len(t)-1]
	var args []string
	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
			if depth < 0 {
				return "", nil, false
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, false
	}
	if last := strings.TrimSpace(inner[start:]); last != "" {
		args = append(args, last)
	}
	return strings.TrimSpace(t[:open]), args, true
}

// FriendlyContainerName derives the Lua-visible name of a container:
// IntVector, StdStringIntMap, DoubleSet. Unrecognized shapes fall back to
// the capitalized template plus the sanitized element types.
func FriendlyContainerName(category ContainerCategory, template string, elements []string) string {
	parts := make([]string, 0, len(elements))
	ok := true
	for _, e := range elements {
		name, good := friendlyTypeName(e)
		if !good {
			ok = false
			break
		}
		parts = append(parts, name)
	}

	switch {
	case ok && category == CategoryAssociative && len(parts) == 2:
		return parts[0] + parts[1] + "Map"
	case ok && len(parts) == 1 && friendlySuffix[category] != "":
		return parts[0] + friendlySuffix[category]
	}

	kind := template
	if kind == "" {
		kind = category.String()
	}
	prefix := ""
	for _, seg := range strings.Split(identifier(kind), "_") {
		prefix += ucFirst(seg)
	}
	if len(elements) == 0 {
		return prefix
	}
	return prefix + "_" + identifier(strings.Join(elements, "_"))
}

// friendlyTypeName renders one element type: synonyms first, otherwise
// each "::" segment capitalized ("std::string" becomes "StdString").
func friendlyTypeName(t string) (string, bool) {
	t = collapseSpace(t)
	if name, ok := friendlySynonyms[t]; ok {
		return name, true
	}
	segments := strings.Split(strings.TrimPrefix(t, config.NamespaceSeparator), config.NamespaceSeparator)
	var b strings.Builder
	for _, seg := range segments {
		if !identRe.MatchString(seg) {
			return "", false
		}
		b.WriteString(ucFirst(seg))
	}
	return b.String(), b.Len() > 0
}

// containerEntries returns the lambda-backed operations for a container.
// Indices are 1-based on the Lua side.
func containerEntries(shape containerShape) []Entry {
	t := shape.NativeType
	elem := func(i int) string {
		if i < len(shape.Elements) {
			return shape.Elements[i]
		}
		return "typename " + t + "::value_type"
	}
	lambda := func(name, params, body string) Entry {
		return Entry{Name: name, Value: fmt.Sprintf("[](%s) { %s }", params, body)}
	}
	toTable := func(name, expr string) Entry {
		return lambda(name, "const "+t+"& self, sol::this_state s",
			"sol::state_view lua(s); sol::table t = lua.create_table(); std::size_t i = 1; for (const auto& v : self) { t[i++] = "+expr+"; } return t;")
	}

	tmpl := shape.Template
	multi := strings.HasPrefix(tmpl, "multi") || strings.HasPrefix(tmpl, "unordered_multi")

	var entries []Entry
	if tmpl == "forward_list" {
		entries = append(entries, lambda("size", "const "+t+"& self", "return static_cast<std::size_t>(std::distance(self.begin(), self.end()));"))
	} else {
		entries = append(entries, lambda("size", "const "+t+"& self", "return self.size();"))
	}
	entries = append(entries, lambda("empty", "const "+t+"& self", "return self.empty();"))
	if shape.Category != CategoryArray {
		entries = append(entries, lambda("clear", t+"& self", "self.clear();"))
	}

	switch shape.Category {
	case CategorySequence:
		e := elem(0)
		entries = append(entries,
			lambda("get", "const "+t+"& self, std::size_t i", "return self.at(i - 1);"),
			lambda("set", t+"& self, std::size_t i, const "+e+"& value", "self.at(i - 1) = value;"),
			lambda("front", "const "+t+"& self", "return self.front();"),
			lambda("back", "const "+t+"& self", "return self.back();"),
			lambda("insert", t+"& self, std::size_t i, const "+e+"& value", "self.insert(self.begin() + (i - 1), value);"),
			lambda("erase", t+"& self, std::size_t i", "self.erase(self.begin() + (i - 1));"),
			lambda("resize", t+"& self, std::size_t n", "self.resize(n);"),
		)
		if tmpl == "vector" {
			entries = append(entries,
				lambda("reserve", t+"& self, std::size_t n", "self.reserve(n);"),
				lambda("capacity", "const "+t+"& self", "return self.capacity();"),
			)
		}
		entries = append(entries,
			lambda("push_back", t+"& self, const "+e+"& value", "self.push_back(value);"),
			lambda("pop_back", t+"& self", "self.pop_back();"),
		)
		if tmpl == "deque" {
			entries = append(entries,
				lambda("push_front", t+"& self, const "+e+"& value", "self.push_front(value);"),
				lambda("pop_front", t+"& self", "self.pop_front();"),
			)
		}
		entries = append(entries, toTable("to_table", "v"))
	case CategoryArray:
		e := elem(0)
		entries = append(entries,
			lambda("get", "const "+t+"& self, std::size_t i", "return self.at(i - 1);"),
			lambda("set", t+"& self, std::size_t i, const "+e+"& value", "self.at(i - 1) = value;"),
			lambda("front", "const "+t+"& self", "return self.front();"),
			lambda("back", "const "+t+"& self", "return self.back();"),
			lambda("fill", t+"& self, const "+e+"& value", "self.fill(value);"),
			toTable("to_table", "v"),
		)
	case CategoryAssociative:
		k, v := elem(0), "typename "+t+"::mapped_type"
		if len(shape.Elements) > 1 {
			v = shape.Elements[1]
		}
		entries = append(entries,
			Entry{Name: "get", Value: fmt.Sprintf("[](const %s& self, const %s& key) -> sol::optional<%s> { auto it = self.find(key); if (it == self.end()) { return sol::nullopt; } return it->second; }", t, k, v)},
		)
		if multi {
			entries = append(entries, lambda("insert", t+"& self, const "+k+"& key, const "+v+"& value", "self.emplace(key, value);"))
		} else {
			entries = append(entries, lambda("set", t+"& self, const "+k+"& key, const "+v+"& value", "self.insert_or_assign(key, value);"))
		}
		entries = append(entries,
			lambda("has", "const "+t+"& self, const "+k+"& key", "return self.find(key) != self.end();"),
			lambda("erase", t+"& self, const "+k+"& key", "return self.erase(key) > 0;"),
			toTable("keys", "v.first"),
			toTable("values", "v.second"),
		)
	case CategorySet:
		e := elem(0)
		insert := "return self.insert(value).second;"
		if multi {
			// multiset::insert returns an iterator and always succeeds.
			insert = "self.insert(value); return true;"
		}
		entries = append(entries,
			lambda("insert", t+"& self, const "+e+"& value", insert),
			lambda("erase", t+"& self, const "+e+"& value", "return self.erase(value) > 0;"),
			lambda("has", "const "+t+"& self, const "+e+"& value", "return self.find(value) != self.end();"),
			toTable("to_table", "v"),
		)
	case CategoryList:
		e := elem(0)
		entries = append(entries, lambda("front", "const "+t+"& self", "return self.front();"))
		if tmpl != "forward_list" {
			entries = append(entries,
				lambda("back", "const "+t+"& self", "return self.back();"),
				lambda("push_back", t+"& self, const "+e+"& value", "self.push_back(value);"),
				lambda("pop_back", t+"& self", "self.pop_back();"),
			)
		}
		entries = append(entries,
			lambda("push_front", t+"& self, const "+e+"& value", "self.push_front(value);"),
			lambda("pop_front", t+"& self", "self.pop_front();"),
			toTable("to_table", "v"),
		)
	}
	return entries
}

// buildContainerPlan builds the usertype plan of a classified container.
// name is the already-disambiguated display name.
func buildContainerPlan(shape containerShape, name, namespace string) *ClassBindingPlan {
	return &ClassBindingPlan{
		TypeName:     shape.NativeType,
		DisplayName:  name,
		Namespace:    namespace,
		Constructors: "sol::constructors<" + shape.NativeType + "()>()",
		Methods:      containerEntries(shape),
	}
}

// containerDisplayName is the explicit alias of a container, or its
// friendly derived name.
func containerDisplayName(rec *ExportRecord, shape containerShape) string {
	if alias, ok := rec.Attr(config.AttrAlias); ok && alias != "" {
		return alias
	}
	if rec.AliasName != "" {
		return rec.AliasName
	}
	return FriendlyContainerName(shape.Category, shape.Template, shape.Elements)
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = collapseSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
