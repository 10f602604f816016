package binding

import (
	"strconv"
	"strings"

	"github.com/funvibe/luabind/internal/config"
)

// ResolveNamespace maps a record to its effective namespace path.
//
// Precedence, first match wins:
//  1. NamespaceHint, unless it is the "global" sentinel
//  2. the qualified-name prefix before the last "::", unless that prefix is
//     the record's own name or owner class (a class-qualified member is not
//     a namespace); a trailing owner-class segment is stripped
//  3. the "namespace" attribute
//  4. "global"
//
// Step 2 is a heuristic: "a::B::f" cannot be told apart from a function f in
// namespace a::B without the owner class, so the extractor's OwnerClass is
// trusted to disambiguate.
func ResolveNamespace(rec *ExportRecord) string {
	if hint := normalizeNamespace(rec.NamespaceHint); hint != "" && hint != config.GlobalNamespace {
		return hint
	}
	if rec.Kind == KindNamespace {
		return normalizeNamespace(rec.qualified())
	}
	if derived := derivedNamespace(rec); derived != "" {
		return derived
	}
	if attr, ok := rec.Attr(config.AttrNamespace); ok {
		if ns := normalizeNamespace(attr); ns != "" {
			return ns
		}
	}
	return config.GlobalNamespace
}

func derivedNamespace(rec *ExportRecord) string {
	if rec.Kind == KindContainer {
		// std::vector<int> lives wherever it is registered, not in std.
		return ""
	}
	sep := config.NamespaceSeparator
	q := rec.QualifiedName
	if i := strings.IndexByte(q, '<'); i >= 0 {
		q = q[:i]
	}
	idx := strings.LastIndex(q, sep)
	if idx <= 0 {
		return ""
	}
	prefix := q[:idx]
	if prefix == rec.Name || prefix == rec.OwnerClass {
		return ""
	}
	if rec.OwnerClass != "" {
		owner := sep + lastSegment(rec.OwnerClass)
		if strings.HasSuffix(prefix, owner) {
			return strings.TrimSuffix(prefix, owner)
		}
		if prefix == lastSegment(rec.OwnerClass) {
			return ""
		}
	}
	return prefix
}

// normalizeNamespace trims a namespace path and accepts "." as a separator.
func normalizeNamespace(ns string) string {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return ""
	}
	if !strings.Contains(ns, config.NamespaceSeparator) && strings.Contains(ns, ".") {
		ns = strings.ReplaceAll(ns, ".", config.NamespaceSeparator)
	}
	return strings.Trim(ns, ":")
}

// NamespaceTable maps namespace paths to generated table handles and
// remembers the order in which paths were discovered. Parents are always
// discovered before their children.
type NamespaceTable struct {
	handles map[string]string
	paths   *OrderedSet[string]
	used    map[string]bool
}

func newNamespaceTable() *NamespaceTable {
	return &NamespaceTable{
		handles: make(map[string]string),
		paths:   NewOrderedSet[string](),
		used:    map[string]bool{config.RootHandle: true},
	}
}

// Handle returns the table handle for path, allocating it (and its
// parents) on first use. The global namespace is the root state handle.
func (t *NamespaceTable) Handle(path string) string {
	path = normalizeNamespace(path)
	if path == "" || path == config.GlobalNamespace {
		return config.RootHandle
	}
	if h, ok := t.handles[path]; ok {
		return h
	}
	if idx := strings.LastIndex(path, config.NamespaceSeparator); idx > 0 {
		t.Handle(path[:idx])
	}

	base := identifier(strings.ReplaceAll(path, config.NamespaceSeparator, "_")) + "_ns"
	h := base
	for n := 2; t.used[h]; n++ {
		h = base + strconv.Itoa(n)
	}
	t.used[h] = true
	t.handles[path] = h
	t.paths.Add(path)
	return h
}

// Lookup returns the handle of an already discovered path.
func (t *NamespaceTable) Lookup(path string) (string, bool) {
	path = normalizeNamespace(path)
	if path == "" || path == config.GlobalNamespace {
		return config.RootHandle, true
	}
	h, ok := t.handles[path]
	return h, ok
}

// Paths returns the discovered non-global paths in discovery order.
func (t *NamespaceTable) Paths() []string { return t.paths.Keys() }

// indexExpr renders the table-indexing expression for a path:
// "game::ai" becomes lua["game"]["ai"].
func indexExpr(path string) string {
	var b strings.Builder
	b.WriteString(config.RootHandle)
	for _, seg := range strings.Split(path, config.NamespaceSeparator) {
		b.WriteString("[")
		b.WriteString(strconv.Quote(seg))
		b.WriteString("]")
	}
	return b.String()
}

// identifier returns a valid C++ identifier for s. Invalid characters
// become underscores and runs of underscores collapse.
func identifier(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok || r == '_' {
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			lastUnderscore = true
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}
	out := strings.TrimRight(b.String(), "_")
	if out == "" {
		return "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}
