package binding

import "strconv"

// Entry is one bound member: a name (or meta-function slot) and the
// implementation expression bound to it.
type Entry struct {
	// Name is the Lua-visible name, or a meta-function expression when Meta is set.
	Name  string
	Meta  bool
	Value string
}

// key renders the entry's key as a registration argument.
func (e Entry) key() string {
	if e.Meta {
		return e.Name
	}
	return strconv.Quote(e.Name)
}

// ClassBindingPlan is everything needed to emit one usertype. It is built
// per pass and discarded after emission.
type ClassBindingPlan struct {
	// TypeName is the native type bound (e.g. "game::Player").
	TypeName string
	// DisplayName is the Lua-visible type name.
	DisplayName string
	// Namespace is the resolved namespace path.
	Namespace string

	// Constructors is the constructor declarator expression.
	Constructors string
	// Bases lists exported base types for the inheritance declarator.
	Bases []string

	Methods       []Entry
	StaticMethods []Entry
	Properties    []Entry
	Operators     []Entry

	// StaticOnly classes are bound as a plain table of static functions.
	StaticOnly bool

	// Flattened counts methods pulled in from unexported bases.
	Flattened int
}

// Entries returns all member entries in emission order: methods, static
// methods, properties, operators.
func (p *ClassBindingPlan) Entries() []Entry {
	out := make([]Entry, 0, len(p.Methods)+len(p.StaticMethods)+len(p.Properties)+len(p.Operators))
	out = append(out, p.Methods...)
	out = append(out, p.StaticMethods...)
	out = append(out, p.Properties...)
	out = append(out, p.Operators...)
	return out
}

// memberNames collects entry keys so that a plan never binds the same
// name twice.
type memberNames struct {
	names *OrderedSet[string]
}

func newMemberNames() *memberNames {
	return &memberNames{names: NewOrderedSet[string]()}
}

// claim reserves an entry key. Returns false if it was already taken.
func (m *memberNames) claim(e Entry) bool {
	return m.names.Add(e.key())
}
