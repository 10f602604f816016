package binding

import (
	"strings"

	"github.com/funvibe/luabind/internal/config"
)

// dedupKey identifies a record for duplicate elimination. Constructors
// also carry their normalized signature so overloads survive.
type dedupKey struct {
	kind          Kind
	name          string
	qualifiedName string
	owner         string
	signature     string
}

// Deduplicate drops repeated records, keeping the first occurrence and the
// original order. It returns the kept records and the number dropped.
func Deduplicate(records []ExportRecord) ([]ExportRecord, int) {
	seen := NewOrderedSet[dedupKey]()
	kept := make([]ExportRecord, 0, len(records))
	dropped := 0
	for i := range records {
		rec := &records[i]
		key := dedupKey{kind: rec.Kind, name: rec.Name, qualifiedName: rec.QualifiedName, owner: rec.OwnerClass}
		if rec.Kind == KindConstructor {
			key.signature = normalizeSignature(rec.ParameterTypes)
		}
		if !seen.Add(key) {
			dropped++
			continue
		}
		kept = append(kept, *rec)
	}
	return kept, dropped
}

// MemberSet is the partition of one class's member records.
type MemberSet struct {
	Constructors  []ExportRecord
	Methods       []ExportRecord
	StaticMethods []ExportRecord
	Properties    []ExportRecord
	Operators     []ExportRecord

	// Flattened counts methods copied in from unexported bases.
	Flattened int
}

func (m *MemberSet) add(rec ExportRecord) {
	switch {
	case rec.Kind == KindConstructor:
		m.Constructors = append(m.Constructors, rec)
	case rec.Kind == KindOperator, rec.Kind == KindMethod && isOperatorName(rec.Name):
		m.Operators = append(m.Operators, rec)
	case rec.IsStaticMember():
		m.StaticMethods = append(m.StaticMethods, rec)
	case rec.Kind == KindMethod:
		m.Methods = append(m.Methods, rec)
	case rec.Kind == KindProperty:
		m.Properties = append(m.Properties, rec)
	}
}

func isMemberKind(k Kind) bool {
	switch k {
	case KindMethod, KindStaticMethod, KindConstructor, KindProperty, KindOperator:
		return true
	}
	return false
}

// aggregator groups deduplicated records by owning class and answers
// hierarchy questions for flattening.
type aggregator struct {
	classes *OrderedSet[string]
	byKey   map[string]*ExportRecord
	// alias maps a class's short and qualified names to its key.
	alias map[string]string
	// members holds member records by owner key. Owners without a class
	// record are keyed by their spelled owner name.
	members map[string][]ExportRecord
	// consumed marks owners whose members were bound or flattened.
	consumed map[string]bool
}

func newAggregator(records []ExportRecord) *aggregator {
	a := &aggregator{
		classes:  NewOrderedSet[string](),
		byKey:    make(map[string]*ExportRecord),
		alias:    make(map[string]string),
		members:  make(map[string][]ExportRecord),
		consumed: make(map[string]bool),
	}
	for i := range records {
		rec := &records[i]
		if rec.Kind != KindClass {
			continue
		}
		key := rec.qualified()
		if !a.classes.Add(key) {
			continue
		}
		a.byKey[key] = rec
		for _, name := range []string{key, rec.Name, rec.QualifiedName} {
			if _, taken := a.alias[name]; name != "" && !taken {
				a.alias[name] = key
			}
		}
	}
	for i := range records {
		rec := records[i]
		if !isMemberKind(rec.Kind) || rec.OwnerClass == "" {
			continue
		}
		owner := a.ownerKey(rec.OwnerClass)
		a.members[owner] = append(a.members[owner], rec)
	}
	return a
}

// ownerKey resolves an owner spelling to a class key. Unknown owners map to
// their last segment so that qualified and bare spellings group together.
func (a *aggregator) ownerKey(owner string) string {
	if key, ok := a.alias[owner]; ok {
		return key
	}
	if key, ok := a.alias[lastSegment(owner)]; ok {
		return key
	}
	return lastSegment(owner)
}

// class returns the class record spelled by name.
func (a *aggregator) class(name string) (*ExportRecord, bool) {
	key, ok := a.alias[name]
	if !ok {
		key, ok = a.alias[lastSegment(name)]
	}
	if !ok {
		return nil, false
	}
	return a.byKey[key], true
}

// isExported reports whether name is a class that gets its own usertype.
func (a *aggregator) isExported(name string) bool {
	rec, ok := a.class(name)
	return ok && isExportedClass(rec)
}

func isExportedClass(rec *ExportRecord) bool {
	_, ok := rec.Attr(config.AttrExported)
	return !ok || rec.Flag(config.AttrExported)
}

// Classes returns the exported class records in input order.
func (a *aggregator) Classes() []*ExportRecord {
	out := make([]*ExportRecord, 0, a.classes.Len())
	for _, key := range a.classes.Keys() {
		if rec := a.byKey[key]; isExportedClass(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Members partitions the members of cls and flattens in methods from
// unexported bases, requalified under typeName. Methods the class already
// declares win over inherited ones.
func (a *aggregator) Members(cls *ExportRecord, typeName string) *MemberSet {
	key := cls.qualified()
	a.consumed[key] = true
	set := &MemberSet{}
	for _, rec := range a.members[key] {
		set.add(rec)
	}

	names := NewOrderedSet[string]()
	for _, m := range set.Methods {
		names.Add(m.Name)
	}
	for _, m := range set.StaticMethods {
		names.Add(m.Name)
	}
	visited := NewOrderedSet[string]()
	visited.Add(key)
	a.flatten(cls.BaseClasses, cls.Name, typeName, set, names, visited)
	return set
}

func (a *aggregator) flatten(bases []string, derived, typeName string, set *MemberSet, names, visited *OrderedSet[string]) {
	for _, base := range bases {
		base = strings.TrimSpace(base)
		if base == "" || a.isExported(base) {
			continue
		}
		owner := a.ownerKey(base)
		if !visited.Add(owner) {
			continue
		}
		a.consumed[owner] = true
		for _, rec := range a.members[owner] {
			if !flattenable(&rec, owner) || !names.Add(rec.Name) {
				continue
			}
			rec.OwnerClass = derived
			rec.QualifiedName = typeName + config.NamespaceSeparator + rec.Name
			set.Methods = append(set.Methods, rec)
			set.Flattened++
		}
		if hidden, ok := a.byKey[owner]; ok {
			a.flatten(hidden.BaseClasses, derived, typeName, set, names, visited)
		}
	}
}

// flattenable reports whether a base member can be re-exposed on a derived
// class: public instance methods that are not special members.
func flattenable(rec *ExportRecord, owner string) bool {
	if rec.Kind != KindMethod || rec.IsStatic || isOperatorName(rec.Name) {
		return false
	}
	if strings.HasPrefix(rec.Name, "~") || rec.Name == lastSegment(owner) {
		return false
	}
	if access, ok := rec.Attr(config.AttrAccess); ok {
		switch strings.ToLower(strings.TrimSpace(access)) {
		case "private", "protected":
			return false
		}
	}
	return true
}

// Unconsumed returns owners whose members were never bound, in key order
// of first appearance.
func (a *aggregator) Unconsumed(records []ExportRecord) []string {
	seen := NewOrderedSet[string]()
	for i := range records {
		rec := &records[i]
		if !isMemberKind(rec.Kind) || rec.OwnerClass == "" {
			continue
		}
		owner := a.ownerKey(rec.OwnerClass)
		if !a.consumed[owner] {
			seen.Add(owner)
		}
	}
	return seen.Keys()
}
