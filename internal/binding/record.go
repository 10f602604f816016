// Package binding synthesizes Lua (sol2) registration code from extracted
// native declarations.
//
// The engine consumes the ordered ExportRecord list produced by the
// declaration extractor for one module and emits a single C++ artifact:
// namespace tables, class usertypes, free functions, constants, enums and
// container usertypes, wrapped in a register_<module>_bindings function.
//
// A generation pass never aborts on a bad record. Invalid records are
// reported in GenerationResult.Errors and skipped; everything else is still
// emitted. Only an internal structural fault fails the pass.
package binding

import (
	"fmt"
	"strings"

	"github.com/funvibe/luabind/internal/config"
)

// Kind is the declaration kind of an ExportRecord.
type Kind string

const (
	KindClass        Kind = "class"
	KindMethod       Kind = "method"
	KindStaticMethod Kind = "static_method"
	KindConstructor  Kind = "constructor"
	KindProperty     Kind = "property"
	KindFunction     Kind = "function"
	KindEnum         Kind = "enum"
	KindConstant     Kind = "constant"
	KindNamespace    Kind = "namespace"
	KindOperator     Kind = "operator"
	KindContainer    Kind = "container"
)

var knownKinds = map[Kind]bool{
	KindClass: true, KindMethod: true, KindStaticMethod: true, KindConstructor: true,
	KindProperty: true, KindFunction: true, KindEnum: true, KindConstant: true,
	KindNamespace: true, KindOperator: true, KindContainer: true,
}

// PropertyAccess is the resolved access mode of a property.
type PropertyAccess string

const (
	AccessNone      PropertyAccess = ""
	AccessReadOnly  PropertyAccess = "readonly"
	AccessReadWrite PropertyAccess = "readwrite"
	AccessWriteOnly PropertyAccess = "writeonly"
)

// ExportRecord is the normalized view of one extracted declaration.
type ExportRecord struct {
	Kind Kind `json:"kind" yaml:"kind" cbor:"kind"`

	// Name is the unqualified declaration name. Never empty.
	Name string `json:"name" yaml:"name" cbor:"name"`

	// AliasName overrides the name bound in Lua.
	AliasName string `json:"alias_name,omitempty" yaml:"alias_name,omitempty" cbor:"alias_name,omitempty"`

	// QualifiedName is the fully qualified native name (e.g. "game::Player::getHealth").
	QualifiedName string `json:"qualified_name,omitempty" yaml:"qualified_name,omitempty" cbor:"qualified_name,omitempty"`

	// OwnerClass is the enclosing class for members; empty otherwise.
	OwnerClass string `json:"owner_class,omitempty" yaml:"owner_class,omitempty" cbor:"owner_class,omitempty"`

	// NamespaceHint is an explicit namespace placement.
	NamespaceHint string `json:"namespace_hint,omitempty" yaml:"namespace_hint,omitempty" cbor:"namespace_hint,omitempty"`

	ParameterTypes []string `json:"parameter_types,omitempty" yaml:"parameter_types,omitempty" cbor:"parameter_types,omitempty"`
	ReturnType     string   `json:"return_type,omitempty" yaml:"return_type,omitempty" cbor:"return_type,omitempty"`
	IsStatic       bool     `json:"is_static,omitempty" yaml:"is_static,omitempty" cbor:"is_static,omitempty"`
	IsConst        bool     `json:"is_const,omitempty" yaml:"is_const,omitempty" cbor:"is_const,omitempty"`
	BaseClasses    []string `json:"base_classes,omitempty" yaml:"base_classes,omitempty" cbor:"base_classes,omitempty"`

	PropertyAccess PropertyAccess `json:"property_access,omitempty" yaml:"property_access,omitempty" cbor:"property_access,omitempty"`

	// Attributes carries annotation overrides (alias, setter, namespace, class flags).
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty" cbor:"attributes,omitempty"`

	EnumValues            []string `json:"enum_values,omitempty" yaml:"enum_values,omitempty" cbor:"enum_values,omitempty"`
	ContainerElementTypes []string `json:"container_element_types,omitempty" yaml:"container_element_types,omitempty" cbor:"container_element_types,omitempty"`

	// SourceFile is the declaring header; its basename becomes an include line.
	SourceFile string `json:"source_file,omitempty" yaml:"source_file,omitempty" cbor:"source_file,omitempty"`
}

// Attr returns an attribute value and whether it is present.
func (r *ExportRecord) Attr(key string) (string, bool) {
	if r.Attributes == nil {
		return "", false
	}
	v, ok := r.Attributes[key]
	return v, ok
}

// Flag reports whether an attribute is present and not explicitly false.
// Extractors write bare annotations as empty values, so "" counts as set.
func (r *ExportRecord) Flag(key string) bool {
	v, ok := r.Attr(key)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "false", "0", "no", "off":
		return false
	}
	return true
}

// BoundName is the name the declaration is exposed under in Lua.
func (r *ExportRecord) BoundName() string {
	if alias, ok := r.Attr(config.AttrAlias); ok && alias != "" {
		return alias
	}
	if r.AliasName != "" {
		return r.AliasName
	}
	return r.Name
}

// IsStaticMember reports whether a method record binds without an instance.
func (r *ExportRecord) IsStaticMember() bool {
	return r.Kind == KindStaticMethod || (r.Kind == KindMethod && r.IsStatic)
}

// ValidationError reports a record rejected before synthesis.
type ValidationError struct {
	Index  int
	Name   string
	Kind   Kind
	Reason string
}

func (e *ValidationError) Error() string {
	name := e.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("record %d (%s %s): %s", e.Index, e.Kind, name, e.Reason)
}

// Validate checks the record invariants. index is the record's position in
// the input list and only appears in the error.
func (r *ExportRecord) Validate(index int) error {
	fail := func(reason string) error {
		return &ValidationError{Index: index, Name: r.Name, Kind: r.Kind, Reason: reason}
	}
	if !knownKinds[r.Kind] {
		return fail(fmt.Sprintf("unknown kind %q", string(r.Kind)))
	}
	if strings.TrimSpace(r.Name) == "" {
		return fail("empty name")
	}
	if (r.Kind == KindMethod || r.Kind == KindFunction) && strings.TrimSpace(r.ReturnType) == "" {
		return fail("missing return type")
	}
	switch r.PropertyAccess {
	case AccessNone, AccessReadOnly, AccessReadWrite, AccessWriteOnly:
	default:
		return fail(fmt.Sprintf("unknown property access %q", string(r.PropertyAccess)))
	}
	return nil
}

// qualified returns the record's qualified native name, falling back to
// owner::name or the bare name.
func (r *ExportRecord) qualified() string {
	if r.QualifiedName != "" {
		return r.QualifiedName
	}
	if r.OwnerClass != "" {
		return r.OwnerClass + config.NamespaceSeparator + r.Name
	}
	return r.Name
}

// ownerQualified returns the qualified name of the record's owner: the
// qualified name minus its last segment, or OwnerClass.
func (r *ExportRecord) ownerQualified() string {
	if r.QualifiedName != "" {
		if idx := strings.LastIndex(r.QualifiedName, config.NamespaceSeparator); idx > 0 {
			return r.QualifiedName[:idx]
		}
	}
	return r.OwnerClass
}

func lastSegment(name string) string {
	if idx := strings.LastIndex(name, config.NamespaceSeparator); idx >= 0 {
		return name[idx+len(config.NamespaceSeparator):]
	}
	return name
}
