package binding

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/luabind/internal/config"
)

// propertyBinding is a synthesized property entry plus the setter it
// references, if any.
type propertyBinding struct {
	Entry  Entry
	Access PropertyAccess
	// Setter is the qualified setter name for read-write properties.
	Setter string
}

// ResolveAccess picks a property's access mode. An explicit readonly or
// readwrite attribute wins over PropertyAccess; unspecified is read-only.
func ResolveAccess(rec *ExportRecord) PropertyAccess {
	switch {
	case rec.Flag(config.AttrReadOnly):
		return AccessReadOnly
	case rec.Flag(config.AttrReadWrite):
		return AccessReadWrite
	case rec.PropertyAccess != AccessNone:
		return rec.PropertyAccess
	}
	return AccessReadOnly
}

// SetterName derives the conventional setter for a property name:
// getHealth becomes setHealth, health becomes setHealth.
func SetterName(name string) string {
	if len(name) > 3 && strings.HasPrefix(name, "get") {
		return "set" + name[3:]
	}
	return "set" + ucFirst(name)
}

// synthesizeProperty builds the property entry for rec bound on typeName.
func synthesizeProperty(rec *ExportRecord, typeName string) propertyBinding {
	getter := "&" + memberRef(rec, typeName)
	access := ResolveAccess(rec)
	pb := propertyBinding{Access: access}

	switch access {
	case AccessWriteOnly:
		pb.Entry = Entry{Name: rec.BoundName(), Value: "sol::writeonly_property(" + getter + ")"}
	case AccessReadWrite:
		pb.Setter = setterRef(rec, typeName)
		pb.Entry = Entry{Name: rec.BoundName(), Value: "sol::property(" + getter + ", &" + pb.Setter + ")"}
	default:
		pb.Entry = Entry{Name: rec.BoundName(), Value: "sol::readonly_property(" + getter + ")"}
	}
	return pb
}

// setterRef resolves the qualified setter of a read-write property. An
// explicit setter attribute is used verbatim, qualified under the owner
// unless it already is.
func setterRef(rec *ExportRecord, typeName string) string {
	setter := SetterName(rec.Name)
	if attr, ok := rec.Attr(config.AttrSetter); ok && strings.TrimSpace(attr) != "" {
		setter = strings.TrimSpace(attr)
		if strings.Contains(setter, config.NamespaceSeparator) {
			return setter
		}
	}
	return ownerRef(rec, typeName) + config.NamespaceSeparator + setter
}

// memberRef is the qualified native name of a member bound on typeName.
func memberRef(rec *ExportRecord, typeName string) string {
	if strings.Contains(rec.QualifiedName, config.NamespaceSeparator) {
		return rec.QualifiedName
	}
	return typeName + config.NamespaceSeparator + rec.Name
}

// ownerRef is the qualified owner of a member bound on typeName.
func ownerRef(rec *ExportRecord, typeName string) string {
	if strings.Contains(rec.QualifiedName, config.NamespaceSeparator) {
		return rec.ownerQualified()
	}
	return typeName
}

func ucFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
