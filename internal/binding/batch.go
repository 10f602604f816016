package binding

import (
	"strconv"
	"strings"

	"github.com/funvibe/luabind/internal/config"
)

// emissionForm selects how a usertype registration is written out.
type emissionForm int

const (
	// formSingleCall passes every member to one new_usertype call.
	formSingleCall emissionForm = iota
	// formTwoPhase creates the usertype with its constructors and then
	// assigns each member on the returned handle.
	formTwoPhase
)

func (f emissionForm) String() string {
	if f == formTwoPhase {
		return "two-phase"
	}
	return "single-call"
}

// PlanCost estimates the argument count a single new_usertype call would
// need: the type name, two per member entry and two for inheritance.
func PlanCost(p *ClassBindingPlan) int {
	cost := 1 + 2*len(p.Entries())
	if len(p.Bases) > 0 {
		cost += 2
	}
	return cost
}

// chooseForm picks the single-call form while the cost stays within the
// variadic argument budget of the runtime library.
func chooseForm(cost int) emissionForm {
	if cost <= config.ArgumentBudget {
		return formSingleCall
	}
	return formTwoPhase
}

// emitUsertype writes the registration of p on the namespace handle ns.
// typeHandle names the local variable used by the two-phase form.
func emitUsertype(b *CodeBuilder, ns, typeHandle string, p *ClassBindingPlan, form emissionForm) {
	head := ns + ".new_usertype<" + p.TypeName + ">(" + strconv.Quote(p.DisplayName)
	ctor := p.Constructors
	if ctor == "" {
		ctor = noConstructor
	}

	args := []string{ctor}
	if len(p.Bases) > 0 {
		args = append(args, "sol::base_classes, sol::bases<"+strings.Join(p.Bases, ", ")+">()")
	}

	if form == formTwoPhase {
		b.Linef("auto %s = %s, %s);", typeHandle, head, strings.Join(args, ", "))
		for _, e := range p.Entries() {
			b.Linef("%s[%s] = %s;", typeHandle, e.key(), e.Value)
		}
		return
	}

	for _, e := range p.Entries() {
		args = append(args, e.key()+", "+e.Value)
	}
	b.Line(head + ",")
	b.Indent()
	for i, arg := range args {
		if i < len(args)-1 {
			arg += ","
		}
		b.Line(arg)
	}
	b.Dedent()
	b.Line(");")
}

// emitStaticTable writes a static-only class as a named table of functions.
// The root state_view spells the table factory create_named_table.
func emitStaticTable(b *CodeBuilder, ns, tableHandle string, p *ClassBindingPlan) {
	factory := "create_named"
	if ns == config.RootHandle {
		factory = "create_named_table"
	}
	b.Linef("sol::table %s = %s.%s(%s);", tableHandle, ns, factory, strconv.Quote(p.DisplayName))
	for _, e := range p.StaticMethods {
		b.Linef("%s.set_function(%s, %s);", tableHandle, e.key(), e.Value)
	}
}
