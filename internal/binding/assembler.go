package binding

import (
	"cmp"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/funvibe/luabind/internal/config"
)

var log = commonlog.GetLogger("luabind.binding")

// Options control the shape of the generated artifact.
type Options struct {
	EmitIncludes    bool
	WrapFunction    bool
	IndentWidth     int
	EmitInheritance bool
}

// DefaultOptions returns includes and the wrapper function on, four-space
// indentation and no inheritance declarators.
func DefaultOptions() Options {
	return Options{
		EmitIncludes: true,
		WrapFunction: true,
		IndentWidth:  config.DefaultIndentWidth,
	}
}

// Option configures a Generator.
type Option func(*Options)

// WithIndentWidth sets spaces per indentation level.
func WithIndentWidth(n int) Option {
	return func(o *Options) { o.IndentWidth = n }
}

// WithIncludes toggles the #include preamble.
func WithIncludes(on bool) Option {
	return func(o *Options) { o.EmitIncludes = on }
}

// WithWrapFunction toggles the register_<module>_bindings wrapper.
func WithWrapFunction(on bool) Option {
	return func(o *Options) { o.WrapFunction = on }
}

// WithInheritance emits sol::base_classes for bases that are themselves
// exported.
func WithInheritance(on bool) Option {
	return func(o *Options) { o.EmitInheritance = on }
}

// FromConfig maps a loaded configuration onto generator options.
func FromConfig(cfg *config.Config) Option {
	return func(o *Options) {
		o.EmitIncludes = cfg.IncludesEnabled()
		o.WrapFunction = cfg.WrapEnabled()
		if cfg.IndentWidth > 0 {
			o.IndentWidth = cfg.IndentWidth
		}
		o.EmitInheritance = cfg.EmitInheritance
	}
}

// Generator turns export records into binding source. A Generator holds
// only options; each call runs an independent pass, so one Generator may
// be shared between goroutines.
type Generator struct {
	opts Options
}

// NewGenerator creates a generator with DefaultOptions adjusted by opts.
func NewGenerator(opts ...Option) *Generator {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Generator{opts: o}
}

// Options returns the effective options.
func (g *Generator) Options() Options { return g.opts }

// GenerateModuleBinding emits the complete binding source for one module.
// Invalid records are reported and skipped; the result only fails on a
// structural error.
func (g *Generator) GenerateModuleBinding(moduleName string, records []ExportRecord) *GenerationResult {
	result := &GenerationResult{Success: true}
	result.Stats.RecordsIn = len(records)

	valid := make([]ExportRecord, 0, len(records))
	for i := range records {
		if err := records[i].Validate(i); err != nil {
			log.Warningf("%s", err.Error())
			result.Errors = append(result.Errors, err.Error())
			result.Stats.RecordsRejected++
			continue
		}
		valid = append(valid, records[i])
	}

	deduped, dropped := Deduplicate(valid)
	result.Stats.DuplicatesDropped = dropped
	if dropped > 0 {
		log.Debugf("module %s: dropped %d duplicate records", moduleName, dropped)
	}

	p := newPass(g.opts, moduleName, deduped, result)
	p.discover()
	if err := p.emit(); err != nil {
		var structural *StructuralError
		if !errors.As(err, &structural) {
			structural = &StructuralError{Msg: err.Error()}
		}
		log.Errorf("module %s: %s", moduleName, structural.Error())
		result.Errors = append(result.Errors, structural.Error())
		result.Success = false
		result.Code = ""
		return result
	}
	result.Code = p.out.String()

	log.Infof("module %s: %d bindings, %d warnings, %d errors",
		moduleName, result.BindingCount, len(result.Warnings), len(result.Errors))
	return result
}

// pass is the state of one generation call.
type pass struct {
	opts    Options
	module  string
	records []ExportRecord
	result  *GenerationResult
	out     *CodeBuilder
	ns      *NamespaceTable
	agg     *aggregator

	// locals are the C++ local variable names taken by usertype handles.
	locals *OrderedSet[string]
	// bound tracks Lua names per namespace path.
	bound    map[string]*OrderedSet[string]
	sections int
}

func newPass(opts Options, module string, records []ExportRecord, result *GenerationResult) *pass {
	if strings.TrimSpace(module) == "" {
		module = "module"
	}
	return &pass{
		opts:    opts,
		module:  module,
		records: records,
		result:  result,
		out:     NewCodeBuilder(opts.IndentWidth),
		ns:      newNamespaceTable(),
		agg:     newAggregator(records),
		locals:  NewOrderedSet[string](),
		bound:   make(map[string]*OrderedSet[string]),
	}
}

// placed is a top-level record with its resolved namespace.
type placed struct {
	rec *ExportRecord
	ns  string
}

// discover allocates a namespace handle for every record that will be
// emitted at top level, in record order.
func (p *pass) discover() {
	for i := range p.records {
		rec := &p.records[i]
		switch rec.Kind {
		case KindClass:
			if !isExportedClass(rec) {
				continue
			}
		case KindFunction, KindConstant, KindEnum, KindContainer, KindNamespace:
		default:
			continue
		}
		p.ns.Handle(ResolveNamespace(rec))
	}
}

func (p *pass) emit() error {
	p.header()
	if p.opts.WrapFunction {
		p.out.Linef("void %s(%s %s) {", RegisterFunctionName(p.module), config.StateType, config.RootHandle)
		p.out.Indent()
	}
	err := p.body()
	if p.opts.WrapFunction {
		p.out.Dedent()
		p.out.Line("}")
	}
	return err
}

// RegisterFunctionName is the name of the generated entry point.
func RegisterFunctionName(module string) string {
	return "register_" + identifier(module) + "_bindings"
}

func (p *pass) header() {
	p.out.Comment("Code generated by luabind. DO NOT EDIT.")
	p.out.Comment("Lua bindings for module " + strconv.Quote(p.module) + ".")
	p.out.Blank()
	if !p.opts.EmitIncludes {
		return
	}
	p.out.Linef("#include <%s>", config.RuntimeInclude)
	seen := NewOrderedSet[string]()
	for i := range p.records {
		if base := baseName(p.records[i].SourceFile); base != "" && seen.Add(base) {
			p.out.Linef("#include %s", strconv.Quote(base))
		}
	}
	p.out.Blank()
}

func baseName(path string) string {
	path = strings.TrimSpace(path)
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		path = path[idx+1:]
	}
	return path
}

func (p *pass) body() error {
	p.checkMembers()

	paths := p.ns.Paths()
	if err := p.section("Namespaces", len(paths), func() error {
		for _, path := range paths {
			h, ok := p.ns.Lookup(path)
			if !ok {
				return structuralf("namespace %q has no handle", path)
			}
			p.out.Linef("sol::table %s = %s.get_or_create<sol::table>();", h, indexExpr(path))
		}
		return nil
	}); err != nil {
		return err
	}

	classes := p.agg.Classes()
	items := make([]placed, 0, len(classes))
	for _, cls := range classes {
		items = append(items, placed{rec: cls, ns: ResolveNamespace(cls)})
	}
	if err := p.section("Classes", len(items), func() error {
		for i, it := range p.grouped(items) {
			if i > 0 {
				p.out.Blank()
			}
			if err := p.emitClass(it); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	p.warnUnconsumed()

	for _, sec := range []struct {
		title string
		kind  Kind
		emit  func(placed, string) error
	}{
		{"Functions", KindFunction, p.emitFunction},
		{"Constants", KindConstant, p.emitConstant},
		{"Enums", KindEnum, p.emitEnum},
		{"Containers", KindContainer, p.emitContainer},
	} {
		items := p.collect(sec.kind)
		if err := p.section(sec.title, len(items), func() error {
			for _, it := range p.grouped(items) {
				h, ok := p.ns.Lookup(it.ns)
				if !ok {
					return structuralf("namespace %q of %s %s was never discovered", it.ns, it.rec.Kind, it.rec.Name)
				}
				if err := sec.emit(it, h); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) section(title string, n int, emit func() error) error {
	if n == 0 {
		return nil
	}
	if p.sections > 0 {
		p.out.Blank()
	}
	p.sections++
	p.out.Comment(title)
	return emit()
}

func (p *pass) collect(kind Kind) []placed {
	var items []placed
	for i := range p.records {
		if rec := &p.records[i]; rec.Kind == kind {
			items = append(items, placed{rec: rec, ns: ResolveNamespace(rec)})
		}
	}
	return items
}

// grouped orders items by namespace: global first, then discovery order.
// Record order is kept within a namespace.
func (p *pass) grouped(items []placed) []placed {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b placed) int {
		return cmp.Compare(p.rank(a.ns), p.rank(b.ns))
	})
	return out
}

func (p *pass) rank(ns string) int {
	ns = normalizeNamespace(ns)
	if ns == "" || ns == config.GlobalNamespace {
		return -1
	}
	return p.ns.paths.Position(ns)
}

// claim reserves a Lua name in a namespace. The first binding wins.
func (p *pass) claim(ns, name string) bool {
	set, ok := p.bound[ns]
	if !ok {
		set = NewOrderedSet[string]()
		p.bound[ns] = set
	}
	return set.Add(name)
}

// local returns an unused C++ variable name built from base and suffix.
func (p *pass) local(base, suffix string) string {
	stem := identifier(base) + suffix
	name := stem
	for n := 2; !p.locals.Add(name); n++ {
		name = stem + strconv.Itoa(n)
	}
	return name
}

// checkMembers warns about member records that can never be bound.
func (p *pass) checkMembers() {
	for i := range p.records {
		rec := &p.records[i]
		if isMemberKind(rec.Kind) && strings.TrimSpace(rec.OwnerClass) == "" {
			p.result.warnf("%s %s has no owner class; skipped", rec.Kind, rec.Name)
		}
	}
}

// warnUnconsumed reports members whose owner was neither bound nor
// flattened into a bound class.
func (p *pass) warnUnconsumed() {
	for _, owner := range p.agg.Unconsumed(p.records) {
		p.result.warnf("members of %s skipped: class was not bound", owner)
	}
}

func (p *pass) classTypeName(cls *ExportRecord) string {
	return cls.qualified()
}

// classPlan builds the binding plan of an exported class.
func (p *pass) classPlan(cls *ExportRecord, ns string) *ClassBindingPlan {
	typeName := p.classTypeName(cls)
	plan := &ClassBindingPlan{
		TypeName:    typeName,
		DisplayName: cls.BoundName(),
		Namespace:   ns,
		StaticOnly:  cls.Flag(config.AttrStatic),
	}
	members := p.agg.Members(cls, typeName)
	plan.Flattened = members.Flattened

	names := newMemberNames()
	add := func(list *[]Entry, e Entry) {
		if !names.claim(e) {
			p.result.warnf("class %s: %s is bound twice; keeping the first", plan.DisplayName, e.key())
			return
		}
		*list = append(*list, e)
	}

	switch {
	case plan.StaticOnly, cls.Flag(config.AttrAbstract):
		plan.Constructors = noConstructor
	default:
		plan.Constructors = SynthesizeConstructors(typeName, cls.Name, members.Constructors)
	}

	methodNames := NewOrderedSet[string]()
	if !plan.StaticOnly {
		for i := range members.Methods {
			m := &members.Methods[i]
			methodNames.Add(m.Name)
			add(&plan.Methods, Entry{Name: m.BoundName(), Value: "&" + memberRef(m, typeName)})
		}
	} else if len(members.Methods)+len(members.Properties)+len(members.Operators) > 0 {
		log.Debugf("class %s: static class, instance members skipped", plan.DisplayName)
	}
	for i := range members.StaticMethods {
		m := &members.StaticMethods[i]
		methodNames.Add(m.Name)
		add(&plan.StaticMethods, Entry{Name: m.BoundName(), Value: "&" + memberRef(m, typeName)})
	}
	if cls.Flag(config.AttrSingleton) && !methodNames.Has(config.SingletonAccessor) {
		methodNames.Add(config.SingletonAccessor)
		add(&plan.StaticMethods, Entry{
			Name:  config.SingletonAccessor,
			Value: "&" + typeName + config.NamespaceSeparator + config.SingletonAccessor,
		})
	}

	if plan.StaticOnly {
		return plan
	}

	for i := range members.Properties {
		prop := &members.Properties[i]
		pb := synthesizeProperty(prop, typeName)
		if pb.Setter != "" && !methodNames.Has(lastSegment(pb.Setter)) {
			p.result.warnf("class %s: setter %s for property %s is not an exported method", plan.DisplayName, pb.Setter, prop.Name)
		}
		add(&plan.Properties, pb.Entry)
	}

	for i := range members.Operators {
		op := &members.Operators[i]
		e, meta, ok := operatorEntry(op, typeName)
		if !ok {
			p.result.Stats.OperatorsDropped++
			log.Debugf("class %s: operator %s has no Lua metamethod", plan.DisplayName, op.Name)
			continue
		}
		if !names.claim(e) {
			p.result.Stats.OperatorsDropped++
			log.Debugf("class %s: %s already bound, %s dropped", plan.DisplayName, e.Name, meta)
			continue
		}
		plan.Operators = append(plan.Operators, e)
	}

	if p.opts.EmitInheritance {
		for _, base := range cls.BaseClasses {
			if rec, ok := p.agg.class(strings.TrimSpace(base)); ok && isExportedClass(rec) {
				plan.Bases = append(plan.Bases, p.classTypeName(rec))
			}
		}
	}
	return plan
}

func (p *pass) emitClass(it placed) error {
	h, ok := p.ns.Lookup(it.ns)
	if !ok {
		return structuralf("namespace %q of class %s was never discovered", it.ns, it.rec.Name)
	}
	// Claimed before planning: a skipped class must leave its members
	// unconsumed so they are reported.
	if name := it.rec.BoundName(); !p.claim(it.ns, name) {
		p.result.warnf("class %s: name already bound in %s; skipped", name, it.ns)
		return nil
	}
	plan := p.classPlan(it.rec, it.ns)

	stats := &p.result.Stats
	stats.Classes++
	stats.FlattenedMethods += plan.Flattened

	if plan.StaticOnly {
		emitStaticTable(p.out, h, p.local(plan.TypeName, "_tbl"), plan)
		stats.StaticMethods += len(plan.StaticMethods)
		p.result.BindingCount += 1 + len(plan.StaticMethods)
		log.Debugf("class %s: static table with %d functions", plan.DisplayName, len(plan.StaticMethods))
		return nil
	}

	cost := PlanCost(plan)
	form := chooseForm(cost)
	typeHandle := ""
	if form == formTwoPhase {
		stats.BatchedClasses++
		typeHandle = p.local(plan.TypeName, "_type")
	}
	log.Debugf("class %s: cost %d, %s form", plan.DisplayName, cost, form)
	emitUsertype(p.out, h, typeHandle, plan, form)

	stats.Methods += len(plan.Methods)
	stats.StaticMethods += len(plan.StaticMethods)
	stats.Properties += len(plan.Properties)
	stats.Operators += len(plan.Operators)
	p.result.BindingCount += 1 + len(plan.Entries())
	return nil
}

func (p *pass) emitFunction(it placed, h string) error {
	name := it.rec.BoundName()
	if !p.claim(it.ns, name) {
		p.result.warnf("function %s: name already bound in %s; skipped", name, it.ns)
		return nil
	}
	p.out.Linef("%s.set_function(%s, &%s);", h, strconv.Quote(name), it.rec.qualified())
	p.result.Stats.Functions++
	p.result.BindingCount++
	return nil
}

func (p *pass) emitConstant(it placed, h string) error {
	name := it.rec.BoundName()
	if !p.claim(it.ns, name) {
		p.result.warnf("constant %s: name already bound in %s; skipped", name, it.ns)
		return nil
	}
	p.out.Linef("%s[%s] = %s;", h, strconv.Quote(name), it.rec.qualified())
	p.result.Stats.Constants++
	p.result.BindingCount++
	return nil
}

func (p *pass) emitEnum(it placed, h string) error {
	name := it.rec.BoundName()
	if !p.claim(it.ns, name) {
		p.result.warnf("enum %s: name already bound in %s; skipped", name, it.ns)
		return nil
	}
	typeName := it.rec.qualified()
	values := NewOrderedSet[string]()
	for _, v := range it.rec.EnumValues {
		v, _, _ = strings.Cut(v, "=")
		if v = strings.TrimSpace(v); v != "" {
			values.Add(v)
		}
	}

	head := h + ".new_enum<" + typeName + ">(" + strconv.Quote(name) + ", {"
	if values.Len() == 0 {
		p.out.Line(head + "});")
	} else {
		p.out.Line(head)
		p.out.Indent()
		for i, v := range values.Keys() {
			line := "{" + strconv.Quote(v) + ", " + typeName + config.NamespaceSeparator + v + "}"
			if i < values.Len()-1 {
				line += ","
			}
			p.out.Line(line)
		}
		p.out.Dedent()
		p.out.Line("});")
	}
	p.result.Stats.Enums++
	p.result.BindingCount++
	return nil
}

func (p *pass) emitContainer(it placed, h string) error {
	shape := classifyContainer(it.rec)
	stem := containerDisplayName(it.rec, shape)
	name := stem
	for n := 2; !p.claim(it.ns, name); n++ {
		name = stem + strconv.Itoa(n)
	}
	if shape.Category == CategoryUnknown {
		p.result.warnf("container %s: unrecognized shape %s; only common operations are bound", name, shape.NativeType)
	}

	plan := buildContainerPlan(shape, name, it.ns)
	cost := PlanCost(plan)
	form := chooseForm(cost)
	typeHandle := ""
	if form == formTwoPhase {
		typeHandle = p.local(name, "_type")
	}
	log.Debugf("container %s: %s %s, cost %d", name, shape.Category, shape.NativeType, cost)
	emitUsertype(p.out, h, typeHandle, plan, form)

	p.result.Stats.Containers++
	p.result.BindingCount += 1 + len(plan.Entries())
	return nil
}
