package binding

import "fmt"

// Stats summarizes what a generation pass did.
type Stats struct {
	RecordsIn         int `json:"records_in" yaml:"records_in"`
	RecordsRejected   int `json:"records_rejected" yaml:"records_rejected"`
	DuplicatesDropped int `json:"duplicates_dropped" yaml:"duplicates_dropped"`

	Classes          int `json:"classes" yaml:"classes"`
	BatchedClasses   int `json:"batched_classes" yaml:"batched_classes"`
	Methods          int `json:"methods" yaml:"methods"`
	StaticMethods    int `json:"static_methods" yaml:"static_methods"`
	Properties       int `json:"properties" yaml:"properties"`
	Operators        int `json:"operators" yaml:"operators"`
	OperatorsDropped int `json:"operators_dropped" yaml:"operators_dropped"`
	FlattenedMethods int `json:"flattened_methods" yaml:"flattened_methods"`

	Functions  int `json:"functions" yaml:"functions"`
	Constants  int `json:"constants" yaml:"constants"`
	Enums      int `json:"enums" yaml:"enums"`
	Containers int `json:"containers" yaml:"containers"`
}

// GenerationResult is the outcome of one GenerateModuleBinding call.
type GenerationResult struct {
	// Code is the generated C++ source. Empty when Success is false.
	Code string
	// BindingCount is the number of names bound into Lua: every class,
	// member entry, function, constant, enum and container.
	BindingCount int
	Warnings     []string
	Errors       []string
	Success      bool
	Stats        Stats
}

func (r *GenerationResult) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Warning(msg)
	r.Warnings = append(r.Warnings, msg)
}

// StructuralError is an internal inconsistency that makes the pass unable
// to produce trustworthy output.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Msg
}

func structuralf(format string, args ...any) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}
