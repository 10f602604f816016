// Package luabind is the public entry point for embedding the binding
// generator in other tools.
package luabind

import (
	"github.com/funvibe/luabind/internal/binding"
	"github.com/funvibe/luabind/internal/records"
)

// Engine types aliases
type ExportRecord = binding.ExportRecord
type Kind = binding.Kind
type PropertyAccess = binding.PropertyAccess
type GenerationResult = binding.GenerationResult
type Stats = binding.Stats
type Generator = binding.Generator
type Option = binding.Option
type Options = binding.Options
type RecordFile = records.File

// Record kinds
const (
	KindClass        = binding.KindClass
	KindMethod       = binding.KindMethod
	KindStaticMethod = binding.KindStaticMethod
	KindConstructor  = binding.KindConstructor
	KindProperty     = binding.KindProperty
	KindFunction     = binding.KindFunction
	KindEnum         = binding.KindEnum
	KindConstant     = binding.KindConstant
	KindNamespace    = binding.KindNamespace
	KindOperator     = binding.KindOperator
	KindContainer    = binding.KindContainer
)

// Property access modes
const (
	AccessReadOnly  = binding.AccessReadOnly
	AccessReadWrite = binding.AccessReadWrite
	AccessWriteOnly = binding.AccessWriteOnly
)

// Generator options
var (
	WithIndentWidth  = binding.WithIndentWidth
	WithIncludes     = binding.WithIncludes
	WithWrapFunction = binding.WithWrapFunction
	WithInheritance  = binding.WithInheritance
)

// NewGenerator creates a generator with default options overridden by opts.
func NewGenerator(opts ...Option) *Generator {
	return binding.NewGenerator(opts...)
}

// Generate binds one module with default options.
func Generate(module string, recs []ExportRecord) *GenerationResult {
	return binding.NewGenerator().GenerateModuleBinding(module, recs)
}

// LoadRecords reads a YAML, JSON or CBOR record file.
func LoadRecords(path string) (*RecordFile, error) {
	return records.Load(path)
}

// RegisterFunctionName is the C++ function a generated module defines.
func RegisterFunctionName(module string) string {
	return binding.RegisterFunctionName(module)
}
