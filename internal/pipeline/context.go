package pipeline

import (
	"github.com/funvibe/luabind/internal/binding"
	"github.com/funvibe/luabind/internal/cache"
	"github.com/funvibe/luabind/internal/config"
	"github.com/funvibe/luabind/internal/records"
)

// PipelineContext carries one record file through the stages.
type PipelineContext struct {
	// RecordsPath is the input record file.
	RecordsPath string
	Config      *config.Config

	// Force regenerates even when the cache has a matching entry.
	Force bool
	// CheckOnly validates and generates in memory without writing output.
	CheckOnly bool

	File        *records.File
	Fingerprint string
	// Cached is set when CacheLookup found an up-to-date output.
	Cached *cache.Entry

	Result     *binding.GenerationResult
	OutputPath string
	// Written is true once the artifact is on disk.
	Written bool

	// Errors are stage failures. Record-level diagnostics live in Result.
	Errors []error
}

// NewPipelineContext creates a context for one record file.
func NewPipelineContext(recordsPath string, cfg *config.Config) *PipelineContext {
	if cfg == nil {
		cfg = config.Default()
	}
	return &PipelineContext{RecordsPath: recordsPath, Config: cfg}
}

// Failed reports whether a stage failed or generation was unsuccessful.
func (c *PipelineContext) Failed() bool {
	return len(c.Errors) > 0 || (c.Result != nil && !c.Result.Success)
}

// Module returns the module name once records are loaded.
func (c *PipelineContext) Module() string {
	if c.File == nil {
		return records.ModuleName(c.RecordsPath)
	}
	return c.File.Module
}
