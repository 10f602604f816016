package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/funvibe/luabind/internal/binding"
	"github.com/funvibe/luabind/internal/cache"
	"github.com/funvibe/luabind/internal/records"
)

var log = commonlog.GetLogger("luabind.pipeline")

// LoadRecordsProcessor reads the record file.
type LoadRecordsProcessor struct{}

func (lp *LoadRecordsProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Failed() {
		return ctx
	}
	f, err := records.Load(ctx.RecordsPath)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.File = f
	ctx.OutputPath = ctx.Config.OutputFile(f.Module)
	log.Debugf("%s: loaded %d records for module %s", ctx.RecordsPath, len(f.Records), f.Module)
	return ctx
}

// CacheLookupProcessor fingerprints the input and checks the index. A nil
// Cache disables caching.
type CacheLookupProcessor struct {
	Cache     *cache.Cache
	Generator *binding.Generator
}

func (cp *CacheLookupProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Failed() || ctx.File == nil || cp.Cache == nil {
		return ctx
	}
	fp, err := cache.Fingerprint(ctx.File, cp.Generator.Options())
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Fingerprint = fp
	if ctx.Force || ctx.CheckOnly {
		return ctx
	}

	entry, ok, err := cp.Cache.Lookup(ctx.File.Module, fp, ctx.OutputPath)
	if err != nil {
		// Lookup failures fall through to a full generation.
		log.Warningf("%s: cache lookup failed: %s", ctx.File.Module, err.Error())
		return ctx
	}
	if ok {
		log.Infof("%s: up to date (%s)", ctx.File.Module, entry.OutputPath)
		ctx.Cached = entry
		ctx.OutputPath = entry.OutputPath
	}
	return ctx
}

// GenerateProcessor runs the binding engine.
type GenerateProcessor struct {
	Generator *binding.Generator
}

func (gp *GenerateProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Failed() || ctx.File == nil || ctx.Cached != nil {
		return ctx
	}
	ctx.Result = gp.Generator.GenerateModuleBinding(ctx.File.Module, ctx.File.Records)
	return ctx
}

// WriteOutputProcessor writes the artifact atomically: the code goes to a
// temporary file in the output directory which is then renamed into place.
type WriteOutputProcessor struct{}

func (wp *WriteOutputProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Failed() || ctx.Result == nil || ctx.CheckOnly {
		return ctx
	}
	if err := writeAtomic(ctx.OutputPath, []byte(ctx.Result.Code)); err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Written = true
	log.Infof("%s: wrote %s (%d bindings)", ctx.File.Module, ctx.OutputPath, ctx.Result.BindingCount)
	return ctx
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// CacheStoreProcessor records a written artifact in the index.
type CacheStoreProcessor struct {
	Cache *cache.Cache
}

func (sp *CacheStoreProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Failed() || !ctx.Written || sp.Cache == nil || ctx.Fingerprint == "" {
		return ctx
	}
	_, err := sp.Cache.Store(cache.Entry{
		Module:      ctx.File.Module,
		Fingerprint: ctx.Fingerprint,
		OutputPath:  ctx.OutputPath,
		Bindings:    ctx.Result.BindingCount,
	})
	if err != nil {
		log.Warningf("%s: %s", ctx.File.Module, err.Error())
	}
	return ctx
}

// Standard returns the full generation pipeline. c may be nil.
func Standard(gen *binding.Generator, c *cache.Cache) *Pipeline {
	return New(
		&LoadRecordsProcessor{},
		&CacheLookupProcessor{Cache: c, Generator: gen},
		&GenerateProcessor{Generator: gen},
		&WriteOutputProcessor{},
		&CacheStoreProcessor{Cache: c},
	)
}
