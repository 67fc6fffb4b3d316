package dispatch

import (
	"context"

	"github.com/dispatchlabs/inference-gateway/internal/auditlog"
	"github.com/dispatchlabs/inference-gateway/internal/logging"
	rt "github.com/dispatchlabs/inference-gateway/runtime"
)

// ModelList is the admin list response: the four registries' name sets.
type ModelList struct {
	LLM        []string `json:"llm"`
	Embedding  []string `json:"embedding"`
	Multimodal []string `json:"multimodal"`
	Image      []string `json:"image"`
}

// ListModels implements the admin list operation.
func (e *Engine) ListModels() ModelList {
	return ModelList{
		LLM:        e.llm.Names(),
		Embedding:  e.embedding.Names(),
		Multimodal: e.multimodal.Names(),
		Image:      e.image.Names(),
	}
}

// LoadOptions is the provider configuration accepted by LoadModel. Path is
// its only field. The admin HTTP layer validates a request's "options"
// object against its JSON Schema (which admits only "path") and copies
// path into this struct; no other option reaches LoadModel.
type LoadOptions struct {
	Path string
}

// LoadModel installs a backend of kind under name. An unknown kind is an
// error; an unavailable provider loader or invalid/absent path falls back
// to the corresponding dummy backend rather than failing the load.
func (e *Engine) LoadModel(ctx context.Context, kind, name string, opts LoadOptions) error {
	switch kind {
	case "llm":
		e.llm.Insert(name, e.loadLLM(opts))
	case "embedding":
		e.embedding.Insert(name, e.loadEmbedding(opts))
	case "multimodal":
		e.multimodal.Insert(name, e.loadMultimodal(opts))
	default:
		return errBadRequest("unknown admin load kind %q", kind)
	}
	e.audit.Write(ctx, auditlog.Entry{Kind: "admin_load", Capability: kind, Model: name})
	return nil
}

// UnloadModel removes name from the kind registry. Unknown kind is an
// error; unknown name is a no-op.
func (e *Engine) UnloadModel(ctx context.Context, kind, name string) error {
	switch kind {
	case "llm":
		e.llm.Remove(name)
	case "embedding":
		e.embedding.Remove(name)
	case "multimodal":
		e.multimodal.Remove(name)
	default:
		return errBadRequest("unknown admin unload kind %q", kind)
	}
	e.audit.Write(ctx, auditlog.Entry{Kind: "admin_unload", Capability: kind, Model: name})
	return nil
}

func (e *Engine) loadLLM(opts LoadOptions) rt.TextGenerator {
	if opts.Path != "" {
		if h, err := rt.LoadLlamaFile(opts.Path); err == nil {
			return h
		} else {
			logging.Logger.Warn("llama file load failed, falling back to dummy", "path", opts.Path, "err", err)
		}
	}
	return rt.NewDummyRuntime()
}

func (e *Engine) loadMultimodal(opts LoadOptions) rt.VisionGenerator {
	if opts.Path != "" {
		if h, err := rt.LoadLlava(opts.Path); err == nil {
			return h
		} else {
			logging.Logger.Warn("llava load failed, falling back to dummy", "path", opts.Path, "err", err)
		}
	}
	return rt.NewDummyRuntime()
}

func (e *Engine) loadEmbedding(opts LoadOptions) rt.Embedder {
	if opts.Path != "" {
		if h, err := rt.LoadOnnxEmbedding(opts.Path, ""); err == nil {
			return h
		} else {
			logging.Logger.Warn("onnx embedding load failed, falling back to dummy", "path", opts.Path, "err", err)
		}
	}
	return rt.NewDummyEmbeddingRuntime(rt.DummyEmbeddingDimension)
}
