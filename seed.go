package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dispatchlabs/inference-gateway/internal/logging"
	rt "github.com/dispatchlabs/inference-gateway/runtime"
	"gopkg.in/yaml.v3"
)

// SeedEntry is one backend to install at startup, the file-based
// counterpart to an admin load request (§10.2, §12.6).
type SeedEntry struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// SeedFile is the top-level shape of a GATEWAY_SEED file: a flat list of
// backends to load, applied in order after the dummy preload.
type SeedFile struct {
	Backends []SeedEntry `json:"backends" yaml:"backends"`
}

// LoadSeedFile reads a YAML (.yaml/.yml) or JSON (.json) seed file,
// matching the extension-dispatch convention the teacher's top-level
// config loader uses.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var sf SeedFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("parsing YAML seed file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("parsing JSON seed file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q: use .json, .yaml, or .yml", filepath.Ext(path))
	}
	return &sf, nil
}

// ApplySeedFile installs every entry in sf via the same LoadModel path an
// admin HTTP/CLI call would use — a bad path still falls back to the
// dummy backend for that entry rather than aborting the rest of the file.
func (e *Engine) ApplySeedFile(ctx context.Context, sf *SeedFile) {
	for _, entry := range sf.Backends {
		if err := e.LoadModel(ctx, entry.Kind, entry.Name, LoadOptions{Path: entry.Path}); err != nil {
			continue
		}
	}
}

// seedEnvProviders installs the optional provider-specific backends named
// in §6's "Provider seed paths, per enabled backend" environment variables.
// Every one of these is independently optional; a missing or invalid
// configuration for one backend never prevents the others, or the rest of
// startup, from proceeding (§4.2: "their absence must never fail
// initialization").
func (e *Engine) seedEnvProviders(ctx context.Context) {
	e.seedLlama()
	e.seedLlava()
	e.seedOnnx()
	e.seedOpenAI()
	e.seedBedrock(ctx)
	e.seedCloud(ctx)
}

func (e *Engine) seedLlama() {
	path := os.Getenv("LLAMA_MODEL_PATH")
	if path == "" {
		return
	}
	name := envOr("LLAMA_MODEL_NAME", "llama-local")
	h, err := rt.LoadLlamaFile(path)
	if err != nil {
		logging.Logger.Warn("llama seed load failed, leaving llm registry unchanged", "path", path, "err", err)
		return
	}
	e.llm.Insert(name, h)
	logging.Logger.Info("seeded llama backend", "name", name, "path", path)
}

func (e *Engine) seedLlava() {
	path := os.Getenv("LLAVA_MODEL_PATH")
	if path == "" {
		return
	}
	name := envOr("LLAVA_MODEL_NAME", "llava-local")
	h, err := rt.LoadLlava(path)
	if err != nil {
		logging.Logger.Warn("llava seed load failed, leaving multimodal registry unchanged", "path", path, "err", err)
		return
	}
	e.multimodal.Insert(name, h)
	logging.Logger.Info("seeded llava backend", "name", name, "path", path)
}

func (e *Engine) seedOnnx() {
	path := os.Getenv("ONNX_MODEL_PATH")
	if path == "" {
		return
	}
	name := envOr("ONNX_MODEL_NAME", "onnx-embedding")
	sharedLib := os.Getenv("ONNX_SHARED_LIBRARY_PATH")
	h, err := rt.LoadOnnxEmbedding(path, sharedLib)
	if err != nil {
		logging.Logger.Warn("onnx seed load failed, leaving embedding registry unchanged", "path", path, "err", err)
		return
	}
	e.embedding.Insert(name, h)
	logging.Logger.Info("seeded onnx embedding backend", "name", name, "path", path)
}

func (e *Engine) seedOpenAI() {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return
	}
	baseURL := os.Getenv("OPENAI_BASE_URL")

	if chatModel := os.Getenv("OPENAI_CHAT_MODEL"); chatModel != "" {
		h, err := rt.LoadOpenAI(apiKey, chatModel, baseURL)
		if err != nil {
			logging.Logger.Warn("openai chat seed load failed", "model", chatModel, "err", err)
		} else {
			e.llm.Insert(chatModel, h)
			logging.Logger.Info("seeded openai chat backend", "name", chatModel)
		}
	}

	if embedModel := os.Getenv("OPENAI_EMBEDDING_MODEL"); embedModel != "" {
		h, err := rt.LoadOpenAI(apiKey, embedModel, baseURL)
		if err != nil {
			logging.Logger.Warn("openai embedding seed load failed", "model", embedModel, "err", err)
		} else {
			e.embedding.Insert(embedModel, h)
			logging.Logger.Info("seeded openai embedding backend", "name", embedModel)
		}
	}
}

func (e *Engine) seedBedrock(ctx context.Context) {
	modelID := os.Getenv("BEDROCK_MODEL_ID")
	if modelID == "" {
		return
	}
	h, err := rt.LoadBedrock(ctx, os.Getenv("AWS_REGION"), modelID)
	if err != nil {
		logging.Logger.Warn("bedrock seed load failed, leaving llm registry unchanged", "model", modelID, "err", err)
		return
	}
	e.llm.Insert(modelID, h)
	logging.Logger.Info("seeded bedrock backend", "name", modelID)
}

func (e *Engine) seedCloud(ctx context.Context) {
	name := os.Getenv("CLOUD_MODEL_NAME")
	if name == "" {
		return
	}
	h, err := rt.LoadCloudRuntime(ctx,
		os.Getenv("CLOUD_TOKEN_URL"),
		os.Getenv("CLOUD_CLIENT_ID"),
		os.Getenv("CLOUD_CLIENT_SECRET"),
		os.Getenv("CLOUD_ENDPOINT"),
	)
	if err != nil {
		logging.Logger.Warn("cloud seed load failed, leaving llm registry unchanged", "name", name, "err", err)
		return
	}
	e.llm.Insert(name, h)
	logging.Logger.Info("seeded cloud backend", "name", name)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
