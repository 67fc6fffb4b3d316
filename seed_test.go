package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSeedFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	contents := "backends:\n  - kind: embedding\n    name: seeded-embed\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	sf, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load seed file: %v", err)
	}
	if len(sf.Backends) != 1 || sf.Backends[0].Name != "seeded-embed" || sf.Backends[0].Kind != "embedding" {
		t.Fatalf("unexpected seed file contents: %+v", sf.Backends)
	}
}

func TestLoadSeedFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	contents := `{"backends":[{"kind":"llm","name":"seeded-llm"}]}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	sf, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load seed file: %v", err)
	}
	if len(sf.Backends) != 1 || sf.Backends[0].Name != "seeded-llm" {
		t.Fatalf("unexpected seed file contents: %+v", sf.Backends)
	}
}

func TestLoadSeedFileUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.txt")
	if err := os.WriteFile(path, []byte("irrelevant"), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	if _, err := LoadSeedFile(path); err == nil {
		t.Fatal("expected an error for an unsupported seed file extension")
	}
}

func TestSeedEnvProvidersInstallsLlamaFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.gguf")
	if err := os.WriteFile(path, []byte("GGUFrest-of-the-file-is-irrelevant-here"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}

	t.Setenv("LLAMA_MODEL_PATH", path)
	t.Setenv("LLAMA_MODEL_NAME", "seeded-llama")

	e := newTestEngine(t)
	models := e.ListModels()
	if !contains(models.LLM, "seeded-llama") {
		t.Fatalf("expected seeded-llama installed from LLAMA_MODEL_PATH, got %v", models.LLM)
	}
}

func TestSeedEnvProvidersSkipsInvalidFileWithoutFailingStartup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.gguf")
	if err := os.WriteFile(path, []byte("not-a-gguf-file"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}

	t.Setenv("LLAMA_MODEL_PATH", path)
	t.Setenv("LLAMA_MODEL_NAME", "seeded-llama-bad")

	e := newTestEngine(t)
	models := e.ListModels()
	if contains(models.LLM, "seeded-llama-bad") {
		t.Fatalf("expected invalid GGUF file to be rejected, not installed as %v", models.LLM)
	}
	assertContains(t, models.LLM, "dummy-model")
}

func TestApplySeedFileInstallsBackendsAndSkipsBadKinds(t *testing.T) {
	e := newTestEngine(t)
	sf := &SeedFile{Backends: []SeedEntry{
		{Kind: "embedding", Name: "seeded-embed"},
		{Kind: "bogus", Name: "never-installed"},
	}}

	e.ApplySeedFile(context.Background(), sf)

	models := e.ListModels()
	if !contains(models.Embedding, "seeded-embed") {
		t.Fatalf("expected seeded-embed to be installed, got %v", models.Embedding)
	}
}
