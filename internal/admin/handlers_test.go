package admin

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	dispatch "github.com/dispatchlabs/inference-gateway"
)

type fakeEngine struct {
	models     dispatch.ModelList
	loadErr    error
	unloadErr  error
	lastLoad   dispatch.LoadOptions
	lastKind   string
	lastName   string
	lastAction string
}

func (f *fakeEngine) ListModels() dispatch.ModelList { return f.models }

func (f *fakeEngine) LoadModel(_ context.Context, kind, name string, opts dispatch.LoadOptions) error {
	f.lastAction, f.lastKind, f.lastName, f.lastLoad = "load", kind, name, opts
	return f.loadErr
}

func (f *fakeEngine) UnloadModel(_ context.Context, kind, name string) error {
	f.lastAction, f.lastKind, f.lastName = "unload", kind, name
	return f.unloadErr
}

func newTestHandlers(t *testing.T, engine Engine) *Handlers {
	t.Helper()
	h, err := NewHandlers(engine)
	if err != nil {
		t.Fatalf("new handlers: %v", err)
	}
	return h
}

func TestListModels(t *testing.T) {
	engine := &fakeEngine{models: dispatch.ModelList{LLM: []string{"dummy-model"}}}
	h := newTestHandlers(t, engine)

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("dummy-model")) {
		t.Fatalf("expected body to contain dummy-model, got %s", rec.Body.String())
	}
}

func TestLoadModel(t *testing.T) {
	engine := &fakeEngine{}
	h := newTestHandlers(t, engine)

	body := bytes.NewBufferString(`{"kind":"llm","name":"local","options":{"path":"/models/x.gguf"}}`)
	req := httptest.NewRequest(http.MethodPost, "/models/load", body)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if engine.lastAction != "load" || engine.lastKind != "llm" || engine.lastName != "local" {
		t.Fatalf("unexpected engine call: %+v", engine)
	}
	if engine.lastLoad.Path != "/models/x.gguf" {
		t.Fatalf("expected path to be forwarded, got %q", engine.lastLoad.Path)
	}
}

func TestLoadModelRejectsUnknownOption(t *testing.T) {
	engine := &fakeEngine{}
	h := newTestHandlers(t, engine)

	body := bytes.NewBufferString(`{"kind":"llm","name":"local","options":{"bogus":1}}`)
	req := httptest.NewRequest(http.MethodPost, "/models/load", body)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown option, got %d", rec.Code)
	}
}

func TestUnloadModel(t *testing.T) {
	engine := &fakeEngine{}
	h := newTestHandlers(t, engine)

	body := bytes.NewBufferString(`{"kind":"embedding","name":"dummy-embedding"}`)
	req := httptest.NewRequest(http.MethodPost, "/models/unload", body)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if engine.lastAction != "unload" || engine.lastKind != "embedding" || engine.lastName != "dummy-embedding" {
		t.Fatalf("unexpected engine call: %+v", engine)
	}
}
