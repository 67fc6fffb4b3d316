// Package admin provides the minimal HTTP surface for registry introspection
// and mutation described in §4.11/§6: list the four capability registries,
// load a backend into one, or unload one. It intentionally carries none of
// the API-key CRUD, config history, or request-log querying a full admin
// console would have — those are out of scope (Non-goals, §2).
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	dispatch "github.com/dispatchlabs/inference-gateway"
	"github.com/go-chi/chi/v5"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Engine is the subset of the dispatch engine the admin handlers need,
// satisfied by *dispatch.Engine.
type Engine interface {
	ListModels() dispatch.ModelList
	LoadModel(ctx context.Context, kind, name string, opts dispatch.LoadOptions) error
	UnloadModel(ctx context.Context, kind, name string) error
}

// loadOptionsSchema validates the "options" field of a load request. It's
// deliberately permissive — path is optional, since an absent path means
// "fall back to the dummy backend" — but it rejects non-object
// shapes and unknown required fields a client might mistakenly send.
const loadOptionsSchema = `{
	"type": "object",
	"properties": {
		"path": {"type": "string"}
	},
	"additionalProperties": false
}`

// Handlers holds the admin HTTP handlers' dependencies.
type Handlers struct {
	Engine Engine

	schema *jsonschema.Schema
}

// NewHandlers compiles the load-options schema once and returns Handlers
// ready to mount.
func NewHandlers(engine Engine) (*Handlers, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("load-options.json", strings.NewReader(loadOptionsSchema)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile("load-options.json")
	if err != nil {
		return nil, err
	}
	return &Handlers{Engine: engine, schema: schema}, nil
}

// Routes returns a chi.Router with the admin endpoints mounted:
// GET /models, POST /models/load, POST /models/unload.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/models", h.listModels)
	r.Post("/models/load", h.loadModel)
	r.Post("/models/unload", h.unloadModel)
	return r
}

func (h *Handlers) listModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.ListModels())
}

type loadRequest struct {
	Kind    string                 `json:"kind"`
	Name    string                 `json:"name"`
	Options map[string]interface{} `json:"options"`
}

func (h *Handlers) loadModel(w http.ResponseWriter, r *http.Request) {
	var body loadRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Kind == "" || body.Name == "" {
		writeError(w, http.StatusBadRequest, "kind and name are required")
		return
	}

	opts := dispatch.LoadOptions{}
	if body.Options != nil {
		if err := h.schema.Validate(toInterface(body.Options)); err != nil {
			writeError(w, http.StatusBadRequest, "invalid options: "+err.Error())
			return
		}
		if path, ok := body.Options["path"].(string); ok {
			opts.Path = path
		}
	}

	if err := h.Engine.LoadModel(r.Context(), body.Kind, body.Name, opts); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type unloadRequest struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (h *Handlers) unloadModel(w http.ResponseWriter, r *http.Request) {
	var body unloadRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Kind == "" || body.Name == "" {
		writeError(w, http.StatusBadRequest, "kind and name are required")
		return
	}

	if err := h.Engine.UnloadModel(r.Context(), body.Kind, body.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// toInterface returns m unchanged as an interface{}: a map decoded straight
// from json.Decoder is already a plain tree the jsonschema package can walk.
func toInterface(m map[string]interface{}) interface{} {
	return m
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
