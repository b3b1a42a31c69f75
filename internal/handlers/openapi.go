package handlers

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPIHandler serves the API description as YAML and JSON
type OpenAPIHandler struct {
	spec []byte

	once    sync.Once
	jsonDoc []byte
	jsonErr error
}

// NewOpenAPIHandler creates a handler for the embedded API description
func NewOpenAPIHandler() *OpenAPIHandler {
	return &OpenAPIHandler{spec: openAPISpec}
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/openapi.yaml", h.ServeYAML).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/openapi.json", h.ServeJSON).Methods(http.MethodGet)
}

// ServeYAML serves the OpenAPI spec in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(h.spec)
}

// ServeJSON serves the OpenAPI spec converted to JSON. The conversion runs once.
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		var doc map[string]any
		if err := yaml.Unmarshal(h.spec, &doc); err != nil {
			h.jsonErr = err
			return
		}
		h.jsonDoc, h.jsonErr = json.Marshal(doc)
	})
	if h.jsonErr != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to parse OpenAPI specification")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonDoc)
}
