package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"checklist/internal/endpoints"
	"checklist/pkg/platform/httputil"
)

type endpointResponse struct {
	Operation endpoints.Operation `json:"operation"`
	Tenant    string              `json:"tenant"`
	Path      string              `json:"path"`
}

// handleResolveEndpoint shows which backend path an operation maps to for a
// tenant. The optional "param" query value feeds operations that take an id.
func handleResolveEndpoint(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	op := endpoints.Operation(chi.URLParam(r, "operation"))

	path, err := endpoints.Resolve(op, tenant, r.URL.Query().Get("param"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &endpointResponse{Operation: op, Tenant: tenant, Path: path})
}

func handleListOperations(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string][]endpoints.Operation{
		"operations": endpoints.Operations(),
	})
}
