package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"keyworker/internal/referencedata"
	"keyworker/pkg/platform/httputil"
)

// Handler lists reference data.
type Handler struct {
	catalog *referencedata.Catalog
}

func New(catalog *referencedata.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// Register mounts reference data endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/reference-data/{domain}", h.HandleList)
}

type codedDescription struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// HandleList handles GET /reference-data/{domain}.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	domain, err := referencedata.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries := h.catalog.List(domain)
	resp := make([]codedDescription, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, codedDescription{Code: e.Key.Code, Description: e.Description})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
