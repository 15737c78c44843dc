package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"keyworker/internal/allocation/service"
	"keyworker/pkg/domain"
	dErrors "keyworker/pkg/domain-errors"
	"keyworker/pkg/platform/httputil"
)

// Handler serves allocation and subject access endpoints.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts allocation routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/allocations", h.HandleAllocate)
	r.Get("/allocations/{personIdentifier}", h.HandleHistory)
	r.Delete("/allocations/{personIdentifier}", h.HandleDeallocate)
	r.Get("/subject-access-request", h.HandleSubjectAccessRequest)
}

// HandleAllocate handles POST /allocations.
func (h *Handler) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid json payload"))
		return
	}
	cmd, err := req.toCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	allocation, err := h.service.Allocate(r.Context(), cmd)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "allocate failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(allocation))
}

// HandleHistory handles GET /allocations/{personIdentifier}?policy=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	policy, person, err := pathArgs(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	history, err := h.service.History(r.Context(), policy, person)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(history))
}

// HandleDeallocate handles DELETE /allocations/{personIdentifier}?policy=.
func (h *Handler) HandleDeallocate(w http.ResponseWriter, r *http.Request) {
	policy, person, err := pathArgs(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Deallocate(r.Context(), policy, person); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubjectAccessRequest handles GET /subject-access-request?prn=&fromDate=&toDate=.
// No content when nothing is held about the person.
func (h *Handler) HandleSubjectAccessRequest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	person, err := domain.ParsePersonIdentifier(q.Get("prn"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	from, to, err := parseWindow(q.Get("fromDate"), q.Get("toDate"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	allocations, err := h.service.SubjectAccessRequest(r.Context(), person, from, to)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if len(allocations) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, subjectAccessResponse{
		PRN:     person.String(),
		Content: toResponses(allocations),
	})
}

func pathArgs(r *http.Request) (domain.Policy, domain.PersonIdentifier, error) {
	policy, err := domain.ParsePolicy(strings.ToUpper(r.URL.Query().Get("policy")))
	if err != nil {
		return "", "", err
	}
	person, err := domain.ParsePersonIdentifier(chi.URLParam(r, "personIdentifier"))
	if err != nil {
		return "", "", err
	}
	return policy, person, nil
}
