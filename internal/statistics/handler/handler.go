package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"keyworker/internal/statistics/models"
	"keyworker/pkg/domain"
	dErrors "keyworker/pkg/domain-errors"
	"keyworker/pkg/platform/httputil"
	"keyworker/pkg/platform/sentinel"
	"keyworker/pkg/requestcontext"
)

// Store reads recorded statistics.
type Store interface {
	List(ctx context.Context, prison domain.PrisonCode, policy domain.Policy, from, to time.Time) ([]*models.PrisonStatistic, error)
	Prisoners(ctx context.Context, prison domain.PrisonCode, policy domain.Policy, date time.Time) ([]models.PrisonerStatistic, error)
}

// Trigger starts a calculation for every enabled prison.
type Trigger interface {
	Trigger(ctx context.Context, date time.Time) (int, error)
}

// Handler serves prison statistics.
type Handler struct {
	store   Store
	trigger Trigger
	logger  *slog.Logger
}

func New(store Store, trigger Trigger, logger *slog.Logger) *Handler {
	return &Handler{store: store, trigger: trigger, logger: logger}
}

// Register mounts statistics routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/prison-statistics/calculate", h.HandleCalculate)
	r.Get("/prisons/{prisonCode}/statistics", h.HandleList)
	r.Get("/prisons/{prisonCode}/statistics/{date}/prisoners", h.HandlePrisoners)
}

// HandleCalculate handles POST /prison-statistics/calculate?date=.
// The date defaults to yesterday.
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date := requestcontext.Now(ctx).UTC().AddDate(0, 0, -1)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "date must be yyyy-mm-dd"))
			return
		}
		date = parsed
	}
	n, err := h.trigger.Trigger(ctx, date)
	if err != nil {
		h.logger.ErrorContext(ctx, "statistics trigger failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, calculateResponse{
		Date:   date.Format(time.DateOnly),
		Events: n,
	})
}

// HandleList handles GET /prisons/{prisonCode}/statistics?policy=&from=&to=.
// The window defaults to the last 30 days.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	prison, policy, err := prisonArgs(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	to := models.Day(requestcontext.Now(r.Context()))
	if raw := q.Get("to"); raw != "" {
		if to, err = parseDate("to", raw); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	from := to.AddDate(0, 0, -30)
	if raw := q.Get("from"); raw != "" {
		if from, err = parseDate("from", raw); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	if from.After(to) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "from must not be after to"))
		return
	}

	stats, err := h.store.List(r.Context(), prison, policy, from, to)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatisticResponses(stats))
}

// HandlePrisoners handles GET /prisons/{prisonCode}/statistics/{date}/prisoners?policy=.
func (h *Handler) HandlePrisoners(w http.ResponseWriter, r *http.Request) {
	prison, policy, err := prisonArgs(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	date, err := parseDate("date", chi.URLParam(r, "date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	prisoners, err := h.store.Prisoners(r.Context(), prison, policy, date)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no statistic recorded for that date"))
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPrisonerResponses(prisoners))
}

func prisonArgs(r *http.Request) (domain.PrisonCode, domain.Policy, error) {
	prison, err := domain.ParsePrisonCode(chi.URLParam(r, "prisonCode"))
	if err != nil {
		return "", "", err
	}
	policy, err := domain.ParsePolicy(strings.ToUpper(r.URL.Query().Get("policy")))
	if err != nil {
		return "", "", err
	}
	return prison, policy, nil
}

func parseDate(name, raw string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, name+" must be yyyy-mm-dd")
	}
	return t, nil
}
