package finance

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/platform/httpx"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.listAccounts)
		r.Get("/{id}", h.getAccount)
		r.Post("/", h.createAccount)
		r.Put("/{id}", h.updateAccount)
		r.Delete("/{id}", h.deleteAccount)
	})
	r.Route("/deposits", func(r chi.Router) {
		r.Get("/", h.listMovements("deposits", h.service.ListDeposits))
		r.Post("/", h.createMovement(h.service.CreateDeposit))
		r.Delete("/{id}", h.deleteMovement(h.service.DeleteDeposit))
	})
	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", h.listMovements("expenses", h.service.ListExpenses))
		r.Post("/", h.createMovement(h.service.CreateExpense))
		r.Delete("/{id}", h.deleteMovement(h.service.DeleteExpense))
	})
}

func parseFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	accountID, _ := strconv.ParseInt(q.Get("account_id"), 10, 64)
	return ListFilters{
		AccountID: accountID,
		Search:    q.Get("search"),
		Page:      page,
		PerPage:   perPage,
	}
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	filters := parseFilters(r)
	items, total, err := h.service.ListAccounts(r.Context(), filters)
	if err != nil {
		h.logger.Error("list accounts failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Account{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"accounts":   items,
		"pagination": shared.NewPagination(filters.Page, filters.PerPage, total),
	})
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account ID")
		return
	}
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var account Account
	if err := httpx.DecodeJSON(r, &account); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.CreateAccount(r.Context(), account)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account ID")
		return
	}
	var account Account
	if err := httpx.DecodeJSON(r, &account); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.UpdateAccount(r.Context(), id, account); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account ID")
		return
	}
	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) listMovements(key string, list func(ctx context.Context, f ListFilters) ([]Movement, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := parseFilters(r)
		items, total, err := list(r.Context(), filters)
		if err != nil {
			h.logger.Error("list movements failed", slog.String("kind", key), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		if items == nil {
			items = []Movement{}
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			key:          items,
			"pagination": shared.NewPagination(filters.Page, filters.PerPage, total),
		})
	}
}

func (h *Handler) createMovement(create func(ctx context.Context, m Movement) (Movement, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var movement Movement
		if err := httpx.DecodeJSON(r, &movement); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
		created, err := create(r.Context(), movement)
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, created)
	}
}

func (h *Handler) deleteMovement(remove func(ctx context.Context, id int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid ID")
			return
		}
		if err := remove(r.Context(), id); err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrMovementNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidAmount):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Amount", err.Error())
	default:
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	}
}
