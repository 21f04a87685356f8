package adjustments

import (
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
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.commit)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	warehouseID, _ := strconv.ParseInt(r.URL.Query().Get("warehouse_id"), 10, 64)
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}

	items, total, err := h.service.List(r.Context(), ListFilters{
		WarehouseID: warehouseID,
		Search:      r.URL.Query().Get("search"),
		Page:        page,
		PerPage:     perPage,
	})
	if err != nil {
		h.logger.Error("list adjustments failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Adjustment{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"adjustments": items,
		"pagination":  shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid adjustment ID")
		return
	}
	adjustment, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, adjustment)
}

func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	var input CommitInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if header := r.Header.Get("Idempotency-Key"); header != "" && input.RequestID == "" {
		input.RequestID = header
	}

	result, err := h.service.Commit(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid adjustment ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrWarehouseNotFound):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unknown Warehouse", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	case errors.Is(err, ErrWarehouseRequired), errors.Is(err, ErrNoLines), errors.Is(err, ErrInvalidLine):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Adjustment", err.Error())
	default:
		h.logger.Error("adjustment request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
