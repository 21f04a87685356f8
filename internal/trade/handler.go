package trade

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/documents"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/platform/httpx"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	// plural keys the list payload, e.g. "purchases".
	plural string
}

func NewHandler(logger *slog.Logger, service *Service, plural string) *Handler {
	return &Handler{logger: logger, service: service, plural: plural}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}

	filters := ListFilters{
		Search:  q.Get("search"),
		Page:    page,
		PerPage: perPage,
	}
	filters.CounterpartyID, _ = strconv.ParseInt(q.Get("counterparty_id"), 10, 64)
	filters.WarehouseID, _ = strconv.ParseInt(q.Get("warehouse_id"), 10, 64)
	if from := q.Get("date_from"); from != "" {
		filters.DateFrom, _ = time.Parse("2006-01-02", from)
	}
	if to := q.Get("date_to"); to != "" {
		filters.DateTo, _ = time.Parse("2006-01-02", to)
	}

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list documents failed",
			slog.String("kind", h.service.spec.Kind), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Document{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		h.plural:     items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document ID")
		return
	}
	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input DocumentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	doc, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document ID")
		return
	}
	var input DocumentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	doc, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &validationErrs),
		errors.Is(err, ErrNoLines),
		errors.Is(err, documents.ErrNegativeAmount),
		errors.Is(err, documents.ErrNoPayment),
		errors.Is(err, documents.ErrInvalidQuantity):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Document", err.Error())
	default:
		h.logger.Error("document request failed",
			slog.String("kind", h.service.spec.Kind), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
