package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"locadora/internal/http/shared"
	"locadora/internal/inventory"
	"locadora/pkg/domain"
	dErrors "locadora/pkg/domainerrors"
)

// Service defines the catalog operations the handler exposes.
type Service interface {
	List(ctx context.Context) ([]*inventory.Item, error)
	Get(ctx context.Context, id domain.ItemID) (*inventory.Item, error)
	Create(ctx context.Context, name, description, category string, totalQuantity int) (*inventory.Item, error)
	Update(ctx context.Context, id domain.ItemID, name, description, category string, totalQuantity int) (*inventory.Item, error)
	Delete(ctx context.Context, id domain.ItemID) error
	ItemAvailability(ctx context.Context, id domain.ItemID) (*inventory.ItemAvailability, error)
	AvailabilityReport(ctx context.Context) ([]inventory.AvailabilitySummary, error)
}

type Handler struct {
	logger *slog.Logger
	items  Service
}

func New(items Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, items: items}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/items", h.handleList)
	r.Post("/items", h.handleCreate)
	r.Get("/items/availability", h.handleAvailabilityReport)
	r.Get("/items/{id}", h.handleGet)
	r.Put("/items/{id}", h.handleUpdate)
	r.Delete("/items/{id}", h.handleDelete)
	r.Get("/items/{id}/availability", h.handleItemAvailability)
}

type itemRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	TotalQuantity int    `json:"total_quantity"`
}

func (req *itemRequest) validate() error {
	if req.Name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	if req.Category == "" {
		return dErrors.New(dErrors.CodeBadRequest, "category is required")
	}
	if req.TotalQuantity < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "total_quantity cannot be negative")
	}
	return nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		shared.WriteError(w, err)
		return
	}
	item, err := h.items.Create(r.Context(), req.Name, req.Description, req.Category, req.TotalQuantity)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(item))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseItemID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	item, err := h.items.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(item))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseItemID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		shared.WriteError(w, err)
		return
	}
	item, err := h.items.Update(r.Context(), id, req.Name, req.Description, req.Category, req.TotalQuantity)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(item))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseItemID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.items.Delete(ctx, id); err != nil {
		h.logger.WarnContext(ctx, "delete item rejected", "item_id", id.String(), "error", err.Error())
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type holderResponse struct {
	User     string `json:"user"`
	Quantity int    `json:"quantity"`
}

type availabilityResponse struct {
	Item      itemResponse     `json:"item"`
	Available int              `json:"available"`
	Holders   []holderResponse `json:"holders"`
}

func (h *Handler) handleItemAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseItemID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	avail, err := h.items.ItemAvailability(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	holders := make([]holderResponse, 0, len(avail.Holders))
	for _, holder := range avail.Holders {
		holders = append(holders, holderResponse{User: holder.UserName, Quantity: holder.Quantity})
	}
	shared.WriteJSON(w, http.StatusOK, availabilityResponse{
		Item:      toResponse(avail.Item),
		Available: avail.Available,
		Holders:   holders,
	})
}

type summaryResponse struct {
	Item      itemResponse `json:"item"`
	OnLoan    int          `json:"on_loan"`
	Available int          `json:"available"`
}

func (h *Handler) handleAvailabilityReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.items.AvailabilityReport(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]summaryResponse, 0, len(report))
	for _, row := range report {
		out = append(out, summaryResponse{
			Item:      toResponse(row.Item),
			OnLoan:    row.OnLoan,
			Available: row.Available,
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

type itemResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Category      string `json:"category"`
	TotalQuantity int    `json:"total_quantity"`
	Reserved      int    `json:"reserved"`
}

func toResponse(item *inventory.Item) itemResponse {
	return itemResponse{
		ID:            item.ID.String(),
		Name:          item.Name,
		Description:   item.Description,
		Category:      item.Category,
		TotalQuantity: item.TotalQuantity,
		Reserved:      item.Reserved,
	}
}
