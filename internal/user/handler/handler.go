package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"locadora/internal/http/shared"
	"locadora/internal/user"
	"locadora/pkg/domain"
	dErrors "locadora/pkg/domainerrors"
)

// Service defines the user operations the handler exposes.
type Service interface {
	List(ctx context.Context) ([]*user.User, error)
	Get(ctx context.Context, id domain.UserID) (*user.User, error)
	Create(ctx context.Context, name, email, phone string, debt decimal.Decimal) (*user.User, error)
	Update(ctx context.Context, id domain.UserID, name, email, phone string) (*user.User, error)
	Delete(ctx context.Context, id domain.UserID) error
	Settle(ctx context.Context, id domain.UserID) (bool, error)
}

type Handler struct {
	logger *slog.Logger
	users  Service
}

func New(users Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, users: users}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/users", h.handleList)
	r.Post("/users", h.handleCreate)
	r.Get("/users/{id}", h.handleGet)
	r.Put("/users/{id}", h.handleUpdate)
	r.Delete("/users/{id}", h.handleDelete)
	r.Post("/users/{id}/settle", h.handleSettle)
}

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	// Debt is only honored on create; updates never touch the balance.
	Debt string `json:"debt,omitempty"`
}

func (req *userRequest) validate() error {
	if req.Name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	if req.Email == "" {
		return dErrors.New(dErrors.CodeBadRequest, "email is required")
	}
	if req.Phone == "" {
		return dErrors.New(dErrors.CodeBadRequest, "phone is required")
	}
	return nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		shared.WriteError(w, err)
		return
	}

	debt := decimal.Zero
	if req.Debt != "" {
		var err error
		debt, err = decimal.NewFromString(req.Debt)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "debt must be a decimal amount"))
			return
		}
	}

	u, err := h.users.Create(r.Context(), req.Name, req.Email, req.Phone, debt)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(u))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(u))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		shared.WriteError(w, err)
		return
	}

	u, err := h.users.Update(r.Context(), id, req.Name, req.Email, req.Phone)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(u))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.users.Delete(ctx, id); err != nil {
		h.logger.WarnContext(ctx, "delete user rejected", "user_id", id.String(), "error", err.Error())
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settleResponse struct {
	Settled bool `json:"settled"`
}

func (h *Handler) handleSettle(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	settled, err := h.users.Settle(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, settleResponse{Settled: settled})
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Debt  string `json:"debt"`
}

func toResponse(u *user.User) userResponse {
	return userResponse{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Debt:  u.Debt.StringFixed(2),
	}
}
