// Package handler is the thin HTTP layer over the loan engine. It parses and
// validates the wire shapes, delegates to the service, and maps coded errors
// onto statuses; no business logic lives here.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"locadora/internal/http/shared"
	"locadora/internal/loan"
	"locadora/internal/platform/middleware"
	"locadora/pkg/domain"
	dErrors "locadora/pkg/domainerrors"
)

// Service defines the engine operations the handler exposes.
type Service interface {
	Create(ctx context.Context, userID domain.UserID, itemID domain.ItemID, quantity int, dueDate time.Time) (*loan.Detail, error)
	Return(ctx context.Context, loanID domain.LoanID) (*loan.Detail, error)
	Renew(ctx context.Context, loanID domain.LoanID, extraDays int) (*loan.Detail, error)
	Get(ctx context.Context, loanID domain.LoanID) (*loan.Detail, error)
	List(ctx context.Context) ([]*loan.Detail, error)
	UserDebts(ctx context.Context, userID domain.UserID) ([]*loan.Detail, error)
	DebtReport(ctx context.Context) ([]*loan.Detail, error)
}

type Handler struct {
	logger *slog.Logger
	loans  Service
}

func New(loans Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, loans: loans}
}

// Register mounts the loan routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/loans", h.handleList)
	r.Post("/loans", h.handleCreate)
	r.Get("/loans/debts", h.handleDebtReport)
	r.Get("/loans/debts/{userID}", h.handleUserDebts)
	r.Get("/loans/{id}", h.handleGet)
	r.Post("/loans/{id}/return", h.handleReturn)
	r.Post("/loans/{id}/renew", h.handleRenew)
}

type createRequest struct {
	UserID   string `json:"user_id"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	DueDate  string `json:"due_date"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	userID, err := domain.ParseUserID(req.UserID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	itemID, err := domain.ParseItemID(req.ItemID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "due_date must be a calendar date (YYYY-MM-DD)"))
		return
	}

	detail, err := h.loans.Create(ctx, userID, itemID, req.Quantity, dueDate)
	if err != nil {
		h.logger.WarnContext(ctx, "create loan rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(detail))
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	loanID, err := domain.ParseLoanID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	detail, err := h.loans.Return(ctx, loanID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(detail))
}

func (h *Handler) handleRenew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	loanID, err := domain.ParseLoanID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	extraDays := 0
	if raw := r.URL.Query().Get("extra_days"); raw != "" {
		extraDays, err = strconv.Atoi(raw)
		if err != nil || extraDays < 1 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "extra_days must be a positive integer"))
			return
		}
	}

	detail, err := h.loans.Renew(ctx, loanID, extraDays)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, renewResponse{
		ID:             detail.Loan.ID.String(),
		Status:         string(detail.Loan.Status),
		Renewals:       detail.Loan.Renewals,
		PlannedDueDate: formatDate(detail.Loan.PlannedDueDate),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	loanID, err := domain.ParseLoanID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	detail, err := h.loans.Get(r.Context(), loanID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(detail))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	details, err := h.loans.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponses(details))
}

func (h *Handler) handleUserDebts(w http.ResponseWriter, r *http.Request) {
	userID, err := domain.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	details, err := h.loans.UserDebts(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponses(details))
}

func (h *Handler) handleDebtReport(w http.ResponseWriter, r *http.Request) {
	details, err := h.loans.DebtReport(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponses(details))
}

type loanResponse struct {
	ID             string  `json:"id"`
	Status         string  `json:"status"`
	UserID         string  `json:"user_id"`
	User           string  `json:"user"`
	ItemID         string  `json:"item_id"`
	Item           string  `json:"item"`
	Quantity       int     `json:"quantity"`
	StartDate      string  `json:"start_date"`
	PlannedDueDate string  `json:"planned_due_date"`
	ReturnDate     *string `json:"return_date,omitempty"`
	Renewals       int     `json:"renewals"`
	Fine           string  `json:"fine"`
}

type renewResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Renewals       int    `json:"renewals"`
	PlannedDueDate string `json:"planned_due_date"`
}

func toResponse(d *loan.Detail) loanResponse {
	resp := loanResponse{
		ID:             d.Loan.ID.String(),
		Status:         string(d.Loan.Status),
		UserID:         d.Loan.UserID.String(),
		User:           d.UserName,
		ItemID:         d.Loan.ItemID.String(),
		Item:           d.ItemName,
		Quantity:       d.Loan.Quantity,
		StartDate:      formatDate(d.Loan.StartDate),
		PlannedDueDate: formatDate(d.Loan.PlannedDueDate),
		Renewals:       d.Loan.Renewals,
		Fine:           d.Loan.Fine.StringFixed(2),
	}
	if d.Loan.ReturnDate != nil {
		s := formatDate(*d.Loan.ReturnDate)
		resp.ReturnDate = &s
	}
	return resp
}

func toResponses(details []*loan.Detail) []loanResponse {
	out := make([]loanResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toResponse(d))
	}
	return out
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
