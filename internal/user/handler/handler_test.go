package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locadora/internal/user"
	"locadora/pkg/domain"
	"locadora/pkg/tx"
)

type fineStub struct{}

func (fineStub) ClearFinesByUser(context.Context, domain.UserID) error { return nil }

func newTestRouter(t *testing.T) (chi.Router, *user.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := user.NewService(user.NewInMemoryStore(), fineStub{}, tx.NewMemoryRunner(), nil, logger)

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r, svc
}

func postJSON(t *testing.T, router chi.Router, path string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateUser(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("creates with explicit starting debt", func(t *testing.T) {
		rec := postJSON(t, router, "/users", map[string]any{
			"name":  "ana",
			"email": "ana@example.com",
			"phone": "11 99999-0000",
			"debt":  "3.50",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "3.50", resp["debt"])
		assert.NotEmpty(t, resp["id"])
	})

	t.Run("debt defaults to zero", func(t *testing.T) {
		rec := postJSON(t, router, "/users", map[string]any{
			"name":  "bia",
			"email": "bia@example.com",
			"phone": "11 99999-0001",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "0.00", resp["debt"])
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		for _, body := range []map[string]any{
			{"email": "x@example.com", "phone": "1"},
			{"name": "x", "phone": "1"},
			{"name": "x", "email": "x@example.com"},
		} {
			rec := postJSON(t, router, "/users", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("malformed debt is rejected", func(t *testing.T) {
		rec := postJSON(t, router, "/users", map[string]any{
			"name":  "caio",
			"email": "caio@example.com",
			"phone": "11 99999-0002",
			"debt":  "lots",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateUserNeverTouchesDebt(t *testing.T) {
	router, svc := newTestRouter(t)
	u, err := svc.Create(context.Background(), "dani", "dani@example.com", "11 99999-0003", decimal.RequireFromString("9.99"))
	require.NoError(t, err)

	raw, _ := json.Marshal(map[string]any{
		"name":  "dani lima",
		"email": "dani@example.com",
		"phone": "11 99999-0004",
		"debt":  "0.00",
	})
	req := httptest.NewRequest(http.MethodPut, "/users/"+u.ID.String(), bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "dani lima", resp["name"])
	assert.Equal(t, "9.99", resp["debt"], "update must not write the debt ledger")
}

func TestDeleteUser(t *testing.T) {
	router, svc := newTestRouter(t)

	t.Run("refuses while debt is outstanding", func(t *testing.T) {
		u, err := svc.Create(context.Background(), "edu", "edu@example.com", "11 99999-0005", decimal.RequireFromString("2.50"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodDelete, "/users/"+u.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("removes a clean user", func(t *testing.T) {
		u, err := svc.Create(context.Background(), "fia", "fia@example.com", "11 99999-0006", decimal.Zero)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodDelete, "/users/"+u.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestSettleUser(t *testing.T) {
	router, svc := newTestRouter(t)
	u, err := svc.Create(context.Background(), "gil", "gil@example.com", "11 99999-0007", decimal.RequireFromString("25.00"))
	require.NoError(t, err)

	rec := postJSON(t, router, "/users/"+u.ID.String()+"/settle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"settled":true}`, rec.Body.String())

	rec = postJSON(t, router, "/users/"+u.ID.String()+"/settle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"settled":false}`, rec.Body.String())
}

func TestGetUnknownUser(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
