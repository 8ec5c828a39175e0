package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"caixa/internal/core"
	"caixa/internal/session"
)

type transactionView struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	SessionID string  `json:"sessionId"`
	CreatedAt string  `json:"createdAt"`
}

func newTransactionView(tx core.Transaction) transactionView {
	return transactionView{
		ID:        tx.ID,
		Title:     tx.Title,
		Amount:    tx.Amount.Units(),
		SessionID: tx.SessionID,
		CreatedAt: tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// handleCreateTransaction validates the payload before touching the session,
// so a rejected request never mints a cookie.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := parseCreateTransaction(w, r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	sessionID, _ := s.sessions.Resolve(w, r)

	if _, err := s.svc.Create(r.Context(), sessionID, in); err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, err)
			return
		}
		slog.ErrorContext(r.Context(), "Create transaction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := session.Current(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	txs, err := s.svc.List(r.Context(), sessionID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, newTransactionView(tx))
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": views})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := session.Current(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := s.svc.Summary(r.Context(), sessionID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summarize transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": map[string]float64{"amount": summary.Amount.Units()},
	})
}

// handleGetTransaction returns null for both unknown ids and ids owned by
// another session; the response does not reveal which.
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := session.Current(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tx, err := s.svc.Get(r.Context(), sessionID, r.PathValue("id"))
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, err)
			return
		}
		slog.ErrorContext(r.Context(), "Get transaction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var view *transactionView
	if tx != nil {
		v := newTransactionView(*tx)
		view = &v
	}

	writeJSON(w, http.StatusOK, map[string]any{"transaction": view})
}
