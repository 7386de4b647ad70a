// File: internal/handlers/exchange_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/iyunix/go-granny/internal/domain"
	"github.com/iyunix/go-granny/internal/repository/exchange"
)

type ExchangeHandler struct {
	repo   exchange.ExchangeRepository
	logger Logger
}

func NewExchangeHandler(repo exchange.ExchangeRepository, logger Logger) *ExchangeHandler {
	return &ExchangeHandler{repo: repo, logger: logger}
}

type exchangeList struct {
	Total     int64             `json:"total"`
	Failed    int64             `json:"failed"`
	Exchanges []domain.Exchange `json:"exchanges"`
}

// ListExchanges returns the most recent proxy exchanges and overall counts.
func (h *ExchangeHandler) ListExchanges(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	exchanges, err := h.repo.FindRecent(r.Context(), limit)
	if err != nil {
		writeError(w, "Could not retrieve exchanges", http.StatusInternalServerError)
		return
	}
	total, failed, err := h.repo.Count(r.Context())
	if err != nil {
		writeError(w, "Could not count exchanges", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, exchangeList{Total: total, Failed: failed, Exchanges: exchanges})
}
