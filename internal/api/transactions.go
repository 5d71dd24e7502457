package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"poolFeeSync/internal/config"
	"poolFeeSync/internal/model"
	"poolFeeSync/internal/storage"
)

const (
	defaultLimit = 10
	maxLimit     = 1000
)

type listResponse struct {
	Data  []model.Transaction `json:"data"`
	Total int64               `json:"total"`
	Limit int                 `json:"limit"`
	Skip  int                 `json:"skip"`
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	tx, err := s.ledger.GetTransaction(r.Context(), hash)
	if errors.Is(err, storage.ErrTransactionNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("transaction %s not found", hash))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := fmt.Sprintf("%d:%d:%d:%d", query.StartTime, query.EndTime, query.Limit, query.Skip)
	if item := s.listCache.Get(key); item != nil {
		writeJSON(w, http.StatusOK, item.Value())
		return
	}

	txs, total, err := s.ledger.ListTransactions(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := listResponse{Data: txs, Total: total, Limit: query.Limit, Skip: query.Skip}
	s.listCache.Set(key, resp, ttlDefault)
	writeJSON(w, http.StatusOK, resp)
}

func parseListQuery(r *http.Request) (storage.TransactionQuery, error) {
	q := r.URL.Query()
	if q.Get("startTime") == "" || q.Get("endTime") == "" {
		return storage.TransactionQuery{}, fmt.Errorf("startTime and endTime are required")
	}
	start, err := config.ParseTimestamp(q.Get("startTime"))
	if err != nil {
		return storage.TransactionQuery{}, fmt.Errorf("invalid startTime: %w", err)
	}
	end, err := config.ParseTimestamp(q.Get("endTime"))
	if err != nil {
		return storage.TransactionQuery{}, fmt.Errorf("invalid endTime: %w", err)
	}
	if end < start {
		return storage.TransactionQuery{}, fmt.Errorf("endTime must not be before startTime")
	}

	limit, err := intParam(q.Get("limit"), defaultLimit)
	if err != nil {
		return storage.TransactionQuery{}, fmt.Errorf("invalid limit: %w", err)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	skip, err := intParam(q.Get("skip"), 0)
	if err != nil || skip < 0 {
		return storage.TransactionQuery{}, fmt.Errorf("invalid skip")
	}

	return storage.TransactionQuery{StartTime: start, EndTime: end, Limit: limit, Skip: skip}, nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
