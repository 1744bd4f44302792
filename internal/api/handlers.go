package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"PadelTracker/internal/calculator"
	"PadelTracker/internal/dashboard"
	"PadelTracker/internal/model"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	svc    *dashboard.Service
	logger *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc *dashboard.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// MarketResponse is the snapshot plus the lowest current price.
type MarketResponse struct {
	*model.MarketData
	LowestPrice int  `json:"lowestPrice"`
	Loading     bool `json:"loading"`
}

func (h *Handler) marketResponse(snap *model.MarketData) MarketResponse {
	resp := MarketResponse{MarketData: snap, Loading: h.svc.State().Loading}
	if best, err := calculator.Cheapest(snap.Competitors); err == nil {
		resp.LowestPrice = best.CurrentPrice
	}
	return resp
}

// GetMarket handles GET /market
func (h *Handler) GetMarket(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot()
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.marketResponse(snap))
}

// RefreshMarket handles POST /market/refresh
func (h *Handler) RefreshMarket(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Refresh(r.Context())
	if errors.Is(err, dashboard.ErrClosed) {
		h.respondError(w, err)
		return
	}
	if err != nil {
		h.logger.Error("refresh market", zap.Error(err))
		respondJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, h.marketResponse(snap))
}

// GetCompetitors handles GET /competitors
func (h *Handler) GetCompetitors(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Competitors()
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// GetChart handles GET /chart
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Chart()
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// GetAnalysis handles GET /analysis
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Analysis()
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// RunAnalysis handles POST /analysis. Analysis failures still answer 200
// with the neutral fallback.
func (h *Handler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Analyze(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	st := h.svc.State()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"snapshotVersion": st.Version,
		"analyzing":       st.Analyzing(),
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrNoSnapshot), errors.Is(err, dashboard.ErrClosed):
		respondJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
	case errors.Is(err, dashboard.ErrNoAnalysis):
		respondJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
