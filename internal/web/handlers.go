package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/vendbees/ventory/internal/core"
	"github.com/vendbees/ventory/internal/logging"
)

// mutationRequest is the body for the sell and refill endpoints.
// Qty is decoded as a float so a fractional quantity can be rejected with
// an invalid-argument error instead of a generic decode failure.
type mutationRequest struct {
	MachineID  string  `json:"machineId"`
	ProductID  string  `json:"productId"`
	Qty        float64 `json:"qty"`
	Price      float64 `json:"price"`
	RefillerID string  `json:"refillerId"`
}

// mutationResponse is the success body for sell and refill.
type mutationResponse struct {
	Success  bool `json:"success"`
	NewStock int  `json:"newStock"`
}

// handleDashboard returns every table plus summary metrics. It degrades to
// empty arrays and zero metrics on data issues; it never fails outright.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Dashboard())
}

// handleSell records a sale: decrements stock and appends a sales log row.
func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	req, qty, err := s.decodeMutation(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Debug("sell requested",
		"machine_id", req.MachineID, "product_id", req.ProductID, "qty", qty)

	newStock, err := s.service.Sell(r.Context(), req.MachineID, req.ProductID, qty, req.Price)
	s.respondMutation(w, r, newStock, err)
}

// handleRefill records a refill: increments stock (creating the row when
// absent) and appends a refill log row.
func (s *Server) handleRefill(w http.ResponseWriter, r *http.Request) {
	req, qty, err := s.decodeMutation(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Debug("refill requested",
		"machine_id", req.MachineID, "product_id", req.ProductID, "qty", qty)

	newStock, err := s.service.Refill(r.Context(), req.MachineID, req.ProductID, qty, req.RefillerID)
	s.respondMutation(w, r, newStock, err)
}

// handleHealth reports the sync controller state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var lastSync string
	if t := s.service.LastSync(); !t.IsZero() {
		lastSync = t.UTC().Format(time.RFC3339)
	}
	writeJSON(w, map[string]any{
		"status":   "ok",
		"sync":     s.service.SyncState().String(),
		"lastSync": lastSync,
	})
}

// decodeMutation parses a mutation body and validates the quantity shape.
func (s *Server) decodeMutation(r *http.Request) (mutationRequest, int, error) {
	var req mutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, 0, fmt.Errorf("%w: invalid request body: %v", core.ErrInvalidArgument, err)
	}
	if req.Qty != math.Trunc(req.Qty) {
		return req, 0, fmt.Errorf("%w: quantity must be a whole number, got %v", core.ErrInvalidArgument, req.Qty)
	}
	return req, int(req.Qty), nil
}

// respondMutation writes the mutation outcome. A persistence failure means
// the in-memory change is already applied, so the response carries both the
// error code and the new stock level.
func (s *Server) respondMutation(w http.ResponseWriter, r *http.Request, newStock int, err error) {
	if err != nil {
		if errors.Is(err, core.ErrPersistenceFailure) {
			userMsg := core.MapError(err)
			logging.FromContext(r.Context()).Error("mutation not persisted", "error", err)
			writeJSONStatus(w, http.StatusBadGateway, map[string]any{
				"error":    userMsg.Message,
				"action":   userMsg.Action,
				"code":     userMsg.Code,
				"newStock": newStock,
			})
			return
		}
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, mutationResponse{Success: true, NewStock: newStock})
}
