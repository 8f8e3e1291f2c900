package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/KianBaghai/fantasy-predictor/internal/config"
	"github.com/KianBaghai/fantasy-predictor/internal/draft"
	"github.com/KianBaghai/fantasy-predictor/internal/logger"
	"github.com/KianBaghai/fantasy-predictor/internal/models"
	"github.com/KianBaghai/fantasy-predictor/internal/pubsub"
	"github.com/KianBaghai/fantasy-predictor/internal/store"
	"github.com/KianBaghai/fantasy-predictor/internal/valuation"
)

// APIHandlers contains all API handler methods
type APIHandlers struct {
	engine *draft.Engine
	store  store.ProjectionStore
	params valuation.Params
	cfg    *config.Config
	pubsub *pubsub.PubSub
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(engine *draft.Engine, st store.ProjectionStore, params valuation.Params, cfg *config.Config, ps *pubsub.PubSub) *APIHandlers {
	return &APIHandlers{
		engine: engine,
		store:  st,
		params: params,
		cfg:    cfg,
		pubsub: ps,
	}
}

// buildPool loads the stored projections and orders them into the
// scarcity-weighted draft pool.
func (h *APIHandlers) buildPool() ([]models.Player, error) {
	players, err := h.store.LoadPlayers()
	if err != nil {
		return nil, err
	}

	byPosition := make(map[models.Position][]models.Player)
	for _, p := range players {
		if !p.Position.Valid() {
			logger.Warn("Skipping player with unknown position", "name", p.Name, "position", p.Position)
			continue
		}
		byPosition[p.Position] = append(byPosition[p.Position], p)
	}

	return valuation.BuildPool(byPosition, h.params), nil
}

// GetDraftState returns the current draft state
func (h *APIHandlers) GetDraftState(w http.ResponseWriter, r *http.Request) {
	logger.Debug("Getting draft state")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.engine.Snapshot())
}

// StartDraft builds the player pool and moves the draft out of setup
func (h *APIHandlers) StartDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.engine.Phase() == draft.PhaseDrafting {
		http.Error(w, "Draft already in progress", http.StatusConflict)
		return
	}

	pool, err := h.buildPool()
	if err != nil {
		logger.Error("Failed to build draft pool", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(pool) == 0 {
		http.Error(w, "No player projections loaded", http.StatusConflict)
		return
	}

	logger.Info("Starting draft", "pool_size", len(pool))
	h.engine.Start(pool)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.engine.Snapshot())
}

// DraftPick handles the user's draft selection
func (h *APIHandlers) DraftPick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		PlayerID string `json:"playerId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode draft pick request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.Info("Drafting player", "player_id", req.PlayerID)
	if !h.engine.UserPick(req.PlayerID) {
		http.Error(w, "Pick refused", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// ResetDraft resets the draft to initial state
func (h *APIHandlers) ResetDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger.Info("Resetting draft")
	h.engine.Reset() // publishes draft:reset itself

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// SetAutoPick toggles auto-drafting for the user's turns
func (h *APIHandlers) SetAutoPick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.engine.SetAutoPick(req.Enabled)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true, "enabled": req.Enabled})
}

// SetSpeed switches the simulation pacing tier
func (h *APIHandlers) SetSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Speed string `json:"speed"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	delay, ok := h.cfg.DelayFor(req.Speed)
	if !ok {
		http.Error(w, "Unknown speed tier", http.StatusBadRequest)
		return
	}

	logger.Info("Pacing changed", "speed", req.Speed, "delay", delay)
	h.engine.SetPickDelay(delay)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "delayMs": delay.Milliseconds()})
}

// ListPlayers returns the stored projections
func (h *APIHandlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.store.LoadPlayers()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(players)
}

// GetRankings returns the valued pool in overall draft order, optionally
// filtered by position
func (h *APIHandlers) GetRankings(w http.ResponseWriter, r *http.Request) {
	pool, err := h.buildPool()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if pos := r.URL.Query().Get("position"); pos != "" {
		p := models.Position(pos)
		if !p.Valid() {
			http.Error(w, "Unknown position", http.StatusBadRequest)
			return
		}
		filtered := pool[:0]
		for _, pl := range pool {
			if pl.Position == p {
				filtered = append(filtered, pl)
			}
		}
		pool = filtered
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pool)
}

// GetResults returns the end-of-draft standings
func (h *APIHandlers) GetResults(w http.ResponseWriter, r *http.Request) {
	if h.engine.Phase() != draft.PhaseComplete {
		http.Error(w, "Draft not complete", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.engine.Standings())
}

// EventsSSE provides Server-Sent Events for realtime updates
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	// Initial connection message
	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case event := <-eventChan:
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-time.After(30 * time.Second):
			// Keepalive ping
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}

// Health reports readiness of the store dependency
func (h *APIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(); err != nil {
		logger.Error("Health check failed", "error", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "phase": string(h.engine.Phase())})
}
