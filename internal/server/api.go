package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	gmux "github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/lox/agentholdem/internal/agent"
	"github.com/lox/agentholdem/internal/game"
)

type ctxKey int

const ctxTableKey ctxKey = iota

// AgentSeater seats a registered agent at a table.
type AgentSeater func(table *Table, agentID string) error

// API is the HTTP surface over a Manager. Player IDs in requests are taken
// at face value; authentication belongs in front of it.
type API struct {
	*gmux.Router
	manager  *Manager
	hub      *Hub
	registry *agent.Registry
	seat     AgentSeater
	logger   *log.Logger
	version  string
}

// APIOption configures an API.
type APIOption func(*API)

// WithAgents exposes agent profiles and lets seat requests name an agent.
func WithAgents(registry *agent.Registry, seat AgentSeater) APIOption {
	return func(a *API) {
		a.registry = registry
		a.seat = seat
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) APIOption {
	return func(a *API) { a.version = v }
}

// NewAPI builds the router.
func NewAPI(manager *Manager, hub *Hub, logger *log.Logger, opts ...APIOption) *API {
	a := &API{
		Router:  gmux.NewRouter(),
		manager: manager,
		hub:     hub,
		logger:  logger.WithPrefix("api"),
		version: "dev",
	}
	for _, opt := range opts {
		opt(a)
	}

	r := a.Router
	r.Methods(http.MethodGet).Path("/health").HandlerFunc(a.getHealth)
	r.Methods(http.MethodGet).Path("/tables").HandlerFunc(a.getTables)
	r.Methods(http.MethodPost).Path("/tables").HandlerFunc(a.postTables)
	r.Methods(http.MethodGet).Path("/agents").HandlerFunc(a.getAgents)
	r.Methods(http.MethodGet).Path("/agents/{agent}").HandlerFunc(a.getAgent)

	tr := r.PathPrefix("/tables/{table}").Subrouter()
	tr.Use(a.tableMiddleware)
	tr.Methods(http.MethodGet).Path("").HandlerFunc(a.getTable)
	tr.Methods(http.MethodDelete).Path("").HandlerFunc(a.deleteTable)
	tr.Methods(http.MethodGet).Path("/history").HandlerFunc(a.getHistory)
	tr.Methods(http.MethodPost).Path("/seats").HandlerFunc(a.postSeats)
	tr.Methods(http.MethodDelete).Path("/seats/{player}").HandlerFunc(a.deleteSeat)
	tr.Methods(http.MethodPost).Path("/seats/{player}/sit-out").HandlerFunc(a.postSitOut)
	tr.Methods(http.MethodPost).Path("/seats/{player}/sit-in").HandlerFunc(a.postSitIn)
	tr.Methods(http.MethodPost).Path("/hands").HandlerFunc(a.postHands)
	tr.Methods(http.MethodPost).Path("/actions").HandlerFunc(a.postActions)
	if hub != nil {
		tr.Methods(http.MethodGet).Path("/ws").HandlerFunc(a.getWS)
	}
	return a
}

// Handler wraps the router with CORS and access logging.
func (a *API) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Content-Type"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})
	access := a.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel}).Writer()
	return handlers.CombinedLoggingHandler(access, c.Handler(a.Router))
}

func (a *API) tableMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := gmux.Vars(r)["table"]
		table, ok := a.manager.Get(id)
		if !ok {
			writeJSONError(w, http.StatusNotFound, fmt.Errorf("%w: %s", ErrTableNotFound, id))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxTableKey, table)))
	})
}

func tableFrom(r *http.Request) *Table {
	return r.Context().Value(ctxTableKey).(*Table)
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Tables  int    `json:"tables"`
}

func (a *API) getHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", Version: a.version, Tables: len(a.manager.Tables())})
}

func (a *API) getTables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.manager.List())
}

// TableRequest creates a table. Durations use Go duration syntax.
type TableRequest struct {
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name"`
	MaxPlayers      int      `json:"max_players"`
	SmallBlind      int      `json:"small_blind"`
	BigBlind        int      `json:"big_blind"`
	StartingChips   int      `json:"starting_chips"`
	DecisionTimeout string   `json:"decision_timeout,omitempty"`
	HandPause       string   `json:"hand_pause,omitempty"`
	Remainder       string   `json:"remainder,omitempty"`
	AutoStart       bool     `json:"auto_start,omitempty"`
	Seed            int64    `json:"seed,omitempty"`
	Agents          []string `json:"agents,omitempty"`
}

func (req TableRequest) config() (TableConfig, error) {
	cfg := TableConfig{
		ID:              req.ID,
		Name:            req.Name,
		MaxPlayers:      req.MaxPlayers,
		SmallBlind:      req.SmallBlind,
		BigBlind:        req.BigBlind,
		StartingChips:   req.StartingChips,
		DecisionTimeout: 30 * time.Second,
		AutoStart:       req.AutoStart,
		Seed:            req.Seed,
	}
	var err error
	if req.DecisionTimeout != "" {
		if cfg.DecisionTimeout, err = time.ParseDuration(req.DecisionTimeout); err != nil {
			return cfg, fmt.Errorf("decision_timeout: %w", err)
		}
	}
	if req.HandPause != "" {
		if cfg.HandPause, err = time.ParseDuration(req.HandPause); err != nil {
			return cfg, fmt.Errorf("hand_pause: %w", err)
		}
	}
	if cfg.Remainder, err = game.ParseRemainderPolicy(req.Remainder); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (a *API) postTables(w http.ResponseWriter, r *http.Request) {
	var req TableRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	cfg, err := req.config()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Agents) > 0 && a.seat == nil {
		writeJSONError(w, http.StatusBadRequest, errors.New("agents are not enabled"))
		return
	}

	table, err := a.manager.Create(cfg)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	for _, id := range req.Agents {
		if err := a.seat(table, id); err != nil {
			_ = a.manager.Close(table.ID())
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("seat agent %s: %w", id, err))
			return
		}
	}
	writeJSON(w, http.StatusCreated, table.Info())
}

type tableResponse struct {
	TableInfo
	View game.View `json:"view"`
}

func (a *API) getTable(w http.ResponseWriter, r *http.Request) {
	table := tableFrom(r)
	view, version := table.View(r.FormValue("player"))
	info := table.Info()
	info.Version = version
	writeJSON(w, http.StatusOK, tableResponse{TableInfo: info, View: view})
}

func (a *API) deleteTable(w http.ResponseWriter, r *http.Request) {
	if err := a.manager.Close(tableFrom(r).ID()); err != nil {
		writeJSONError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) getHistory(w http.ResponseWriter, r *http.Request) {
	history := tableFrom(r).History()
	if history == nil {
		history = []game.Event{}
	}
	writeJSON(w, http.StatusOK, history)
}

// SeatRequest seats a player. Kind "agent" seats a registered agent by ID.
type SeatRequest struct {
	ID   string    `json:"id"`
	Name string    `json:"name,omitempty"`
	Kind game.Kind `json:"kind"`
}

type seatResponse struct {
	Seat int `json:"seat"`
}

func (a *API) postSeats(w http.ResponseWriter, r *http.Request) {
	table := tableFrom(r)
	var req SeatRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if req.Kind == game.Agent {
		if a.seat == nil {
			writeJSONError(w, http.StatusBadRequest, errors.New("agents are not enabled"))
			return
		}
		if err := a.seat(table, req.ID); err != nil {
			writeTableError(w, err)
			return
		}
		info := table.Info()
		for _, s := range info.Seats {
			if s.ID == req.ID {
				writeJSON(w, http.StatusCreated, seatResponse{Seat: s.Number})
				return
			}
		}
		writeJSONError(w, http.StatusInternalServerError, errors.New("agent seat not found"))
		return
	}

	number, err := table.Sit(req.ID, req.Name, game.Human, nil)
	if err != nil {
		writeTableError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, seatResponse{Seat: number})
}

type chipsResponse struct {
	Chips int `json:"chips"`
}

func (a *API) deleteSeat(w http.ResponseWriter, r *http.Request) {
	chips, err := tableFrom(r).Remove(gmux.Vars(r)["player"])
	if err != nil {
		writeTableError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chipsResponse{Chips: chips})
}

func (a *API) postSitOut(w http.ResponseWriter, r *http.Request) {
	if err := tableFrom(r).SitOut(gmux.Vars(r)["player"]); err != nil {
		writeTableError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) postSitIn(w http.ResponseWriter, r *http.Request) {
	if err := tableFrom(r).SitIn(gmux.Vars(r)["player"]); err != nil {
		writeTableError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) postHands(w http.ResponseWriter, r *http.Request) {
	view, err := tableFrom(r).StartHand()
	if err != nil {
		writeTableError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// ActionRequest submits a decision for the player whose turn it is.
type ActionRequest struct {
	PlayerID  string      `json:"player_id"`
	Action    game.Action `json:"action"`
	Amount    int         `json:"amount,omitempty"`
	Reasoning string      `json:"reasoning,omitempty"`
	Version   uint64      `json:"version"`
}

func (a *API) postActions(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	d := game.Decision{Action: req.Action, Amount: req.Amount, Reasoning: req.Reasoning}
	out, err := tableFrom(r).Submit(r.Context(), req.PlayerID, d, req.Version)
	if err != nil {
		writeTableError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getWS(w http.ResponseWriter, r *http.Request) {
	a.hub.Serve(w, r, tableFrom(r).ID(), r.FormValue("player"))
}

func (a *API) getAgents(w http.ResponseWriter, _ *http.Request) {
	if a.registry == nil {
		writeJSON(w, http.StatusOK, []agent.Snapshot{})
		return
	}
	profiles := a.registry.All()
	out := make([]agent.Snapshot, len(profiles))
	for i, p := range profiles {
		out[i] = p.Snapshot()
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getAgent(w http.ResponseWriter, r *http.Request) {
	id := gmux.Vars(r)["agent"]
	if a.registry != nil {
		if p, ok := a.registry.Get(id); ok {
			writeJSON(w, http.StatusOK, p.Snapshot())
			return
		}
	}
	writeJSONError(w, http.StatusNotFound, fmt.Errorf("agent %s not found", id))
}

// writeTableError maps table and hand errors to status codes.
func writeTableError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, game.ErrStaleTurn):
		status = http.StatusConflict
	case errors.Is(err, ErrUnknownPlayer), errors.Is(err, ErrTableNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrIllegalAction), errors.Is(err, game.ErrHandOver):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrTableFull), errors.Is(err, ErrHandInProgress), errors.Is(err, ErrNotEnoughPlayers):
		status = http.StatusConflict
	case errors.Is(err, ErrTableClosed):
		status = http.StatusGone
	}
	writeJSONError(w, status, err)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, payload any) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg, Status: status})
}
