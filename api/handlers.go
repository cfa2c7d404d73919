// Package api exposes the redirector's command surface as a JSON
// request/response protocol.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joeychilson/redirector/engine"
	"github.com/joeychilson/redirector/history"
	"github.com/joeychilson/redirector/logger"
	"github.com/joeychilson/redirector/rule"
	"github.com/joeychilson/redirector/settings"
)

// Message types accepted by the message endpoint.
const (
	MsgGetSettings    = "GET_SETTINGS"
	MsgUpdateSettings = "UPDATE_SETTINGS"
	MsgAddRule        = "ADD_RULE"
	MsgUpdateRule     = "UPDATE_RULE"
	MsgDeleteRule     = "DELETE_RULE"
	MsgGetLogs        = "GET_LOGS"
	MsgClearLogs      = "CLEAR_LOGS"
	MsgTestRule       = "TEST_RULE"
)

// Message is the request envelope for the message endpoint.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the response envelope for every operation.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NavigationRequest is a top-level navigation event fed to the engine.
type NavigationRequest struct {
	TabID   int    `json:"tabId"`
	FrameID int    `json:"frameId"`
	URL     string `json:"url"`
}

// addRulePayload is the ADD_RULE payload. Enabled defaults to true when
// omitted.
type addRulePayload struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Prefix  string `json:"prefix"`
	Regex   bool   `json:"isRegex"`
	Enabled *bool  `json:"isEnabled,omitempty"`
}

// deleteRulePayload is the DELETE_RULE payload.
type deleteRulePayload struct {
	ID string `json:"id"`
}

// testRulePayload is the TEST_RULE payload.
type testRulePayload struct {
	URL  string    `json:"url"`
	Rule rule.Rule `json:"rule"`
}

// Handler contains the HTTP handlers for the API.
type Handler struct {
	settings *settings.Store
	history  *history.Store
	engine   *engine.Engine
	logger   logger.Logger
}

// NewHandler creates a new Handler.
func NewHandler(st *settings.Store, hist *history.Store, eng *engine.Engine, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Noop()
	}
	return &Handler{
		settings: st,
		history:  hist,
		engine:   eng,
		logger:   log,
	}
}

// HandleMessage handles POST /v1/message requests: it decodes the
// envelope and dispatches on the message type. Unknown types fail with
// "Unknown message type".
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.logger.Error("failed to decode message", "error", err)
		h.sendError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	h.logger.Debug("message received", "type", msg.Type)

	switch msg.Type {
	case MsgGetSettings:
		h.getSettings(w, r)
	case MsgUpdateSettings:
		h.updateSettings(w, r, msg.Payload)
	case MsgAddRule:
		h.addRule(w, r, msg.Payload)
	case MsgUpdateRule:
		h.updateRule(w, r, msg.Payload)
	case MsgDeleteRule:
		h.deleteRule(w, r, msg.Payload)
	case MsgGetLogs:
		h.getLogs(w, r)
	case MsgClearLogs:
		h.clearLogs(w, r)
	case MsgTestRule:
		h.testRule(w, msg.Payload)
	default:
		h.logger.Warn("unknown message type", "type", msg.Type)
		h.sendError(w, "Unknown message type", http.StatusBadRequest)
	}
}

// HandleNavigation handles POST /v1/navigation requests. The decision is
// returned to the caller, which applies it when no tab controller is
// wired in server-side.
func (h *Handler) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	var req NavigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode navigation event", "error", err)
		h.sendError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		h.sendError(w, "url is required", http.StatusBadRequest)
		return
	}

	decision, err := h.engine.HandleNavigation(r.Context(), req.TabID, req.FrameID, req.URL)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.sendData(w, decision)
}

// HandleTabClosed handles DELETE /v1/tabs/{tabID} requests, clearing the
// tab's loop-guard state.
func (h *Handler) HandleTabClosed(w http.ResponseWriter, r *http.Request) {
	tabID, err := strconv.Atoi(chi.URLParam(r, "tabID"))
	if err != nil {
		h.sendError(w, "invalid tab id", http.StatusBadRequest)
		return
	}
	h.engine.TabClosed(tabID)
	h.sendData(w, nil)
}

// HandleHealth handles GET /health requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to read settings", "error", err)
		h.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.sendData(w, cfg)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request, payload json.RawMessage) {
	var cfg settings.Settings
	if err := json.Unmarshal(payload, &cfg); err != nil {
		h.sendError(w, "Invalid settings payload", http.StatusBadRequest)
		return
	}
	if err := h.settings.Update(r.Context(), cfg); err != nil {
		h.logger.Error("failed to update settings", "error", err)
		h.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.sendData(w, cfg)
}

func (h *Handler) addRule(w http.ResponseWriter, r *http.Request, payload json.RawMessage) {
	var p addRulePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		h.sendError(w, "Invalid rule payload", http.StatusBadRequest)
		return
	}
	if p.Pattern == "" {
		h.sendError(w, "pattern is required", http.StatusBadRequest)
		return
	}

	kind := rule.KindWildcard
	if p.Regex {
		kind = rule.KindRegex
	}
	newRule := rule.New(p.Name, p.Pattern, p.Prefix, kind)
	if p.Enabled != nil {
		newRule.Enabled = *p.Enabled
	}

	cfg, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to read settings", "error", err)
		h.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cfg.Rules = append(cfg.Rules, newRule)
	if err := h.settings.Update(r.Context(), cfg); err != nil {
		h.logger.Error("failed to save rule", "error", err)
		h.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.Info("rule added", "rule_id", newRule.ID, "pattern", newRule.Pattern)
	h.sendData(w, newRule)
}

func (h *Handler) updateRule(w http.ResponseWriter, r *http.Request, payload json.RawMessage) {
	var in rule.Rule
	if err := json.Unmarshal(payload, &in); err != nil {
		h.sendError(w, "Invalid rule payload", http.StatusBadRequest)
		return
	}

	cfg, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to read settings", "error", err)
		h.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for i, existing := range cfg.Rules {
		if existing.ID != in.ID {
			continue
		}
		// ID and creation time are immutable.
		in.CreatedAt = existing.CreatedAt
		in.UpdatedAt = time.Now().UTC()
		cfg.Rules[i] = in
		if err := h.settings.Update(r.Context(), cfg); err != nil {
			h.logger.Error("failed to save rule", "error", err)
			h.sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.logger.Info("rule updated", "rule_id", in.ID)
		h.sendData(w, in)
		return
	}

	h.sendError(w, "Rule not found", http.StatusNotFound)
}

func (h *Handler) deleteRule(w http.ResponseWriter, r *http.Request, payload json.RawMessage) {
	var p deleteRulePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		h.sendError(w, "Invalid rule payload", http.StatusBadRequest)
		return
	}

	cfg, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to read settings", "error", err)
		h.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for i, existing := range cfg.Rules {
		if existing.ID != p.ID {
			continue
		}
		cfg.Rules = append(cfg.Rules[:i], cfg.Rules[i+1:]...)
		if err := h.settings.Update(r.Context(), cfg); err != nil {
			h.logger.Error("failed to delete rule", "error", err)
			h.sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.logger.Info("rule deleted", "rule_id", p.ID)
		h.sendData(w, nil)
		return
	}

	h.sendError(w, "Rule not found", http.StatusNotFound)
}

func (h *Handler) getLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list logs", "error", err)
		h.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	h.sendData(w, entries)
}

func (h *Handler) clearLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear logs", "error", err)
		h.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.logger.Info("logs cleared")
	h.sendData(w, nil)
}

func (h *Handler) testRule(w http.ResponseWriter, payload json.RawMessage) {
	var p testRulePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		h.sendError(w, "Invalid test payload", http.StatusBadRequest)
		return
	}
	if p.URL == "" {
		h.sendError(w, "url is required", http.StatusBadRequest)
		return
	}
	h.sendData(w, h.engine.TestRule(p.URL, p.Rule))
}

// sendData writes a success envelope.
func (h *Handler) sendData(w http.ResponseWriter, data any) {
	h.sendJSON(w, Response{Success: true, Data: data}, http.StatusOK)
}

// sendError writes a failure envelope.
func (h *Handler) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, Response{Success: false, Error: message}, statusCode)
}

// sendJSON writes a JSON response with the given status code.
func (h *Handler) sendJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
