package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"voice-dialogue-go/internal/session"
)

// simulateRequest is the POST /simulate body.
type simulateRequest struct {
	Msisdn     string            `json:"msisdn"`
	Utterances []string          `json:"utterances"`
	Env        *session.Mutation `json:"env,omitempty"`
}

// handleSimulate runs a test-mode call over the given utterances and answers
// with its dump.
func (a *app) handleSimulate(w http.ResponseWriter, r *http.Request) {
	reqLog := a.log.WithRequest(r).WithField("handler", "simulate")
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reqLog.WithError(err).Warn("bad request body")
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	reqLog = reqLog.WithField("utterances", len(req.Utterances))

	start := time.Now()
	dump, err := a.runCall(r.Context(), callSetup{
		msisdn:   req.Msisdn,
		source:   session.NewScriptedSource(req.Utterances...),
		testMode: true,
		env:      req.Env,
	})
	if err != nil {
		reqLog.WithError(err).Warn("simulate rejected")
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrInvalidUsage) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).
		WithField("call_status", dump["call_status"]).
		Info("simulated call finished")

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(dump); err != nil {
		reqLog.WithError(err).Error("failed to write response")
	}
}
