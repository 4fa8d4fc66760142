package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"networth-scenario-lab/internal/coach"
	"networth-scenario-lab/internal/domain"
	"networth-scenario-lab/internal/orchestrator"
)

// Error messages returned to clients
const (
	msgInvalidInput   = "Invalid input"
	msgBudgetExceeded = "Scenario took too long, try again"
	msgInternal       = "Internal error"
)

// writeJSON writes a JSON response with the given status. The body is
// encoded before the header goes out, so an unencodable value becomes a 500
// and the encoding error is returned.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"` + msgInternal + `"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
	return err
}

// writeError writes {"error": msg}
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorStatus maps a scenario error to an HTTP status and client message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidInput
	case errors.Is(err, orchestrator.ErrBudgetExceeded):
		return http.StatusServiceUnavailable, msgBudgetExceeded
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// configResponse never carries the coach API key.
type configResponse struct {
	Provider string   `json:"provider"`
	Model    string   `json:"model"`
	Ready    bool     `json:"ready"`
	Regimes  []string `json:"regimes"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		Provider: s.coach.Provider,
		Model:    s.coach.Model,
		Ready:    s.coach.Ready,
		Regimes:  domain.Regimes(),
	})
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil || len(body) > maxBodyBytes {
		writeError(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	resp, err := s.runScenario(r.Context(), body, s.session(r))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// client went away
			return
		}
		status, msg := errorStatus(err)
		writeError(w, status, msg)
		return
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		s.logger.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("encode scenario response")
	}
}

// runScenario parses one request body and runs it. Shared by HTTP and WebSocket.
func (s *Server) runScenario(ctx context.Context, body []byte, sess *coach.Session) (*domain.ScenarioResponse, error) {
	req, err := ParseScenarioRequest(body)
	if err != nil {
		s.logger.Debug().Err(err).Str("request_id", RequestID(ctx)).Msg("rejected scenario request")
		return nil, err
	}
	if !req.HasSeed {
		req.Input.Seed = s.seeder()
	}

	resp, err := s.runner.Run(ctx, req.Input, sess)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn().Err(err).Str("request_id", RequestID(ctx)).Msg("scenario failed")
		}
		return nil, err
	}
	return resp, nil
}

// session identifies the caller's coach session: X-Session-ID, else the request id.
func (s *Server) session(r *http.Request) *coach.Session {
	id := r.Header.Get("X-Session-ID")
	if id == "" {
		id = RequestID(r.Context())
	}
	return &coach.Session{ID: id}
}
