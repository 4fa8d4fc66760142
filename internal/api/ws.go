package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"networth-scenario-lab/internal/observability"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 16384,
	// dashboards are served from other origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS runs one scenario per inbound text message, in order, and
// writes the response or {"error": ...} back. It returns on the first read error.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		s.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	observability.WSConnected(1)
	defer observability.WSConnected(-1)

	ctx := r.Context()
	sess := s.session(r)
	logger := s.logger.With().Str("request_id", RequestID(ctx)).Logger()
	logger.Debug().Msg("websocket connected")

	conn.SetReadLimit(maxBodyBytes)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var out []byte
		resp, err := s.runScenario(ctx, data, sess)
		switch {
		case err == nil:
			if out, err = json.Marshal(resp); err != nil {
				logger.Error().Err(err).Msg("encode scenario response")
				out = errorMessage(msgInternal)
			}
		case errors.Is(err, context.Canceled):
			return
		default:
			_, msg := errorStatus(err)
			out = errorMessage(msg)
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			logger.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}

func errorMessage(msg string) []byte {
	out, _ := json.Marshal(map[string]string{"error": msg})
	return out
}
