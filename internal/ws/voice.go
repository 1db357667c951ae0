// Package ws carries live-voice turns over WebSocket so the dashboard can
// show listening/thinking/speaking indicators while a turn is in flight.
package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/entities"
	"github.com/gabonpeche/iasted-server/usecase"
)

// Maximum message size allowed from peer; audio payloads are base64 blobs.
const maxMessageSize = 4 * 1024 * 1024

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// All origins permitted, matching the HTTP CORS policy.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// turnEnvelope is one inbound live-voice turn request.
type turnEnvelope struct {
	SessionID          string `json:"sessionId"`
	AudioBase64        string `json:"audioBase64,omitempty"`
	TranscriptOverride string `json:"transcriptOverride,omitempty"`
	LangHint           string `json:"langHint,omitempty"`
	VoiceID            string `json:"voiceId,omitempty"`
	GenerateAudio      *bool  `json:"generateAudio,omitempty"`
}

// stageEvent is pushed at every state transition of the running turn.
type stageEvent struct {
	Type  string        `json:"type"`
	Stage usecase.Stage `json:"stage"`
}

// resultEvent closes out one turn.
type resultEvent struct {
	Type         string            `json:"type"`
	Route        entities.Intent   `json:"route"`
	UserText     string            `json:"userText"`
	Answer       string            `json:"answer,omitempty"`
	AudioContent *string           `json:"audioContent"`
	Latencies    usecase.Latencies `json:"latencies"`
}

type errorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// HandleVoice upgrades the connection and processes turn requests until the
// client disconnects. Turns on one connection run serially; stage events and
// the final result are written from the same goroutine that reads requests.
func HandleVoice(c echo.Context, turns *usecase.TurnService, userID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	logger.Info("Live-voice connection opened", zap.String("userID", userID))

	for {
		var req turnEnvelope
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Live-voice connection closed unexpectedly", zap.Error(err))
			}
			return nil
		}

		generateAudio := true
		if req.GenerateAudio != nil {
			generateAudio = *req.GenerateAudio
		}

		outcome := turns.ProcessTurn(c.Request().Context(), usecase.TurnRequest{
			SessionID:          req.SessionID,
			UserID:             userID,
			AudioBase64:        req.AudioBase64,
			TranscriptOverride: req.TranscriptOverride,
			LangHint:           req.LangHint,
			VoiceID:            req.VoiceID,
			GenerateAudio:      generateAudio,
			Progress: func(stage usecase.Stage) {
				if err := conn.WriteJSON(stageEvent{Type: "stage", Stage: stage}); err != nil {
					logger.Warn("Failed to write stage event", zap.Error(err))
				}
			},
		})

		if err := writeOutcome(conn, outcome); err != nil {
			logger.Warn("Failed to write turn result", zap.Error(err))
			return nil
		}
	}
}

func writeOutcome(conn *websocket.Conn, outcome usecase.TurnOutcome) error {
	switch o := outcome.(type) {
	case usecase.Answered:
		return conn.WriteJSON(resultEvent{
			Type:         "result",
			Route:        entities.Intent{Category: o.Intent.Category},
			UserText:     o.UserText,
			Answer:       o.Answer,
			AudioContent: o.AudioBase64,
			Latencies:    o.Latencies,
		})
	case usecase.ShortCircuited:
		return conn.WriteJSON(resultEvent{
			Type:      "result",
			Route:     o.Intent,
			UserText:  o.UserText,
			Latencies: o.Latencies,
		})
	case usecase.Failed:
		return conn.WriteJSON(errorEvent{Type: "error", Error: o.Err.Error()})
	}
	return nil
}
