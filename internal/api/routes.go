package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/internal/auth"
	"github.com/gabonpeche/iasted-server/internal/ws"
	"github.com/gabonpeche/iasted-server/usecase"
)

// InitRoutes initializes all API routes.
func InitRoutes(e *echo.Echo, turns *usecase.TurnService, dashboardAPIKey string, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "iasted-server",
		})
	})

	v1 := e.Group("/api/v1")

	v1.POST("/chat", func(c echo.Context) error {
		return handleChat(c, turns, logger)
	})

	v1.POST("/auth/token", func(c echo.Context) error {
		return issueToken(c, dashboardAPIKey, logger)
	})

	// Live-voice transport: same turn requests, per-stage progress events.
	e.GET("/ws/voice", func(c echo.Context) error {
		userID, err := bearerUserID(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
		}
		return ws.HandleVoice(c, turns, userID, logger)
	})
}

// handleChat runs one conversational turn. A flat messages array without a
// sessionId takes the legacy shortcut path instead of the state machine.
func handleChat(c echo.Context, turns *usecase.TurnService, logger *zap.Logger) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Failed to bind chat request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request format"})
	}

	userID, err := bearerUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
	}
	if userID == "" {
		userID = req.UserID
	}

	ctx := c.Request().Context()

	if req.SessionID == "" && len(req.Messages) > 0 {
		answer, err := turns.LegacyChat(ctx, req.Messages, req.VoiceID, req.GenerateAudioOrDefault())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, LegacyChatResponse{
			Message:      answer.Message,
			AudioContent: answer.AudioBase64,
			Success:      true,
		})
	}

	outcome := turns.ProcessTurn(ctx, usecase.TurnRequest{
		SessionID:          req.SessionID,
		UserID:             userID,
		AudioBase64:        req.AudioBase64,
		TranscriptOverride: req.TranscriptOverride,
		LangHint:           req.LangHint,
		VoiceID:            req.VoiceID,
		GenerateAudio:      req.GenerateAudioOrDefault(),
	})

	switch o := outcome.(type) {
	case usecase.Answered:
		return c.JSON(http.StatusOK, AnsweredResponse(o))
	case usecase.ShortCircuited:
		return c.JSON(http.StatusOK, ShortCircuitResponse(o))
	case usecase.Failed:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: o.Err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "unknown turn outcome"})
	}
}

// issueToken exchanges the dashboard API key for a user JWT.
func issueToken(c echo.Context, dashboardAPIKey string, logger *zap.Logger) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request format"})
	}

	if req.UserID == "" || req.APIKey == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id and api_key are required"})
	}
	if dashboardAPIKey == "" || req.APIKey != dashboardAPIKey {
		logger.Warn("Token issuance rejected", zap.String("user_id", req.UserID))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid api key"})
	}

	token, err := auth.GenerateUserToken(req.UserID)
	if err != nil {
		logger.Error("Failed to generate user token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "token generation failed"})
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// bearerUserID resolves the optional Authorization header. Absent → "",
// present and valid → the token's user id, present and invalid → error.
func bearerUserID(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", nil
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return "", nil
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
