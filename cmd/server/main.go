package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/adapters/knowledge"
	"github.com/gabonpeche/iasted-server/adapters/llm"
	"github.com/gabonpeche/iasted-server/adapters/stt"
	"github.com/gabonpeche/iasted-server/adapters/supabase"
	"github.com/gabonpeche/iasted-server/adapters/tts"
	"github.com/gabonpeche/iasted-server/domain/repositories"
	"github.com/gabonpeche/iasted-server/internal/api"
	"github.com/gabonpeche/iasted-server/usecase"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	e := echo.New()

	// All origins permitted; OPTIONS preflight is answered by the middleware.
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Storage
	db, err := supabase.NewClient(supabase.NewConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("failed to initialize supabase client", zap.Error(err))
	}
	sessions := supabase.NewSessionRepository(db, logger)
	analytics := supabase.NewAnalyticsRepository(db, logger)

	// External AI services
	transcriber := newTranscriber(logger)
	completer := newCompleter(logger)

	synthesizer, err := tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("failed to initialize TTS adapter", zap.Error(err))
	}

	source, err := knowledge.NewHTTPSource(
		os.Getenv("KNOWLEDGE_ENDPOINT_URL"),
		os.Getenv("KNOWLEDGE_API_KEY"),
		logger,
	)
	if err != nil {
		logger.Fatal("failed to initialize knowledge source", zap.Error(err))
	}
	cache := usecase.NewSnapshotCache(source, 0, nil)

	turns := usecase.NewTurnService(
		transcriber, synthesizer, completer,
		sessions, analytics, cache, logger, nil,
	)

	api.InitRoutes(e, turns, os.Getenv("DASHBOARD_API_KEY"), logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newTranscriber selects the STT provider. Whisper is the default; Google
// Cloud Speech is available with STT_PROVIDER=google.
func newTranscriber(logger *zap.Logger) repositories.SpeechToText {
	if os.Getenv("STT_PROVIDER") == "google" {
		logger.Info("Using Google Cloud Speech for transcription")
		return stt.NewGoogleSTT(logger)
	}

	transcriber, err := stt.NewWhisperSTT("", os.Getenv("OPENAI_BASE_URL"), logger)
	if err != nil {
		logger.Fatal("failed to initialize STT adapter", zap.Error(err))
	}
	return transcriber
}

// newCompleter selects the chat-completion provider. OpenAI is the default;
// Gemini is available with LLM_PROVIDER=gemini.
func newCompleter(logger *zap.Logger) repositories.ChatCompleter {
	if os.Getenv("LLM_PROVIDER") == "gemini" {
		completer, err := llm.NewGeminiChat(context.Background(), logger)
		if err != nil {
			logger.Fatal("failed to initialize Gemini adapter", zap.Error(err))
		}
		logger.Info("Using Gemini for chat completion")
		return completer
	}

	completer, err := llm.NewOpenAIChat("", os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_MODEL"), logger)
	if err != nil {
		logger.Fatal("failed to initialize LLM adapter", zap.Error(err))
	}
	return completer
}
