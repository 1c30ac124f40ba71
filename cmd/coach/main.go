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

	"github.com/everhighit/coach-client/adapters/audio"
	"github.com/everhighit/coach-client/adapters/coach"
	"github.com/everhighit/coach-client/adapters/llm"
	"github.com/everhighit/coach-client/adapters/memory"
	"github.com/everhighit/coach-client/adapters/mongo"
	"github.com/everhighit/coach-client/adapters/stt"
	"github.com/everhighit/coach-client/adapters/tts"
	"github.com/everhighit/coach-client/domain/repositories"
	"github.com/everhighit/coach-client/internal/api"
	"github.com/everhighit/coach-client/internal/config"
	"github.com/everhighit/coach-client/internal/identity"
	"github.com/everhighit/coach-client/internal/playback"
	"github.com/everhighit/coach-client/internal/prefs"
	"github.com/everhighit/coach-client/internal/recorder"
	"github.com/everhighit/coach-client/internal/ws"
	"github.com/everhighit/coach-client/usecase"
)

func main() {
	// Load .env if present; real environment wins.
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Remote coach backend, shared by every provider left on "coach".
	var coachClient *coach.Client
	if cfg.CoachBaseURL != "" {
		coachClient, err = coach.NewClient(coach.Config{
			BaseURL: cfg.CoachBaseURL,
			Timeout: cfg.RequestTimeout,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create coach client", zap.Error(err))
		}
		coachClient.Health(context.Background())
	}

	transcriber, err := buildTranscriber(cfg, coachClient, logger)
	if err != nil {
		logger.Fatal("Failed to create transcriber", zap.Error(err))
	}
	dialogue, err := buildDialogue(cfg, coachClient, logger)
	if err != nil {
		logger.Fatal("Failed to create dialogue provider", zap.Error(err))
	}
	synthesizer, err := buildSynthesizer(cfg, coachClient, logger)
	if err != nil {
		logger.Fatal("Failed to create synthesizer", zap.Error(err))
	}

	// Lessons always go through the coach backend.
	var lessons repositories.LessonDialogue
	if coachClient != nil {
		lessons = coachClient
	}

	voiceStore, err := prefs.NewStore(cfg.PrefsPath)
	if err != nil {
		logger.Fatal("Failed to open voice preferences", zap.Error(err))
	}

	// Turn history: MongoDB when configured, in-memory otherwise.
	var history repositories.TurnRepository
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.NewClient(logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoClient.Close(context.Background())
		history = mongo.NewTurnRepository(mongoClient.Database)
	} else {
		logger.Info("MONGODB_URI not set, keeping history in memory")
		history = memory.NewTurnRepository()
	}

	device, err := audio.NewCaptureDevice(logger)
	if err != nil {
		logger.Fatal("Failed to initialize audio", zap.Error(err))
	}
	defer device.Terminate()

	var sink repositories.Sink
	if systemSink, err := audio.NewSystemSink(logger); err == nil {
		sink = systemSink
	} else {
		logger.Warn("No system audio player, falling back to raw PCM output", zap.Error(err))
		sink = audio.NewPCMSink(0, logger)
	}

	hub := ws.NewHub(logger)
	go hub.Run()

	sequencer := usecase.NewTurnSequencer(transcriber, dialogue, lessons, synthesizer, voiceStore, logger)
	controller := usecase.NewTurnController(usecase.ControllerConfig{
		Device:    device,
		Preferred: audio.DefaultPreference,
		Sequencer: sequencer,
		Playback:  playback.NewCoordinator(sink, cfg.GraceDelay, logger),
		History:   history,
		Lessons:   lessons,
		Notifier:  hub,
		Normalize: normalizeBlob,
		MaxRecord: cfg.MaxRecord,
		Logger:    logger,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	var idClient *identity.Client
	if cfg.IdentityBaseURL != "" {
		idClient, err = identity.NewClient(cfg.IdentityBaseURL, cfg.RequestTimeout, logger)
		if err != nil {
			logger.Fatal("Failed to create identity client", zap.Error(err))
		}
	}

	handler := api.NewHandler(controller, voiceStore, history, idClient, hub, logger)
	handler.InitRoutes(e)

	go func() {
		if err := e.Start("127.0.0.1:" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Coach client started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Let an in-flight recording finalize before the server goes away.
	controller.StopTurn()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Coach client exited")
}

// normalizeBlob wraps raw PCM captures into a WAV container so the upload
// carries a self-describing format.
func normalizeBlob(b recorder.Blob) recorder.Blob {
	if b.Encoding != "pcm_s16le" {
		return b
	}
	b.Data = audio.WrapWAV(b.Data, audio.SampleRate, audio.Channels)
	b.Encoding = "wav"
	return b
}

func buildTranscriber(cfg *config.Config, coachClient *coach.Client, logger *zap.Logger) (repositories.Transcriber, error) {
	if cfg.STTProvider == "google" {
		return stt.NewGoogleTranscriber(audio.SampleRate, logger), nil
	}
	return coachClient, nil
}

func buildDialogue(cfg *config.Config, coachClient *coach.Client, logger *zap.Logger) (repositories.Dialogue, error) {
	if cfg.LLMProvider == "gemini" {
		return llm.NewGeminiDialogue(logger)
	}
	return coachClient, nil
}

func buildSynthesizer(cfg *config.Config, coachClient *coach.Client, logger *zap.Logger) (repositories.Synthesizer, error) {
	if cfg.TTSProvider == "openai" {
		return tts.NewOpenAISynthesizer(logger)
	}
	return coachClient, nil
}
