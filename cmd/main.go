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

	"github.com/adiwidya/voxgate/server/adapters/llm"
	"github.com/adiwidya/voxgate/server/adapters/memory"
	adaptermongo "github.com/adiwidya/voxgate/server/adapters/mongo"
	"github.com/adiwidya/voxgate/server/adapters/stt"
	"github.com/adiwidya/voxgate/server/adapters/tts"
	"github.com/adiwidya/voxgate/server/domain/entities"
	"github.com/adiwidya/voxgate/server/domain/repositories"
	"github.com/adiwidya/voxgate/server/internal/api"
	"github.com/adiwidya/voxgate/server/internal/auth"
	"github.com/adiwidya/voxgate/server/internal/config"
	"github.com/adiwidya/voxgate/server/internal/pipeline"
	"github.com/adiwidya/voxgate/server/internal/quota"
	"github.com/adiwidya/voxgate/server/internal/registry"
	"github.com/adiwidya/voxgate/server/internal/rpc"
	"github.com/adiwidya/voxgate/server/internal/safety"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Key/usage persistence: MongoDB when configured, in-memory otherwise.
	var store repositories.KeyStore
	var mongoClient *adaptermongo.Client
	if cfg.MongoURI != "" {
		mongoClient, err = adaptermongo.NewClient(cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			logger.Fatal("MongoDB connection failed", zap.Error(err))
		}
		store = adaptermongo.NewKeyRepository(mongoClient.Database)
	} else {
		if !cfg.Development {
			logger.Fatal("MONGODB_URI is required in production")
		}
		memStore := memory.NewKeyStore()
		seedDevelopmentKeys(ctx, memStore, logger)
		store = memStore
	}

	ledger := quota.NewLedger(store, logger)
	gate := safety.NewGate(nil, logger)
	reg := buildRegistry(ctx, cfg, logger)

	orchestrator := pipeline.NewOrchestrator(reg, gate, ledger, logger, cfg.ProviderCallTimeout)
	handler := rpc.NewHandler(orchestrator, reg, ledger, logger)

	hub := rpc.NewHub(logger)
	go hub.Run()

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("Token issuer setup failed", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, hub, handler, ledger, reg, issuer, logger)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.CloseAll()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if mongoClient != nil {
		mongoClient.Close(shutdownCtx)
	}

	logger.Info("Server exited")
}

// buildRegistry registers every provider whose credentials are present.
// Development mode backfills roles with mocks so the gateway runs without
// any external account; production requires a real provider per role.
func buildRegistry(ctx context.Context, cfg *config.Config, logger *zap.Logger) *registry.Registry {
	reg := registry.New(logger)

	// STT. The Google adapter authenticates through the standard
	// application-default credentials chain.
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		reg.RegisterStt(stt.NewGoogleSpeechToText(logger))
	}
	if cfg.OpenAIAPIKey != "" {
		if provider, err := stt.NewWhisperSpeechToText(cfg.OpenAIAPIKey, logger); err == nil {
			reg.RegisterStt(provider)
		}
	}

	// AI.
	if cfg.GeminiAPIKey != "" {
		provider, err := llm.NewGeminiLanguageModel(ctx, cfg.GeminiAPIKey, logger)
		if err != nil {
			logger.Fatal("Gemini setup failed", zap.Error(err))
		}
		reg.RegisterAi(provider)
	}
	if cfg.OpenAIAPIKey != "" {
		if provider, err := llm.NewOpenAILanguageModel(cfg.OpenAIAPIKey, logger); err == nil {
			reg.RegisterAi(provider)
		}
	}

	// TTS.
	if cfg.ElevenLabsAPIKey != "" {
		provider, err := tts.NewElevenLabsTTS(tts.ElevenLabsConfig{APIKey: cfg.ElevenLabsAPIKey}, logger)
		if err != nil {
			logger.Fatal("ElevenLabs setup failed", zap.Error(err))
		}
		reg.RegisterTts(provider)
	}
	if cfg.OpenAIAPIKey != "" {
		if provider, err := tts.NewOpenAITTS(cfg.OpenAIAPIKey, logger); err == nil {
			reg.RegisterTts(provider)
		}
	}

	if cfg.Development {
		if len(reg.Available()[string(registry.RoleStt)]) == 0 {
			reg.RegisterStt(stt.NewMockSpeechToText("hello from the mock transcriber"))
		}
		if len(reg.Available()[string(registry.RoleAi)]) == 0 {
			reg.RegisterAi(llm.NewMockLanguageModel("This is a mock reply."))
		}
		if len(reg.Available()[string(registry.RoleTts)]) == 0 {
			reg.RegisterTts(tts.NewMockTextToSpeech([]byte("mock-audio")))
		}
	}

	for role, name := range map[registry.Role]string{
		registry.RoleStt: cfg.DefaultSttProvider,
		registry.RoleAi:  cfg.DefaultAiProvider,
		registry.RoleTts: cfg.DefaultTtsProvider,
	} {
		if name == "" {
			continue
		}
		if err := reg.SetDefault(role, name); err != nil {
			logger.Fatal("Invalid default provider",
				zap.String("role", string(role)),
				zap.String("name", name),
				zap.Error(err))
		}
	}

	for role, names := range reg.Available() {
		if len(names) == 0 {
			logger.Fatal("No provider available for role", zap.String("role", role))
		}
	}

	return reg
}

// seedDevelopmentKeys loads well-known keys into the in-memory store so
// the gateway is callable out of the box.
func seedDevelopmentKeys(ctx context.Context, store repositories.KeyStore, logger *zap.Logger) {
	keys := []entities.AccessKey{
		{ID: "vg_dev_free", Tier: entities.TierFree, Label: "dev free", CreatedAt: time.Now()},
		{ID: "vg_dev_pro", Tier: entities.TierProfessional, Label: "dev professional", CreatedAt: time.Now()},
		{ID: "vg_dev_ent", Tier: entities.TierEnterprise, Label: "dev enterprise", CreatedAt: time.Now()},
	}
	for i := range keys {
		if err := store.PutKey(ctx, &keys[i]); err != nil {
			logger.Warn("Failed to seed key", zap.String("key", keys[i].ID), zap.Error(err))
			continue
		}
		logger.Info("Seeded development key",
			zap.String("key", keys[i].ID),
			zap.String("tier", string(keys[i].Tier)))
	}
}
