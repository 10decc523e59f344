package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/sunrise-assist/server/internal/api"
	"github.com/sunrise-assist/server/internal/assistant"
	"github.com/sunrise-assist/server/internal/assistant/llm"
	"github.com/sunrise-assist/server/internal/assistant/model"
	"github.com/sunrise-assist/server/internal/assistant/repo"
	"github.com/sunrise-assist/server/internal/assistant/tools"
	"github.com/sunrise-assist/server/internal/calendar"
	"github.com/sunrise-assist/server/internal/core"
	"github.com/sunrise-assist/server/internal/handlers"
	"github.com/sunrise-assist/server/internal/knowledge"
	"github.com/sunrise-assist/server/internal/store/sqlite"
	httputil "github.com/sunrise-assist/server/pkg/httputil"
	logx "github.com/sunrise-assist/server/pkg/logger"
	pkgredis "github.com/sunrise-assist/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the server, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Port        string `envconfig:"PORT" default:"5000"`

	// Infrastructure
	Redis          pkgredis.Config
	DBPath         string `envconfig:"APPOINTMENTS_DB" default:"appointments.db"`
	ClinicDataPath string `envconfig:"CLINIC_DATA_PATH" default:"clinic.json"`
	AllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Assistant configs
	Assistant    model.AssistantModelConfig
	Knowledge    model.KnowledgeModelConfig
	Prompt       model.PromptConfig
	Conversation model.ConversationConfig
	Calendar     calendar.Config
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("Could not load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", cfg.Conversation.TTL).Msg("Invalid CONVERSATION_TTL")
	}

	location, err := time.LoadLocation(cfg.Prompt.Timezone)
	if err != nil {
		logx.Fatal().Err(err).Str("timezone", cfg.Prompt.Timezone).Msg("Invalid PROMPT_TIMEZONE")
	}

	// Thread storage: Redis when configured, in-process otherwise.
	var threads model.ThreadRepository
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New()
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
		}
		defer rdb.Close()
		threads = repo.NewRedisThreadRepository(rdb, ttl)
		logx.Info().Msg("Using Redis thread repository")
	} else {
		memRepo := repo.NewMemoryThreadRepository(ttl)
		defer memRepo.Close()
		threads = memRepo
		logx.Info().Msg("Using in-memory thread repository")
	}

	appointmentStore, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		logx.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open appointment store")
	}
	defer appointmentStore.Close()

	creds, err := calendar.NewFileCredentialSource(cfg.Calendar)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise calendar credentials")
	}
	calendarProvider, err := calendar.NewGoogleProvider(ctx, cfg.Calendar, creds)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise calendar provider")
	}

	kb, err := knowledge.Load(cfg.ClinicDataPath)
	if err != nil {
		logx.Fatal().Err(err).Str("path", cfg.ClinicDataPath).Msg("Failed to load clinic data")
	}

	chatModels, err := llm.NewChatModels(ctx, llm.ChatModelConfig{
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		AssistantConfig: &cfg.Assistant,
		KnowledgeConfig: &cfg.Knowledge,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create chat models")
	}

	registry, err := tools.NewRegistry(tools.Deps{
		Store:        appointmentStore,
		Calendar:     calendarProvider,
		Threads:      threads,
		KB:           kb,
		Knowledge:    chatModels.Knowledge,
		Location:     location,
		HospitalName: cfg.Prompt.HospitalName,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build tool registry")
	}

	infos, err := registry.Infos(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to collect tool schemas")
	}
	if err := chatModels.BindToolsToAssistant(ctx, infos); err != nil {
		logx.Fatal().Err(err).Msg("Failed to bind tools")
	}

	asst, err := assistant.New(assistant.Config{
		ChatModel:    chatModels.Assistant,
		Registry:     registry,
		Threads:      threads,
		PromptConfig: cfg.Prompt,
		Location:     location,
		Conversation: cfg.Conversation,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build assistant")
	}

	router := api.NewRouter(api.RouterDependencies{
		ChatHandlers:        handlers.NewChatHandlers(asst, threads),
		AppointmentHandlers: handlers.NewAppointmentHandlers(appointmentStore),
		AllowedOrigins:      httputil.SplitOrigins(cfg.AllowedOrigins),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logx.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-stopChan
	logx.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logx.Info().Msg("Server shutdown complete")
}
