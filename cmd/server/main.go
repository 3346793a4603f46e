// Package main is the entry point for the voice assistant server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/assistant"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/config"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/handler"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/llm"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/middleware"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/store"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/logger"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/provider/capture"
	capconsole "github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/provider/capture/console"
	pbconsole "github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/provider/playback/console"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting voice assistant server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "voice-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing")
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open conversation storage
	st, err := store.Open(cfg.StoragePath, log)
	if err != nil {
		log.Error("failed to open conversation store", zap.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	// Initialize LLM client
	var llmClient llm.Client
	switch {
	case cfg.DefaultProvider == string(llm.ProviderAnthropic) && cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewClient(llm.ProviderAnthropic, cfg.AnthropicAPIKey, "")
	case cfg.GroqAPIKey != "":
		llmClient, err = llm.NewClient(llm.ProviderGroq, cfg.GroqAPIKey, cfg.GroqBaseURL)
	}
	if err != nil {
		log.Warn("failed to create LLM client, chat features disabled", zap.Error(err))
		llmClient = nil
	}
	if llmClient == nil {
		log.Warn("no LLM API key configured, chat features disabled")
	}

	// Console capture/playback adapters for headless operation
	captureProvider := capconsole.New(os.Stdin)
	playbackProvider := pbconsole.New(os.Stdout)

	orchestrator := assistant.New(st, llmClient, captureProvider, playbackProvider, log, assistant.Config{
		Model:       llm.ResolveModel(cfg.DefaultModel),
		AutoListen:  cfg.AutoListen,
		SettleDelay: cfg.SettleDelay,
		Capture: capture.Config{
			Language:       cfg.SpeechLanguage,
			Continuous:     true,
			AutoStop:       true,
			SilenceTimeout: capture.SilenceTimeout(cfg.SilenceTimeout),
		},
	}, assistant.WithNotifier(func(n assistant.Notice) {
		log.Info("assistant notice",
			zap.String("message", n.Message),
			zap.Bool("persistent", n.Persistent),
		)
	}))

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(st)
	conversationHandler := handler.NewConversationHandler(st, log)
	chatHandler := handler.NewChatHandler(llmClient, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)
			r.Post("/", conversationHandler.Create)
			r.Delete("/", conversationHandler.Clear)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Delete("/", conversationHandler.Delete)
			})
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if llmClient == nil {
			<-gctx.Done()
			return nil
		}
		err := orchestrator.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("server stopped")
}
