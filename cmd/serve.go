package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Vovarama1992/erp-sales-bot/internal/ai"
	"github.com/Vovarama1992/erp-sales-bot/internal/chatbot"
	"github.com/Vovarama1992/erp-sales-bot/internal/query"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic ERP sync",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	syncCtx, stopSync := context.WithCancel(ctx)
	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		a.sync.Run(syncCtx, a.cfg.SyncInterval)
	}()
	// the db must outlive every sync pass
	defer func() {
		stopSync()
		<-syncDone
	}()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.cfg.LLMTimeout + 15*time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// --- Chatbot module wiring ---
	aiClient := ai.NewOpenAIClient(a.cfg.OpenAIKey, a.cfg.OpenAIModel)
	engine := query.NewEngine(chatbot.NewAnswerer(aiClient), a.cfg.ContextRecords)
	chatbotService := chatbot.NewService(aiClient, engine, a.store, a.sync, a.cfg.LLMTimeout)
	chatbotHandler := chatbot.NewHandler(chatbotService)

	chatbot.RegisterRoutes(r, chatbotHandler)

	// --- health ---
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", a.cfg.Port).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
