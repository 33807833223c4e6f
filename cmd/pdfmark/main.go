package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfmark/internal/api"
	"github.com/dgallion1/pdfmark/internal/config"
	"github.com/dgallion1/pdfmark/internal/llm"
	"github.com/dgallion1/pdfmark/internal/parser"
	"github.com/dgallion1/pdfmark/internal/session"
)

func main() {
	var (
		envFile string
		port    string
	)

	rootCmd := &cobra.Command{
		Use:   "pdfmark",
		Short: "PDF to Markdown viewer with LLM summaries and chat",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the pdfmark web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]any{}
			if cmd.Flags().Changed("port") {
				overrides["PORT"] = port
			}
			cfg, err := config.Load(envFile, overrides)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return serve(cfg)
		},
	}
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to read, ignored when missing")
	serveCmd.Flags().StringVar(&port, "port", "", "HTTP port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cfg config.Config) error {
	log := newLogger(cfg.LogFormat, cfg.LogLevel, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	gen, err := llm.New(ctx, llm.Config{
		Provider:        cfg.LLMProvider,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
	})
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}
	if u, ok := gen.(llm.Unavailable); ok {
		log.Warn("llm provider not configured, summaries and chat will fail", "provider", u.Name, "reason", u.Reason)
	}
	stats := llm.NewLLMStats(cfg.LLMStatsWindow)

	store := session.NewStore(cfg.MaxSessions, cfg.SessionTTL, log)
	opts := parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext}
	open := func(data []byte) (session.Document, error) {
		doc, err := parser.Open(data, opts)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}

	// Initialize HTTP server.
	srv := api.NewServer(store, open, llm.WithStats(gen, stats), stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // whole-document summaries run long
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if c, ok := gen.(interface{ Close() }); ok {
			c.Close()
		}
	}()

	log.Info("starting pdfmark", "port", cfg.Port, "provider", gen.Provider(), "model", gen.Model())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		return err
	}
	return nil
}
