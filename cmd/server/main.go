package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/scientiflow/internal/api"
	"github.com/RMahshie/scientiflow/internal/api/handlers"
	"github.com/RMahshie/scientiflow/internal/config"
	"github.com/RMahshie/scientiflow/internal/export"
	"github.com/RMahshie/scientiflow/internal/metrics"
	"github.com/RMahshie/scientiflow/internal/processing"
)

func main() {
	// Configure zerolog for structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	configureLogging(cfg)

	// Build the chart pipeline
	m := metrics.New()
	rsvg := export.NewRSVGConverter(cfg.Render.RSVGConvertPath)
	if !rsvg.Available() {
		log.Warn().Str("path", cfg.Render.RSVGConvertPath).Msg("rsvg-convert not found, PDF export will fail until it is installed")
	}
	encoder := export.NewEncoder(export.NewChartRenderer(rsvg))
	chartSvc := processing.NewChartService(encoder, m)

	// Create Chi router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(zerologLogger())
	router.Use(m.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Chart-Quality",
			"X-Chart-DPI",
			"X-Chart-Dimensions",
			"X-Chart-Scale",
			"X-Color-Palette",
			"X-Series-Skipped",
		},
		MaxAge: 300,
	}))

	// Create Huma API
	humaConfig := huma.DefaultConfig("Scientiflow API", handlers.Version)
	humaConfig.DocsPath = "/docs"
	humaAPI := humachi.New(router, humaConfig)

	api.RegisterRoutes(router, humaAPI, chartSvc, m, api.Options{
		MaxUploadBytes: cfg.Upload.MaxBytes(),
		PDFAvailable:   rsvg.Available,
	})

	// Start server
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Env).Msg("Starting Scientiflow API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// configureLogging switches to JSON output outside dev and applies the level
func configureLogging(cfg *config.Config) {
	if !cfg.Server.IsDev() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || cfg.Logging.Level == "" {
		log.Warn().Str("level", cfg.Logging.Level).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// zerologLogger returns a Chi middleware that logs HTTP requests using zerolog
func zerologLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_ip", r.RemoteAddr).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Str("user_agent", r.UserAgent()).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
