package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/consumer"
	"github.com/gosight/gosight/summarizer/internal/enricher"
	"github.com/gosight/gosight/summarizer/internal/handler"
	"github.com/gosight/gosight/summarizer/internal/llm"
	"github.com/gosight/gosight/summarizer/internal/preprocessor"
	"github.com/gosight/gosight/summarizer/internal/producer"
	"github.com/gosight/gosight/summarizer/internal/session"
	"github.com/gosight/gosight/summarizer/internal/storage"
	"github.com/gosight/gosight/summarizer/internal/summarizer"
	"github.com/gosight/gosight/summarizer/internal/worker"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load config
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/summarizer.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load config")
	}

	log.Info().
		Str("redis_addr", cfg.Redis.Addr).
		Str("clickhouse_addr", cfg.ClickHouse.Addr).
		Bool("kafka_enabled", cfg.Kafka.Enabled).
		Str("model", cfg.LLM.Model).
		Dur("check_interval", cfg.Worker.CheckInterval).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize stores
	recordings := session.NewRecordingStore(cfg.Redis)
	defer recordings.Close()
	if err := recordings.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	log.Info().Msg("Connected to Redis")

	ch, err := storage.NewClickHouse(cfg.ClickHouse)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to ClickHouse")
	}
	defer ch.Close()
	log.Info().Msg("Connected to ClickHouse")

	pg, err := storage.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pg.Close()
	log.Info().Msg("Connected to PostgreSQL")

	// Initialize language model
	gemini, err := llm.NewGemini(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.EmbeddingModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	model := llm.NewClient(gemini, cfg.LLM)

	sessionEnricher := enricher.NewEnricher(cfg.GeoIP.DBPath)
	defer sessionEnricher.Close()

	deps := worker.Deps{
		Recordings:   recordings,
		Archive:      ch,
		Registry:     pg,
		Preprocessor: preprocessor.New(cfg.Insights),
		Summarizer:   summarizer.New(model, cfg.Summarizer),
		Embedder:     model,
		Enricher:     sessionEnricher,
	}
	if cfg.Summarizer.Downsample {
		deps.Downsampler = preprocessor.NewDownsampler()
	}

	var kafkaProducer *producer.KafkaProducer
	if cfg.Kafka.Enabled {
		kafkaProducer = producer.NewKafkaProducer(cfg.Kafka)
		defer kafkaProducer.Close()
		deps.Notifier = kafkaProducer
	}
	sessionWorker := worker.NewSessionWorker(deps, cfg.Worker)

	// Start consuming session-ended notifications
	var kafkaConsumer *consumer.KafkaConsumer
	if cfg.Kafka.Enabled {
		kafkaConsumer, err = consumer.NewKafkaConsumer(cfg.Kafka, sessionWorker)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Kafka consumer")
		}
		go kafkaConsumer.Start(ctx)
	}

	go sessionWorker.Run(ctx)

	// Health and metrics
	httpServer := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: handler.NewRouter(map[string]handler.Pinger{
			"redis":      recordings,
			"clickhouse": ch,
			"postgres":   pg,
		}),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to serve HTTP")
		}
	}()

	log.Info().Msg("Session worker started")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	cancel()
	if kafkaConsumer != nil {
		kafkaConsumer.Close()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	log.Info().Msg("Shutdown complete")
}
