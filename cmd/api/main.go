package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"news_digest/internal/config"
	"news_digest/internal/curator"
	"news_digest/internal/digest"
	"news_digest/internal/email"
	"news_digest/internal/handler"
	"news_digest/internal/llm"
	"news_digest/internal/runlock"
	"news_digest/internal/service"
	"news_digest/internal/source/rss"
	"news_digest/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	subscribers := postgres.NewSubscriberStore(db)
	sender := email.NewSender(cfg.Email, logger)

	// The manual trigger runs the same pipeline as the daemon. The shared
	// redis lock keeps the two from overlapping.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer redisClient.Close()
	lock := runlock.New(redisClient, "digest:pipeline:run", time.Hour, logger)

	completer, err := llm.NewCompleter(cfg.Model)
	if err != nil {
		logger.Error("failed to build model client", "error", err)
		os.Exit(1)
	}
	client := llm.NewClient(completer, cfg.Model, logger)

	sources := make([]service.Source, 0, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		sources = append(sources, rss.New(rss.Config{
			Name:      feed.Name,
			URL:       feed.URL,
			FetchBody: feed.FetchBody,
			Timeout:   feed.Timeout,
		}, logger))
	}

	location := cfg.Email.DisplayLocation()

	pipeline := service.NewPipeline(service.PipelineDeps{
		Sources:     sources,
		Items:       postgres.NewItemStore(db),
		Digests:     postgres.NewDigestStore(db),
		Subscribers: subscribers,
		Generator:   digest.NewGenerator(client, cfg.Pipeline.MaxContentChars, logger),
		Ranker:      curator.NewRanker(client, curator.DefaultProfile(""), logger),
		Assembler:   email.NewAssembler(client, location, logger),
		Sender:      sender,
		Lock:        lock,
		Location:    location,
	}, logger)

	r := gin.Default()

	allowedOrigins := cfg.API.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	h := handler.NewSubscriberHandler(subscribers, sender, pipeline, cfg.Pipeline.Hours, cfg.Pipeline.TopN, logger)
	h.Register(r)

	srv := &http.Server{Addr: cfg.API.Addr, Handler: r}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("starting api server", "addr", cfg.API.Addr, "origins", allowedOrigins)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
