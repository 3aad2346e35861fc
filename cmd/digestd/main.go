package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"news_digest/internal/config"
	"news_digest/internal/curator"
	"news_digest/internal/digest"
	"news_digest/internal/email"
	"news_digest/internal/llm"
	"news_digest/internal/publisher"
	"news_digest/internal/runlock"
	"news_digest/internal/scheduler"
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

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to ping redis", "error", err)
		os.Exit(1)
	}
	lock := runlock.New(redisClient, "digest:pipeline:run", time.Hour, logger)

	// The event stream is optional; runs proceed without it.
	var events service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		events = rabbitMQ
	}

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
	if len(sources) == 0 {
		logger.Error("no feeds configured")
		os.Exit(1)
	}

	location := cfg.Email.DisplayLocation()

	pipeline := service.NewPipeline(service.PipelineDeps{
		Sources:     sources,
		Items:       postgres.NewItemStore(db),
		Digests:     postgres.NewDigestStore(db),
		Subscribers: postgres.NewSubscriberStore(db),
		Generator:   digest.NewGenerator(client, cfg.Pipeline.MaxContentChars, logger),
		Ranker:      curator.NewRanker(client, curator.DefaultProfile(""), logger),
		Assembler:   email.NewAssembler(client, location, logger),
		Sender:      email.NewSender(cfg.Email, logger),
		Publisher:   events,
		Lock:        lock,
		Location:    location,
	}, logger)

	sched := scheduler.NewScheduler(pipeline, cfg.Pipeline.Interval, cfg.Pipeline.Hours, cfg.Pipeline.TopN, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting digest daemon",
		"feeds", len(sources),
		"interval", cfg.Pipeline.Interval,
		"provider", cfg.Model.Provider,
	)

	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
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
