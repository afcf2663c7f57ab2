package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Soypete/star-interview-bot/ai"
	"github.com/Soypete/star-interview-bot/ai/interviewchat"
	"github.com/Soypete/star-interview-bot/config"
	"github.com/Soypete/star-interview-bot/database"
	"github.com/Soypete/star-interview-bot/discord"
	"github.com/Soypete/star-interview-bot/interview"
	"github.com/Soypete/star-interview-bot/keepalive"
	"github.com/Soypete/star-interview-bot/logging"
	"github.com/Soypete/star-interview-bot/messagequeue"
	"github.com/Soypete/star-interview-bot/metrics"
	"github.com/Soypete/star-interview-bot/secrets"
	"github.com/Soypete/star-interview-bot/session"
	"github.com/Soypete/star-interview-bot/skills"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run starts the bot and blocks until it is stopped. Errors are logged before they are returned
// so the deferred cleanup still runs on every exit path.
func run() error {
	var configPath, skillsPath, provider, model, logLevel, storeKind string
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flag.StringVar(&skillsPath, "skills", "", "Path to the skill matrix (.csv or .yaml)")
	flag.StringVar(&provider, "provider", "", "LLM provider (openai, anthropic, gemini)")
	flag.StringVar(&model, "model", "", "The model to use for the LLM, empty for the provider default")
	flag.StringVar(&logLevel, "logLevel", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&storeKind, "store", "", "Session store (memory, redis, postgres)")
	flag.Parse()

	bootLogger := logging.NewLogger(logging.LogLevel(logLevel), os.Stdout)

	cfg, err := config.Load(configPath)
	if err != nil {
		bootLogger.Error("failed to load config", "error", err.Error())
		return err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		bootLogger.Error("failed to read config from environment", "error", err.Error())
		return err
	}
	// flags win over file and environment
	overrideIfSet(&cfg.Skills.Path, skillsPath)
	overrideIfSet(&cfg.LLM.Provider, provider)
	overrideIfSet(&cfg.LLM.Model, model)
	overrideIfSet(&cfg.LogLevel, logLevel)
	overrideIfSet(&cfg.Store.Kind, storeKind)
	if err := cfg.Validate(); err != nil {
		bootLogger.Error("invalid config", "error", err.Error())
		return err
	}

	logger := logging.NewLogger(logging.LogLevel(cfg.LogLevel), os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, err := secrets.Load(ctx, secrets.Options{
		Provider:        cfg.LLM.Provider,
		LocalModel:      cfg.LLM.Provider == interviewchat.ProviderOpenAI && cfg.LLM.BaseURL != "",
		RequirePostgres: cfg.Store.Kind == config.StorePostgres && cfg.Store.PostgresURL == "",
	})
	if err != nil {
		logger.Error("failed to load secrets", "error", err.Error())
		return err
	}
	overrideIfSet(&cfg.Store.PostgresURL, creds.PostgresURL)
	if err := cfg.ValidateStore(); err != nil {
		logger.Error("invalid config", "error", err.Error())
		return err
	}

	table, err := skills.Load(cfg.Skills.Path, nil)
	if err != nil {
		logger.Error("failed to load skill table", "path", cfg.Skills.Path, "error", err.Error())
		return err
	}
	if table.Len() < cfg.Skills.SessionSize {
		err := fmt.Errorf("skill table has %d rows, need %d", table.Len(), cfg.Skills.SessionSize)
		logger.Error("skill table is too small", "path", cfg.Skills.Path, "rows", table.Len(), "sessionSize", cfg.Skills.SessionSize)
		return err
	}
	logger.Info("loaded skill table", "path", cfg.Skills.Path, "rows", table.Len())

	bot, err := interviewchat.Setup(ctx, interviewchat.Options{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      creds.LLMAPIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		logger.Error("failed to setup LLM", "error", err.Error())
		return err
	}

	opts := []interview.Option{
		interview.WithPrompter(ai.NewPrompter(cfg.LLM.Role, cfg.LLM.Audience)),
		interview.WithSessionSize(cfg.Skills.SessionSize),
	}

	checks := map[string]keepalive.Checker{}
	if cfg.Health.LLMHealthURL != "" {
		checks["llm"] = keepalive.HTTPCheck{URL: cfg.Health.LLMHealthURL}
	}

	var store session.Store
	switch cfg.Store.Kind {
	case config.StoreRedis:
		rs, err := session.NewRedisStore(ctx, cfg.Store.RedisAddr, cfg.Store.RedisTTL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err.Error())
			return err
		}
		defer rs.Close()
		store = rs
		checks["redis"] = rs
	case config.StorePostgres:
		db, err := database.NewPostgres(cfg.Store.PostgresURL, logger)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err.Error())
			return err
		}
		defer db.Close()
		store = db
		checks["postgres"] = db
		if cfg.Store.RecordEvaluations {
			opts = append(opts, interview.WithEvaluationWriter(db), interview.WithEvaluationReader(db))
		}
	default:
		store = session.NewMemoryStore()
	}
	logger.Info("using session store", "kind", cfg.Store.Kind)

	manager := interview.NewManager(store, bot, table, logger, opts...)
	queue := messagequeue.New(ctx, logger)
	defer queue.Close()

	client, err := discord.Setup(creds.DiscordToken, manager, queue, cfg.Discord.MessageLimit, logger)
	if err != nil {
		logger.Error("failed to setup discord session", "error", err.Error())
		return err
	}

	var alerter keepalive.Alerter
	if cfg.Health.AlertChannelID != "" {
		alerter = keepalive.NewDiscordAlerter(client.Session, cfg.Health.AlertChannelID, logger)
	}
	monitor := keepalive.NewMonitor(checks, cfg.Health.Interval, cfg.Health.AlertInterval, alerter, logger)

	server := metrics.SetupServer(cfg.Metrics.Addr)
	server.Handle("/healthz/deps", monitor.Handler())

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return server.Run(egCtx)
	})
	eg.Go(func() error {
		return monitor.Start(egCtx)
	})
	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info("shutting down")
		if err := client.Close(); err != nil {
			logger.Error("error closing discord session", "error", err.Error())
		}
		return nil
	})

	logger.Info("STAR interview bot running, press Ctrl+C to exit", "provider", cfg.LLM.Provider, "model", bot.ModelName())
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped with error", "error", err.Error())
		return err
	}
	return nil
}

func overrideIfSet(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
