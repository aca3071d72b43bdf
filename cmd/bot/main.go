package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/monitor"
	"SignalSentinel/internal/news"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scheduler"
	"SignalSentinel/internal/sentiment"
	"SignalSentinel/internal/server"
	"SignalSentinel/internal/state"
	"SignalSentinel/internal/strategy"
)

func main() {
	modeFlag := flag.String("mode", "auto", "run mode: normal, digest or auto")
	serve := flag.Bool("serve", false, "run as a service: cron jobs, bot commands and status server")
	flag.Parse()

	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal("load config", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("config validation", err)
	}

	log, logCloser, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		fatal("init logger", err)
	}
	defer logCloser.Close()
	log.Info().Str("config", cfgPath).Msg("SignalSentinel starting")

	mode, err := monitor.ParseMode(*modeFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -mode")
	}
	scope, err := state.ParseKeyScope(cfg.State.KeyScope)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid state.key_scope")
	}
	policy, err := monitor.ParseDigestPolicy(cfg.Digest.Policy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid digest.policy")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "yahoo":
		fetcher = collector.NewYahooFetcher(cfg.DataSource.BaseURL, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Price: cfg.DataSource.MockPrice}
	default:
		fetcher = collector.NewTwelveDataFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKeys, cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")
	col := collector.NewCollector(fetcher,
		collector.SeriesSpec{Interval: cfg.DataSource.ShortInterval, Limit: cfg.DataSource.ShortLimit},
		collector.SeriesSpec{Interval: cfg.DataSource.LongInterval, Limit: cfg.DataSource.LongLimit},
		log)

	engine := strategy.NewEngine(calculator.Params{
		RSIPeriod:    cfg.Strategy.RSIPeriod,
		BBPeriod:     cfg.Strategy.BBPeriod,
		BBMultiplier: cfg.Strategy.BBMultiplier,
	}, cfg.Strategy.DistanceThreshold)

	// Sentiment is optional; alerts go out without it when no classifier is configured.
	var analyzer monitor.SentimentAnalyzer
	if cfg.SentimentEnabled() {
		analyzer = sentiment.NewAnalyzer(
			news.NewRSSSource(cfg.News.BaseURL, cfg.Proxy),
			sentiment.NewOpenAIClassifier(cfg.Sentiment.APIKey, cfg.Sentiment.Model, cfg.Sentiment.BaseURL),
			cfg.Sentiment.BatchSize, log)
	} else {
		log.Warn().Msg("sentiment disabled: no OpenAI API key")
	}

	var sender notifier.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		tn.MaxRetries = cfg.Telegram.MaxRetries
		sender = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications go to the log")
		sender = notifier.NewLogNotifier(log)
	}

	store, err := state.Open(ctx, state.Options{
		Backend:       cfg.State.Backend,
		FilePath:      cfg.State.FilePath,
		SQLitePath:    cfg.State.SQLitePath,
		RedisURL:      cfg.State.RedisURL,
		RedisPassword: cfg.State.RedisPassword,
		RedisDB:       cfg.State.RedisDB,
		RedisPrefix:   cfg.State.RedisPrefix,
	})
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.State.Backend).Msg("open state store")
	}
	defer store.Close()

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	met := metrics.New()
	mon := monitor.New(cfg.Instruments, monitor.Deps{
		Collector: col,
		Engine:    engine,
		Analyzer:  analyzer,
		Sender:    sender,
		Store:     store,
		Recorder:  rec,
		Metrics:   met,
	}, monitor.Options{
		Scope:          scope,
		DigestPolicy:   policy,
		RecordIdentity: cfg.Digest.RecordIdentity,
		Window: monitor.DigestWindow{
			Hour:   cfg.Digest.WindowHour,
			Minute: cfg.Digest.WindowMinute,
			Length: time.Duration(cfg.Digest.WindowMinutes) * time.Minute,
		},
		RangeBars: cfg.Digest.RangeBars,
	}, log)

	if !*serve {
		runOnce(ctx, mon, mode, log)
		return
	}

	sched := scheduler.NewScheduler(ctx, mon, log)
	if err := sched.RegisterAll(cfg.Schedule.NormalCron, cfg.Schedule.DigestCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if cfg.Server.Enabled {
		srv := server.New(cfg.Server.Addr, store, met.Registry(), log)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("status server stopped")
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	log.Info().Msg("SignalSentinel is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")
}

func runOnce(ctx context.Context, mon *monitor.Monitor, mode monitor.Mode, log zerolog.Logger) {
	outcomes := mon.Run(ctx, mode, time.Now())
	counts := map[monitor.Status]int{}
	for _, o := range outcomes {
		counts[o.Status]++
	}
	log.Info().
		Int("notified", counts[monitor.StatusNotified]).
		Int("suppressed", counts[monitor.StatusSuppressed]).
		Int("skipped", counts[monitor.StatusSkipped]).
		Int("send_failed", counts[monitor.StatusSendFailed]).
		Msg("run complete")
}

func fatal(msg string, err error) {
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	l.Fatal().Err(err).Msg(msg)
}
