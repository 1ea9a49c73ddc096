package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/bountyradar/config"
	"sjsage522/bountyradar/helpers"
	"sjsage522/bountyradar/internal/crawler"
	"sjsage522/bountyradar/logger"
	"sjsage522/bountyradar/pkg/errors"
	"sjsage522/bountyradar/services/cache"
	"sjsage522/bountyradar/services/notifier"
	"sjsage522/bountyradar/services/publisher"
	"sjsage522/bountyradar/services/seen"
	"sjsage522/bountyradar/services/worker"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	godotenv.Load()

	logger.Init()
	log := logger.Default

	// Load and validate configuration before any network call
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("source", cfg.SourceURL).
		Str("seen_backend", cfg.SeenBackend).
		Dur("check_interval", cfg.CheckInterval).
		Msg("Starting bountyradar")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	w := newWorker(ctx, cfg, services)

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- w.Start()
	}()

	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
		}
	}
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Store     seen.Store
	Publisher publisher.Publisher
	Notifier  *notifier.Notifier
	Logger    helpers.LoggerInterface
	redis     *redis.Client
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	} else if s.redis != nil {
		s.redis.Close()
	}
}

// checkStartup returns err when it must stop the process and logs it as a
// warning otherwise
func checkStartup(err error) error {
	var re *errors.RadarError
	if stderrors.As(err, &re) && !re.IsFatal() {
		logger.Default.Warn().Err(err).Msg("Continuing without optional service")
		return nil
	}
	return err
}

// initializeServices builds the optional backends. Unreachable Redis or
// memcache servers are reported and the run continues without them, except
// when Redis backs the seen store.
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	log := logger.Default
	services := &Services{
		Logger: helpers.NewLogger(cfg.ErrorLogPath),
	}

	switch {
	case cfg.MemcacheAddr != "":
		mc := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := mc.Ping(); err != nil {
			// rate limit blocks fall back to this process only
			services.Cache = cache.NewMemoryCache()
			if err := checkStartup(err); err != nil {
				return nil, err
			}
		} else {
			services.Cache = mc
			log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
		}
	case cfg.CheckInterval > 0:
		services.Cache = cache.NewMemoryCache()
	}

	if cfg.RedisAddr != "" {
		services.redis = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		if err := services.redis.Ping(ctx).Err(); err != nil {
			var pingErr error = errors.NewPublisher("redis", "server unreachable at "+cfg.RedisAddr, err)
			if cfg.SeenBackend == config.BackendRedis {
				pingErr = errors.NewConfiguration("SEEN_BACKEND=redis but "+cfg.RedisAddr+" is unreachable", err)
			}
			if err := checkStartup(pingErr); err != nil {
				services.redis.Close()
				return nil, err
			}
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("Connected to Redis")
		}
		if cfg.RedisStream != "" {
			services.Publisher = publisher.NewRedisPublisher(services.redis, cfg.RedisStream, cfg.RedisStreamMaxLength)
		}
	}

	if cfg.SeenBackend == config.BackendRedis {
		services.Store = seen.NewRedisStore(services.redis, cfg.SeenRedisKey)
	} else {
		services.Store = seen.NewFileStore(cfg.SeenStorePath)
	}

	sink := notifier.NewTelegramSink(cfg.TelegramToken, cfg.TelegramChatID,
		notifier.WithAPIURL(cfg.TelegramAPIURL),
		notifier.WithHTTPClient(cfg.HTTPClient()),
	)
	services.Notifier = notifier.New(sink, notifier.WithRateLimit(cfg.NotifyRatePerSecond))

	return services, nil
}

func newWorker(ctx context.Context, cfg *config.Config, services *Services) *worker.Worker {
	opts := []worker.Option{
		worker.WithRecordPolicy(cfg.RecordPolicy),
		worker.WithInterval(cfg.CheckInterval),
	}
	if services.Publisher != nil {
		opts = append(opts, worker.WithPublisher(services.Publisher))
	}

	return worker.NewWorker(
		ctx,
		crawler.NewBBRadarCrawler(cfg, services.Cache),
		cfg.Policy,
		services.Store,
		services.Notifier,
		services.Logger,
		opts...,
	)
}
