// Command anchor starts the LumenPulse wallet authentication server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lumenpulse/anchor/adapters/events"
	"github.com/lumenpulse/anchor/adapters/mailer"
	"github.com/lumenpulse/anchor/adapters/postgres"
	"github.com/lumenpulse/anchor/adapters/store"
	"github.com/lumenpulse/anchor/adapters/tokenizer"
	"github.com/lumenpulse/anchor/config"
	"github.com/lumenpulse/anchor/internal/migrate"
	"github.com/lumenpulse/anchor/internal/stellar"
	"github.com/lumenpulse/anchor/ports"
	"github.com/lumenpulse/anchor/service"
	transport "github.com/lumenpulse/anchor/transport/http"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	serverKey, err := stellar.KeypairFromSeed(cfg.StellarServerSeed)
	if err != nil {
		logger.Fatal("invalid STELLAR_SERVER_SEED", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseDSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	users := postgres.NewUserRepo(db)
	resetTokens := postgres.NewResetTokenRepo(db)
	refreshTokens := postgres.NewRefreshTokenRepo(db)

	// With Redis, challenges survive restarts and auth events reach the
	// shared stream. Without it both stay in process.
	var challengeStore ports.ChallengeStore
	var publisher message.Publisher
	wmLogger := watermill.NewStdLogger(false, false)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to parse REDIS_URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)

		publisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{Client: redisClient}, wmLogger)
		if err != nil {
			logger.Fatal("failed to create redis publisher", zap.Error(err))
		}
		challengeStore = store.NewRedisStore(redisClient)
	} else {
		logger.Warn("REDIS_URL not set, using in-process challenge store and event bus")
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		challengeStore = store.NewMemoryStore()
	}

	eventPub := events.NewWatermillPublisher(publisher)
	jwts := tokenizer.NewJWTTokenizer(cfg.JWTSecret, cfg.JWTTTL)
	resetMailer := mailer.NewLogMailer(logger, cfg.FrontendURL)

	authService := service.NewAuthService(
		challengeStore, users, jwts, eventPub,
		serverKey, cfg.AuthDomain, cfg.NetworkPassphrase, logger,
	)
	accountService := service.NewAccountService(users, resetTokens, resetMailer, eventPub, logger)
	sessionService := service.NewSessionService(users, refreshTokens, jwts, eventPub, logger)

	sweeper := service.NewSweeper(challengeStore, service.DefaultSweepInterval, logger)
	sweeper.Start()
	defer sweeper.Stop()

	router := transport.SetupRouter(authService, accountService, sessionService)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: router}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}
