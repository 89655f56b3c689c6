package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/address"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/config"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/handler"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/auth"
	"github.com/vasapolrittideah/account-api/shared/discovery"
	"github.com/vasapolrittideah/account-api/shared/health"
	"github.com/vasapolrittideah/account-api/shared/mailer"
	"github.com/vasapolrittideah/account-api/shared/middleware"
	"github.com/vasapolrittideah/account-api/shared/security"
	"github.com/vasapolrittideah/account-api/shared/storage"
	"github.com/vasapolrittideah/account-api/shared/validation"
)

const sessionAudience = "account-api"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "account-service").Logger()

	cfg := config.NewAccountServiceConfig(&logger)
	if !cfg.IsProduction() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := mongoClient.Ping(pingCtx, readpref.Primary()); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}
	cancel()

	db := mongoClient.Database(cfg.Mongo.Database)
	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)

	checkers := map[string]health.Checker{
		"mongodb": func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		},
	}

	var ledger repository.OTPRedemptionRepository
	switch cfg.OTP.Ledger {
	case config.LedgerRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ledger = repository.NewOTPRedemptionRedisRepository(rdb)
		checkers["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	case config.LedgerMongo:
		ledger = repository.NewOTPRedemptionMongoRepository(ctx, &logger, db)
	}
	logger.Info().Str("ledger", cfg.OTP.Ledger).Msg("otp redemption ledger configured")

	signer, err := security.NewSecretSigner(cfg.OTP.Secret)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create otp signer")
	}
	if signer.IsDefault() {
		logger.Warn().Msg("OTP_SECRET is not set, using the insecure default")
	}

	hasher := security.NewPasswordHasher(security.PasswordHasherConfig{
		TimeCost:   cfg.Password.HashTimeCost,
		MemoryCost: cfg.Password.HashMemoryCost,
	})
	sessions := auth.NewJWTAuthenticator(
		sessionAudience,
		cfg.Token.Issuer,
		cfg.Token.SessionTokenSecret,
		cfg.Token.SessionExpiresIn,
	)
	mail := mailer.NewMailer(&logger)
	validator := validation.New()

	var blobStore storage.BlobStore
	if cfg.BlobStoreEnabled() {
		s3Store, err := storage.NewS3BlobStore(ctx, storage.S3Config{
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Bucket:        cfg.S3.Bucket,
			Prefix:        cfg.S3.Prefix,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create s3 blob store")
		}
		blobStore = s3Store
	} else {
		logger.Warn().Msg("S3_BUCKET is not set, image uploads are disabled")
	}

	authUsecase, err := usecase.NewAuthUsecase(userRepo, hasher, sessions)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create auth usecase")
	}

	otp := usecase.NewOTPChallenger(signer, ledger)
	passwordPolicy := usecase.PasswordPolicy{
		MinLength: cfg.Password.MinLength,
		MaxLength: cfg.Password.MaxLength,
	}

	accountHandler := handler.NewAccountHandler(handler.AccountHandlerParams{
		SignupUsecase: usecase.NewSignupUsecase(userRepo, otp, hasher, mail, usecase.SignupPolicy{
			Email:         usecase.AllowDomains(validator, cfg.Policy.AllowedEmailDomains...),
			Password:      passwordPolicy,
			AvatarBaseURL: cfg.Policy.AvatarBaseURL,
			CodeDigits:    cfg.OTP.SignupDigits,
			CodeTTL:       cfg.OTP.TTL,
		}),
		PasswordResetUsecase: usecase.NewPasswordResetUsecase(userRepo, otp, hasher, mail, usecase.PasswordResetPolicy{
			Password:   passwordPolicy,
			CodeDigits: cfg.OTP.ResetDigits,
			CodeTTL:    cfg.OTP.TTL,
		}),
		AuthUsecase:    authUsecase,
		ProfileUsecase: usecase.NewProfileUsecase(userRepo, address.NewStaticValidator()),
		ImageUsecase:   usecase.NewImageUsecase(blobStore, cfg.Policy.MaxImageBytes),
		Authenticator:  middleware.NewSessionAuthenticator(sessions, cfg.Token.CookieName),
		Validator:      validator,
		Cookie: handler.CookieConfig{
			Name:   cfg.Token.CookieName,
			Secure: cfg.HTTP.SecureCookies,
		},
		MaxImageBytes: cfg.Policy.MaxImageBytes,
		Logger:        &logger,
	})

	reporter := health.NewReporter(&logger, checkers)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.AccessLog(&logger))
	router.Use(chimiddleware.Recoverer)
	router.Method(http.MethodGet, "/healthz", reporter)
	accountHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		if err := reporter.ServeGRPC(ctx, cfg.HTTP.GRPCHealthAddr); err != nil {
			logger.Error().Err(err).Msg("gRPC health server stopped")
		}
	}()

	if cfg.Consul.Addr != "" {
		deregister := registerWithConsul(&logger, cfg)
		defer deregister()
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("account service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down account service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down http server")
	}
}

func registerWithConsul(logger *zerolog.Logger, cfg *config.AccountServiceConfig) func() {
	registry, err := discovery.NewConsulRegistry(logger, cfg.Consul.Addr)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create consul registry")
	}

	err = registry.Register(discovery.Registration{
		ServiceID:   cfg.Consul.ServiceID,
		ServiceName: cfg.Consul.ServiceName,
		Address:     advertise(cfg.Consul.AdvertiseIP, cfg.HTTP.Addr),
		GRPCAddr:    advertise(cfg.Consul.AdvertiseIP, cfg.HTTP.GRPCHealthAddr),
		Tags:        []string{"http", cfg.Environment},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register with consul")
	}

	return func() {
		if err := registry.Deregister(cfg.Consul.ServiceID); err != nil {
			logger.Error().Err(err).Msg("failed to deregister from consul")
		}
	}
}

// advertise replaces the host of a listen address with ip.
func advertise(ip, listenAddr string) string {
	_, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return listenAddr
	}
	return net.JoinHostPort(ip, port)
}
