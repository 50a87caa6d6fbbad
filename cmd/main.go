package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/fit-tracker/internal/handlers"
	"github.com/sbilibin2017/fit-tracker/internal/jwt"
	"github.com/sbilibin2017/fit-tracker/internal/logger"
	"github.com/sbilibin2017/fit-tracker/internal/middlewares"
	"github.com/sbilibin2017/fit-tracker/internal/models"
	"github.com/sbilibin2017/fit-tracker/internal/repositories"
	"github.com/sbilibin2017/fit-tracker/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title fit-tracker API
// @version 1.0.0
// @description Personal health tracking service: posts plus per-day weight, calorie, step and exercise samples
// @host localhost:8080
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword, redisUserTTL,
		kafkaBroker, kafkaTopic,
		jwtSecretKey, jwtAlgorithm, accessTokenExpireMinutes,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword, redisUserTTL,
		kafkaBroker, kafkaTopic,
		jwtSecretKey, jwtAlgorithm, accessTokenExpireMinutes,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, database, Redis, Kafka, logging and JWT configuration.
// The JWT secret and algorithm carry no defaults: refusing to start beats
// serving tokens signed with a guessable key.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string, redisUserTTL time.Duration,
	kafkaBroker, kafkaTopic string,
	jwtSecretKey, jwtAlgorithm string, accessTokenExpireMinutes int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	pgHost = getEnv("POSTGRES_HOST", "localhost")
	pgUser = getEnv("POSTGRES_USER", "user")
	pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	pgDB = getEnv("POSTGRES_DB", "fittracker")
	if pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// Redis config
	redisHost = getEnv("REDIS_HOST", "localhost")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")
	var ttlSecond int
	if ttlSecond, err = strconv.Atoi(getEnv("REDIS_USER_TTL_SECOND", "300")); err != nil {
		return
	}
	redisUserTTL = time.Duration(ttlSecond) * time.Second

	// Kafka config, optional: without a broker sample events are skipped
	kafkaBroker = getEnv("KAFKA_BROKER", "")
	kafkaTopic = getEnv("KAFKA_TOPIC", "fit-tracker.samples")

	// JWT config
	jwtSecretKey = getEnv("SECRET_KEY", "")
	if jwtSecretKey == "" {
		err = fmt.Errorf("SECRET_KEY is required")
		return
	}
	jwtAlgorithm = getEnv("ALGORITHM", "")
	if jwtAlgorithm == "" {
		err = fmt.Errorf("ALGORITHM is required")
		return
	}
	if accessTokenExpireMinutes, err = strconv.Atoi(getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")); err != nil {
		return
	}

	return
}

// run initializes the logger, database, Redis, Kafka and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string, redisUserTTL time.Duration,
	kafkaBroker, kafkaTopic string,
	jwtSecretKey, jwtAlgorithm string, accessTokenExpireMinutes int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		pgUser, pgPassword, pgHost, pgPort, pgDB)
	logger.Log.Infof("Connecting to PostgreSQL at %s:%d/%s", pgHost, pgPort, pgDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL ping failed: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", redisHost, redisPort),
		Password: redisPassword,
		DB:       redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Kafka writer for sample-recorded events
	var kafkaWriter services.KafkaWriter
	if kafkaBroker != "" {
		w := &kafka.Writer{
			Addr:                   kafka.TCP(kafkaBroker),
			Topic:                  kafkaTopic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infof("Kafka writer configured for %s, topic %s", kafkaBroker, kafkaTopic)
	} else {
		logger.Log.Info("No Kafka broker configured, sample events disabled")
	}

	// Initialize JWT service
	signingMethod := gojwt.GetSigningMethod(jwtAlgorithm)
	if signingMethod == nil {
		return fmt.Errorf("unknown JWT signing algorithm: %s", jwtAlgorithm)
	}
	jwtSvc := jwt.New(
		jwt.WithSecretKey(jwtSecretKey),
		jwt.WithSigningMethod(signingMethod),
		jwt.WithExpiration(time.Duration(accessTokenExpireMinutes)*time.Minute),
	)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db, middlewares.GetTxFromContext)
	userWriteRepo := repositories.NewUserWriteRepository(db, middlewares.GetTxFromContext)
	userCacheRepo := repositories.NewUserCacheRepository(rdb, redisUserTTL)
	postReadRepo := repositories.NewPostReadRepository(db, middlewares.GetTxFromContext)
	postWriteRepo := repositories.NewPostWriteRepository(db, middlewares.GetTxFromContext)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, jwtSvc)
	userService := services.NewUserService(userReadRepo, userCacheRepo)
	postService := services.NewPostService(postReadRepo, postWriteRepo)

	datapointServices := make([]*services.DatapointService, 0, len(models.Metrics))
	for _, metric := range models.Metrics {
		readRepo := repositories.NewDatapointReadRepository(db, middlewares.GetTxFromContext, metric)
		writeRepo := repositories.NewDatapointWriteRepository(db, middlewares.GetTxFromContext, metric)
		datapointServices = append(datapointServices,
			services.NewDatapointService(metric, readRepo, writeRepo, kafkaWriter))
	}

	// Setup router
	tx := middlewares.TxMiddleware(db)
	auth := middlewares.AuthMiddleware(jwtSvc, userService)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Public routes
	r.With(tx).Post("/users", handlers.NewRegisterHandler(authService))
	r.Post("/login", handlers.NewLoginHandler(authService))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Get("/users/{id}", handlers.NewGetUserHandler(userService))

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", handlers.NewListPostsHandler(postService))
			r.With(tx).Post("/", handlers.NewCreatePostHandler(postService))
			r.Get("/{id}", handlers.NewGetPostHandler(postService))
			r.With(tx).Put("/{id}", handlers.NewUpdatePostHandler(postService))
			r.With(tx).Delete("/{id}", handlers.NewDeletePostHandler(postService))
		})

		r.Route("/data", func(r chi.Router) {
			for _, svc := range datapointServices {
				r.Route("/"+svc.Metric().Path, func(r chi.Router) {
					r.Get("/", handlers.NewListDatapointsHandler(svc))
					r.With(tx).Post("/", handlers.NewCreateDatapointHandler(svc))
					r.Get("/{date}", handlers.NewGetDatapointHandler(svc))
					r.With(tx).Put("/{date}", handlers.NewUpdateDatapointHandler(svc))
					r.With(tx).Delete("/{date}", handlers.NewDeleteDatapointHandler(svc))
				})
			}
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
