package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/court-reservation/internal/config"
	"github.com/iliyamo/court-reservation/internal/database"
	"github.com/iliyamo/court-reservation/internal/geo"
	"github.com/iliyamo/court-reservation/internal/handler"
	"github.com/iliyamo/court-reservation/internal/identity"
	"github.com/iliyamo/court-reservation/internal/middleware"
	"github.com/iliyamo/court-reservation/internal/migrations"
	"github.com/iliyamo/court-reservation/internal/queue"
	"github.com/iliyamo/court-reservation/internal/repository"
	"github.com/iliyamo/court-reservation/internal/router"
	"github.com/iliyamo/court-reservation/internal/service"
	"github.com/iliyamo/court-reservation/internal/sport"
	"github.com/iliyamo/court-reservation/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	scfg, err := config.LoadSearchConfig()
	if err != nil {
		return fmt.Errorf("loading search config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	// --- MySQL ---
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to mysql: %w", err)
	}
	defer db.Close()
	if err := migrations.Run(db); err != nil {
		return err
	}
	logger.Info("connected to mysql", "host", cfg.DBHost, "db", cfg.DBName)

	// --- Redis (optional) ---
	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
		logger.Info("connected to redis")
	} else {
		logger.Warn("redis unavailable; cache, rate limiting and stored positions disabled")
	}

	// --- Identity ---
	users := repository.NewUserRepo(db)
	verifiers := identity.Chain{identity.NewLocal(cfg.JWTSecret)}
	var fb *identity.Firebase
	if cfg.FirebaseProjectID != "" {
		fb, err = identity.NewFirebase(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			return err
		}
		verifiers = append(verifiers, fb)
		logger.Info("firebase id tokens enabled", "project", cfg.FirebaseProjectID)
	}

	// --- Search pipeline ---
	finder := newFinder(scfg, rdb, logger)
	positions := geo.NewPositionStore(rdb)

	// --- Events ---
	var events service.EventPublisher
	if p := queue.NewPublisher(cfg.AMQPURL); p != nil {
		events = p
	}

	// --- Avatars ---
	var avatars service.AvatarUploader
	if cfg.S3Bucket != "" {
		a, err := storage.NewAvatars(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicURL)
		if err != nil {
			return fmt.Errorf("configuring s3: %w", err)
		}
		avatars = a
	}

	profileRepo := repository.NewProfileRepo(db)
	profiles := service.NewProfiles(profileRepo, identity.DisplayNames{Users: users, Firebase: fb}, avatars, logger)
	respCache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, logger)

	openAPI, err := handler.OpenAPI()
	if err != nil {
		return fmt.Errorf("building openapi document: %w", err)
	}

	h := router.Handlers{
		Health: handler.Health{DB: db, Redis: rdb},
		Auth:   handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db), profileRepo, logger),
		Search: &handler.SearchHandler{
			Finder:    finder,
			Sports:    sport.Default,
			Positions: positions,
			Timeout:   scfg.Timeout,
			Logger:    logger,
		},
		Courts: &handler.CourtHandler{Courts: service.NewCourts(repository.NewCourtRepo(db)), Logger: logger},
		Reservations: &handler.ReservationHandler{
			Reservations: service.NewReservations(repository.NewReservationRepo(db), events, cfg.Location(), logger),
			Logger:       logger,
		},
		Profile: &handler.ProfileHandler{Profiles: profiles, Positions: positions, Logger: logger},
		Comments: &handler.CommentHandler{
			Comments: service.NewComments(repository.NewCommentRepo(db), profileRepo),
			Cache:    respCache,
			Logger:   logger,
		},
		OpenAPI:  openAPI,
		Verifier: verifiers,
		Limiter:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger),
		Cache:    respCache.Middleware(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit("6M"))
	e.Use(middleware.RequestLogger(logger))
	router.Register(e, h)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	addr := ":" + cfg.Port
	g.Go(func() error {
		logger.Info("starting http server", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if cfg.AMQPURL != "" {
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.EventLogDir, logger)
		g.Go(func() error {
			logger.Info("starting reservation consumer", "queue", queue.ReservationQueue)
			return consumer.Run(gctx)
		})
	}

	return g.Wait()
}
