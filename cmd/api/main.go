package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/reviewpromax/reviewpromax-backend/api/controllers"
	"github.com/reviewpromax/reviewpromax-backend/api/routes"
	"github.com/reviewpromax/reviewpromax-backend/internal/affiliates"
	"github.com/reviewpromax/reviewpromax-backend/internal/auth"
	"github.com/reviewpromax/reviewpromax-backend/internal/books"
	"github.com/reviewpromax/reviewpromax-backend/internal/forum"
	"github.com/reviewpromax/reviewpromax-backend/internal/helpcenter"
	"github.com/reviewpromax/reviewpromax-backend/internal/notifications"
	"github.com/reviewpromax/reviewpromax-backend/internal/plans"
	"github.com/reviewpromax/reviewpromax-backend/internal/users"
	squarewebhook "github.com/reviewpromax/reviewpromax-backend/internal/webhooks/square"
	"github.com/reviewpromax/reviewpromax-backend/pkg/auth/session"
	"github.com/reviewpromax/reviewpromax-backend/pkg/config"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/migrate"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox"
	"github.com/reviewpromax/reviewpromax-backend/pkg/redis"
	"github.com/reviewpromax/reviewpromax-backend/pkg/square"
	miniostorage "github.com/reviewpromax/reviewpromax-backend/pkg/storage/minio"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	objectStore, err := miniostorage.New(context.Background(), cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap square client", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	usersRepo := users.NewRepository(dbClient.DB())
	booksRepo := books.NewRepository(dbClient.DB())
	plansRepo := plans.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		Users:     usersRepo,
		Sessions:  sessionManager,
		JWTConfig: cfg.JWT,
		Logger:    logg,
	})
	requireService(logg, "auth service", err)

	affiliatesService, err := affiliates.NewService(affiliates.ServiceParams{
		DB:     dbClient,
		Repo:   affiliates.NewRepository(dbClient.DB()),
		Outbox: outboxService,
		Logger: logg,
	})
	requireService(logg, "affiliates service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
		Referrals:      affiliatesService,
		Logger:         logg,
	})
	requireService(logg, "register service", err)

	usersService, err := users.NewService(users.ServiceParams{
		DB:     dbClient,
		Store:  objectStore,
		Outbox: outboxService,
		Logger: logg,
	})
	requireService(logg, "users service", err)

	booksService, err := books.NewService(books.ServiceParams{
		DB:      dbClient,
		Repo:    booksRepo,
		Store:   objectStore,
		Outbox:  outboxService,
		Uploads: cfg.Uploads,
		Storage: cfg.Storage,
		Logger:  logg,
	})
	requireService(logg, "books service", err)

	plansService, err := plans.NewService(plans.ServiceParams{
		DB:       dbClient,
		Repo:     plansRepo,
		Books:    booksRepo,
		Users:    usersRepo,
		Payments: squareClient,
		Outbox:   outboxService,
		Logger:   logg,
	})
	requireService(logg, "plans service", err)

	forumService, err := forum.NewService(forum.ServiceParams{
		DB:     dbClient,
		Repo:   forum.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	requireService(logg, "forum service", err)

	helpCenterService, err := helpcenter.NewService(helpcenter.ServiceParams{
		Repo:   helpcenter.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	requireService(logg, "help center service", err)

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	requireService(logg, "notifications service", err)

	squareWebhookService, err := squarewebhook.NewService(squarewebhook.ServiceParams{
		Plans:  plansRepo,
		Logger: logg,
	})
	requireService(logg, "square webhook service", err)

	squareWebhookGuard, err := squarewebhook.NewIdempotencyGuard(redisClient, cfg.Eventing.OutboxIdempotencyTTL, "square:webhook")
	requireService(logg, "square webhook guard", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			Redis:    redisClient,
			Sessions: sessionManager,
			Readyz: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			AuthService:        authService,
			RegisterService:    registerService,
			UsersService:       usersService,
			BooksService:       booksService,
			PlansService:       plansService,
			Affiliates:         affiliatesService,
			Forum:              forumService,
			HelpCenter:         helpCenterService,
			Notifications:      notificationsService,
			SquareClient:       squareClient,
			SquareWebhook:      squareWebhookService,
			SquareWebhookGuard: squareWebhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+name, err)
		os.Exit(1)
	}
}
