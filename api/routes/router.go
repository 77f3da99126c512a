package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reviewpromax/reviewpromax-backend/api/controllers"
	webhookcontrollers "github.com/reviewpromax/reviewpromax-backend/api/controllers/webhooks"
	"github.com/reviewpromax/reviewpromax-backend/api/middleware"
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
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/redis"
	"github.com/reviewpromax/reviewpromax-backend/pkg/square"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Readyz   map[string]controllers.Pinger

	AuthService     auth.Service
	RegisterService auth.RegisterService
	UsersService    users.Service
	BooksService    books.Service
	PlansService    plans.Service
	Affiliates      affiliates.Service
	Forum           forum.Service
	HelpCenter      helpcenter.Service
	Notifications   notifications.Service

	SquareClient       *square.Client
	SquareWebhook      *squarewebhook.Service
	SquareWebhookGuard *squarewebhook.IdempotencyGuard
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Readyz))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/square", webhookcontrollers.SquareWebhook(p.SquareWebhook, p.SquareClient, p.SquareWebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.Login(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg), middleware.Idempotency(p.Redis, logg)).
			Post("/register", controllers.Register(p.RegisterService, logg))
		r.Post("/refresh", controllers.Refresh(p.AuthService, logg))
		r.Post("/logout", controllers.Logout(p.AuthService, logg))
	})

	// Anonymous reading surface. Handlers see a zero caller here, so only
	// published articles are returned.
	r.Route("/api/public/help-center", func(r chi.Router) {
		r.Get("/articles", controllers.ListHelpArticles(p.HelpCenter, logg))
		r.Get("/articles/{slug}", controllers.GetHelpArticle(p.HelpCenter, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))
		r.Use(middleware.RateLimit(p.Redis, logg))

		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/me", controllers.GetMe(p.UsersService, logg))
		})

		r.Route("/v1/books", func(r chi.Router) {
			r.Post("/", controllers.SubmitBook(p.BooksService, cfg.Uploads, logg))
			r.Get("/", controllers.ListBooks(p.BooksService, logg))
			r.Get("/{bookID}", controllers.GetBook(p.BooksService, logg))
			r.Patch("/{bookID}", controllers.UpdateBook(p.BooksService, logg))
			r.Delete("/{bookID}", controllers.DeleteBook(p.BooksService, logg))
			r.Get("/{bookID}/downloads", controllers.BookDownloads(p.BooksService, logg))
		})

		r.Route("/v1/plans", func(r chi.Router) {
			r.Post("/purchase", controllers.PurchasePlan(p.PlansService, logg))
			r.Get("/", controllers.ListPlans(p.PlansService, logg))
			r.Get("/attachable", controllers.ListAttachablePlans(p.PlansService, logg))
			r.Get("/{planID}", controllers.GetPlan(p.PlansService, logg))
			r.Post("/{planID}/attach", controllers.AttachPlan(p.PlansService, logg))
		})

		r.Route("/v1/affiliates", func(r chi.Router) {
			r.Post("/apply", controllers.ApplyAffiliate(p.Affiliates, logg))
			r.Get("/me", controllers.GetAffiliate(p.Affiliates, logg))
			r.Get("/stats", controllers.AffiliateStats(p.Affiliates, logg))
			r.Get("/commissions", controllers.ListCommissions(p.Affiliates, logg))
			r.Post("/payouts", controllers.RequestPayout(p.Affiliates, logg))
			r.Get("/payouts", controllers.ListPayouts(p.Affiliates, logg))
		})

		r.Route("/v1/forum/posts", func(r chi.Router) {
			r.Get("/", controllers.ListForumPosts(p.Forum, logg))
			r.Post("/", controllers.CreateForumPost(p.Forum, logg))
			r.Get("/{postID}", controllers.GetForumThread(p.Forum, logg))
			r.Post("/{postID}/replies", controllers.ReplyToForumPost(p.Forum, logg))
			r.Post("/{postID}/vote", controllers.VoteForumPost(p.Forum, logg))
			r.Delete("/{postID}", controllers.DeleteForumPost(p.Forum, logg))
		})

		// Authenticated help center reads so admins can see drafts.
		r.Route("/v1/help-center", func(r chi.Router) {
			r.Get("/articles", controllers.ListHelpArticles(p.HelpCenter, logg))
			r.Get("/articles/{slug}", controllers.GetHelpArticle(p.HelpCenter, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(p.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(p.Redis, logg))
		r.Use(middleware.RateLimit(p.Redis, logg))

		r.Route("/v1/books", func(r chi.Router) {
			r.Get("/", controllers.ListBookQueue(p.BooksService, logg))
			r.Post("/{bookID}/review", controllers.ReviewBook(p.BooksService, logg))
		})

		r.Route("/v1/plans", func(r chi.Router) {
			r.Post("/{planID}/reviews", controllers.RecordPlanReview(p.PlansService, logg))
		})

		r.Route("/v1/affiliates", func(r chi.Router) {
			r.Get("/", controllers.ListAffiliates(p.Affiliates, logg))
			r.Get("/stats", controllers.AffiliateProgramStats(p.Affiliates, logg))
			r.Post("/{affiliateID}/decision", controllers.DecideAffiliate(p.Affiliates, logg))
		})
		r.Route("/v1/commissions", func(r chi.Router) {
			r.Post("/", controllers.RecordCommission(p.Affiliates, logg))
			r.Post("/{commissionID}/approve", controllers.ApproveCommission(p.Affiliates, logg))
			r.Post("/{commissionID}/void", controllers.VoidCommission(p.Affiliates, logg))
		})
		r.Route("/v1/payouts", func(r chi.Router) {
			r.Post("/{payoutID}/process", controllers.ProcessPayout(p.Affiliates, logg))
		})

		r.Route("/v1/users", func(r chi.Router) {
			r.Post("/{userID}/ban", controllers.BanUser(p.UsersService, logg))
		})

		r.Route("/v1/help-center/articles", func(r chi.Router) {
			r.Post("/", controllers.CreateHelpArticle(p.HelpCenter, logg))
			r.Patch("/{articleID}", controllers.UpdateHelpArticle(p.HelpCenter, logg))
			r.Post("/{articleID}/publish", controllers.PublishHelpArticle(p.HelpCenter, logg))
			r.Delete("/{articleID}", controllers.DeleteHelpArticle(p.HelpCenter, logg))
		})
	})

	return r
}
