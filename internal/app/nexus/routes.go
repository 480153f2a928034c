package nexus

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/nexus/internal/config"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/admin/adminlogin"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/admin/adminlogout"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/admin/applications"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/admin/review"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/group/create"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/group/explore"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/group/join"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/group/status"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/health"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/owner/application"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/owner/apply"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/owner/groups"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/owner/ownerlogin"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/payment/cancel"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/payment/customer"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/payment/plan"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/payment/savetoken"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/payment/webhook"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/user/checkpayment"
	"github.com/magabrotheeeer/nexus/internal/http/handlers/user/profile"
	"github.com/magabrotheeeer/nexus/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nexus/internal/models"
	"github.com/magabrotheeeer/nexus/internal/paymentprovider"
	adminservice "github.com/magabrotheeeer/nexus/internal/services/admin"
	authservice "github.com/magabrotheeeer/nexus/internal/services/auth"
	groupservice "github.com/magabrotheeeer/nexus/internal/services/group"
	paymentservice "github.com/magabrotheeeer/nexus/internal/services/payment"
	subservice "github.com/magabrotheeeer/nexus/internal/services/subscription"
)

// Services набор сервисов, которые обслуживают маршруты.
type Services struct {
	Auth         *authservice.Service
	Admin        *adminservice.Service
	Group        *groupservice.Service
	Subscription *subservice.Service
	Payment      *paymentservice.Service
	Provider     *paymentprovider.Client
	Pingers      map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, svc Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Authenticate(middlewarectx.NewSessionResolver(svc.Auth), logger),
	)

	ttl := cfg.TokenTTL
	secure := cfg.CookieSecure
	endUser := middlewarectx.RequireKind(logger, models.KindEndUser)
	admin := middlewarectx.RequireKind(logger, models.KindAdmin)
	owner := middlewarectx.RequireKind(logger, models.KindOwner)
	limit := middlewarectx.RateLimitMiddleware(logger, cfg.RateLimitRPS, cfg.RateBurst)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/auth/register", register.New(logger, svc.Auth).ServeHTTP)
			r.Post("/auth/login", login.New(logger, svc.Auth).ServeHTTP)
			r.Post("/admin/login", adminlogin.New(logger, svc.Auth, ttl, secure).ServeHTTP)
			r.Post("/owner/apply", apply.New(logger, svc.Auth, ttl, secure).ServeHTTP)
			r.Post("/owner/login", ownerlogin.New(logger, svc.Auth, ttl, secure).ServeHTTP)
		})
		r.Post("/admin/logout", adminlogout.New(logger, secure).ServeHTTP)
		r.Get("/owner/application", application.New(logger, svc.Auth).ServeHTTP)
		r.Get("/groups/explore", explore.New(logger, svc.Group).ServeHTTP)

		// Webhook шлюза подписан и проходит без сессии
		r.Post("/razorpay/webhook", webhook.New(logger, svc.Subscription, svc.Provider).ServeHTTP)

		// Пользователь с bearer-токеном
		r.Group(func(r chi.Router) {
			r.Use(endUser)
			r.Use(limit)
			r.Post("/groups/create", create.New(logger, svc.Group).ServeHTTP)
			r.Post("/groups/{id}/join", join.New(logger, svc.Group).ServeHTTP)

			customerHandler := customer.New(logger, svc.Payment).ServeHTTP
			r.Post("/razorpay/create-cutomer", customerHandler)
			r.Post("/razorpay/create-customer", customerHandler)
			r.Post("/razorpay/save-token", savetoken.New(logger, svc.Payment).ServeHTTP)
			r.Post("/razorpay/cancel-subscription", cancel.New(logger, svc.Subscription).ServeHTTP)

			r.Get("/user/check-payment-method", checkpayment.New(logger, svc.Payment).ServeHTTP)
			r.Get("/user/profile", profile.New(logger, svc.Auth).ServeHTTP)
		})

		// Статус подписки читают владелец группы и администратор
		r.With(middlewarectx.RequireKind(logger, models.KindEndUser, models.KindAdmin)).
			Get("/groups/{id}/subscription", status.New(logger, svc.Subscription).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Get("/admin/applications", applications.New(logger, svc.Admin).ServeHTTP)
			r.Post("/admin/applications/{id}/{decision}", review.New(logger, svc.Admin).ServeHTTP)
			r.Post("/razorpay/create-plan", plan.New(logger, svc.Payment).ServeHTTP)
		})

		r.With(owner).Get("/owner/groups", groups.New(logger, svc.Group).ServeHTTP)
	})

	r.Get("/health", health.New(logger, svc.Pingers).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
