package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/pcforge/storefront/api/controllers"
	"github.com/pcforge/storefront/api/middleware"
	"github.com/pcforge/storefront/internal/storefront"
	"github.com/pcforge/storefront/pkg/config"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/redis"
	"github.com/pcforge/storefront/pkg/shopapi"
)

// Store is the redis surface the router depends on.
type Store interface {
	redis.Pinger
	redis.IdempotencyStore
	middleware.RateLimitStore
}

// SessionRegistry resolves and forgets storefront sessions.
type SessionRegistry interface {
	Get(ctx context.Context, id string) (*storefront.Session, error)
	Drop(id string)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store Store,
	registry SessionRegistry,
	cookies sessions.Store,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
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
	idempotent := middleware.Idempotency(store, middleware.DefaultIdempotencyTTL, logg)
	checkoutOnce := middleware.Idempotency(store, middleware.CheckoutIdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(cookies, cfg.Session.CookieName, registry, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, store, logg)).Post("/login", controllers.AuthLogin(registry, cookies, cfg.Session.CookieName, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, store, logg)).Post("/register", controllers.AuthRegister(logg))
			r.Post("/logout", controllers.AuthLogout(registry, logg))
			r.Get("/me", controllers.AuthMe(logg))
			r.With(middleware.RequireAuth(logg)).Put("/profile", controllers.AuthUpdateProfile(logg))
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogBrowse(logg))
			r.Get("/products/featured", controllers.CatalogFeatured(logg))
			r.Get("/products/{productId}", controllers.CatalogProduct(logg))
			r.Get("/categories", controllers.CatalogCategories(logg))
			r.Get("/categories/{categoryId}/products", controllers.CatalogCategoryProducts(logg))
			r.Get("/brands", controllers.CatalogBrands(logg))
		})

		r.Route("/chatbot", func(r chi.Router) {
			r.Post("/", controllers.ChatSend(logg))
			r.Get("/history", controllers.ChatHistory(logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(logg))
				r.With(idempotent).Post("/", controllers.CartAdd(logg))
				r.Put("/{productId}", controllers.CartUpdate(logg))
				r.Delete("/{productId}", controllers.CartRemove(logg))
				r.Delete("/", controllers.CartClear(logg))
			})
			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistGet(logg))
				r.Post("/toggle", controllers.WishlistToggle(logg))
				r.Delete("/{productId}", controllers.WishlistRemove(logg))
			})
			r.Route("/compare", func(r chi.Router) {
				r.Get("/", controllers.CompareGet(logg))
				r.Post("/toggle", controllers.CompareToggle(logg))
				r.Delete("/{productId}", controllers.CompareRemove(logg))
			})
			r.Route("/builds", func(r chi.Router) {
				r.Get("/", controllers.BuildsList(logg))
				r.With(idempotent).Post("/", controllers.BuildCreate(logg))
				r.Route("/draft", func(r chi.Router) {
					r.Get("/", controllers.DraftGet(logg))
					r.Post("/", controllers.DraftLoad(logg))
					r.Put("/slots", controllers.DraftSelect(logg))
					r.Delete("/slots/{categoryId}", controllers.DraftRemove(logg))
					r.With(idempotent).Post("/save", controllers.DraftSave(logg))
					r.With(idempotent).Post("/cart", controllers.DraftAddToCart(logg))
				})
				r.Get("/{buildId}", controllers.BuildGet(logg))
				r.Put("/{buildId}", controllers.BuildUpdate(logg))
				r.Delete("/{buildId}", controllers.BuildDelete(logg))
				r.With(idempotent).Post("/{buildId}/cart", controllers.BuildAddToCart(logg))
			})

			r.With(checkoutOnce).Post("/checkout", controllers.Checkout(logg))
			r.Get("/payment/return", controllers.PaymentReturn(logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersMine(logg))
				r.With(checkoutOnce).Post("/{orderId}/cancel", controllers.OrderCancel(logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth(logg))
			r.Use(middleware.RequireRole(shopapi.RoleAdmin, logg))

			r.Get("/dashboard", controllers.AdminDashboard(logg))
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductsList(logg))
				r.With(idempotent).Post("/", controllers.AdminProductCreate(logg))
				r.Get("/{productId}", controllers.AdminProductGet(logg))
				r.Put("/{productId}", controllers.AdminProductUpdate(logg))
				r.Delete("/{productId}", controllers.AdminProductDelete(logg))
			})
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.AdminCategoriesList(logg))
				r.Post("/", controllers.AdminCategorySave(logg))
				r.Put("/{categoryId}", controllers.AdminCategorySave(logg))
				r.Delete("/{categoryId}", controllers.AdminCategoryDelete(logg))
				r.Get("/{categoryId}/attributes", controllers.AdminAttributes(logg))
			})
			r.Route("/brands", func(r chi.Router) {
				r.Get("/", controllers.AdminBrandsList(logg))
				r.Post("/", controllers.AdminBrandSave(logg))
				r.Put("/{brandId}", controllers.AdminBrandSave(logg))
				r.Delete("/{brandId}", controllers.AdminBrandDelete(logg))
			})
			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", controllers.AdminSuppliersList(logg))
				r.Post("/", controllers.AdminSupplierSave(logg))
				r.Put("/{supplierId}", controllers.AdminSupplierSave(logg))
				r.Delete("/{supplierId}", controllers.AdminSupplierDelete(logg))
			})
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", controllers.AdminCustomersList(logg))
				r.Delete("/{customerId}", controllers.AdminCustomerDelete(logg))
			})
			r.Route("/imports", func(r chi.Router) {
				r.Get("/", controllers.AdminImportsList(logg))
				r.With(idempotent).Post("/", controllers.AdminImportCreate(logg))
				r.Delete("/{importId}", controllers.AdminImportDelete(logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrdersList(logg))
				r.Patch("/{orderId}/status", controllers.AdminOrderStatus(logg))
			})
		})
	})

	return r
}
