package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fornodoro/backend/api/controllers"
	"github.com/fornodoro/backend/api/middleware"
	authsvc "github.com/fornodoro/backend/internal/auth"
	"github.com/fornodoro/backend/internal/banners"
	"github.com/fornodoro/backend/internal/builder"
	"github.com/fornodoro/backend/internal/cart"
	"github.com/fornodoro/backend/internal/catalog"
	checkoutsvc "github.com/fornodoro/backend/internal/checkout"
	"github.com/fornodoro/backend/internal/coupons"
	"github.com/fornodoro/backend/internal/loyalty"
	"github.com/fornodoro/backend/internal/notifications"
	"github.com/fornodoro/backend/internal/orders"
	"github.com/fornodoro/backend/internal/relay"
	"github.com/fornodoro/backend/internal/settings"
	"github.com/fornodoro/backend/internal/users"
	"github.com/fornodoro/backend/pkg/auth/session"
	"github.com/fornodoro/backend/pkg/config"
	"github.com/fornodoro/backend/pkg/db"
	"github.com/fornodoro/backend/pkg/logger"
	"github.com/fornodoro/backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	authService authsvc.Service,
	usersRepo *users.Repository,
	catalogService catalog.Service,
	builderService builder.Service,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	loyaltyService loyalty.Service,
	notificationsService notifications.Service,
	couponsService coupons.Service,
	bannersService banners.Service,
	settingsService settings.Service,
	relayService relay.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/menu", controllers.Menu(catalogService, logg))
		r.Get("/banners", controllers.ActiveBanners(bannersService, logg))
		r.Get("/store", controllers.StoreInfo(settingsService, logg))

		r.Route("/builder", func(r chi.Router) {
			r.Get("/options", controllers.BuilderOptions(catalogService, logg))
			r.Post("/quote", controllers.BuilderQuote(builderService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartSession())
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/pizzas", controllers.CartAddPizza(cartService, logg))
			r.Post("/products", controllers.CartAddProduct(cartService, logg))
			r.Patch("/items/{lineId}", controllers.CartSetQuantity(cartService, logg))
			r.Delete("/items/{lineId}", controllers.CartRemoveLine(cartService, logg))
			r.Put("/coupon", controllers.CartSetCoupon(cartService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

			r.Get("/me", controllers.Me(usersRepo, logg))
			r.Patch("/me", controllers.UpdateMe(usersRepo, logg))

			r.With(middleware.CartSession()).Post("/checkout", controllers.Checkout(checkoutService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.MyOrders(ordersService, logg))
				r.Get("/{orderId}", controllers.GetOrder(ordersService, logg))
				r.Post("/{orderId}/cancel", controllers.CancelOrder(ordersService, logg))
				r.Get("/{orderId}/whatsapp", controllers.OrderWhatsAppLink(ordersService, relayService, logg))
			})

			r.Route("/loyalty", func(r chi.Router) {
				r.Get("/balance", controllers.LoyaltyBalance(loyaltyService, logg))
				r.Get("/history", controllers.LoyaltyHistory(loyaltyService, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(notificationsService, logg))
				r.Get("/unread-count", controllers.NotificationsUnreadCount(notificationsService, logg))
				r.Post("/{notificationId}/read", controllers.NotificationMarkRead(notificationsService, logg))
				r.Post("/read-all", controllers.NotificationsMarkAllRead(notificationsService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(ordersService, logg))
			r.Post("/{orderId}/status", controllers.AdminUpdateOrderStatus(ordersService, logg))
			r.Post("/{orderId}/confirm-payment", controllers.AdminConfirmPayment(ordersService, logg))
			r.Post("/{orderId}/cancel", controllers.AdminCancelOrder(ordersService, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminListCoupons(couponsService, logg))
			r.Post("/", controllers.AdminCreateCoupon(couponsService, logg))
			r.Put("/{couponId}", controllers.AdminUpdateCoupon(couponsService, logg))
			r.Delete("/{couponId}", controllers.AdminDeleteCoupon(couponsService, logg))
		})

		r.Route("/banners", func(r chi.Router) {
			r.Get("/", controllers.AdminListBanners(bannersService, logg))
			r.Post("/", controllers.AdminCreateBanner(bannersService, logg))
			r.Put("/{bannerId}", controllers.AdminUpdateBanner(bannersService, logg))
			r.Delete("/{bannerId}", controllers.AdminDeleteBanner(bannersService, logg))
		})

		r.Route("/pizzas", func(r chi.Router) {
			r.Get("/", controllers.AdminListPizzas(catalogService, logg))
			r.Post("/", controllers.AdminCreatePizza(catalogService, logg))
			r.Put("/{pizzaId}", controllers.AdminUpdatePizza(catalogService, logg))
			r.Delete("/{pizzaId}", controllers.AdminDeletePizza(catalogService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(catalogService, logg))
			r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(catalogService, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(catalogService, logg))
		})

		r.Route("/options", func(r chi.Router) {
			r.Get("/", controllers.AdminListOptions(catalogService, logg))
			r.Post("/", controllers.AdminCreateOption(catalogService, logg))
			r.Put("/{optionId}", controllers.AdminUpdateOption(catalogService, logg))
			r.Delete("/{optionId}", controllers.AdminDeleteOption(catalogService, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.AdminGetSettings(settingsService, logg))
			r.Put("/", controllers.AdminUpdateSettings(settingsService, logg))
		})

		r.Get("/users", controllers.AdminListUsers(usersRepo, logg))
	})

	return r
}
