// Package routes binds controllers to URLs.
package routes

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/graph"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/paystack"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// Deps are the collaborators the API needs. Only DB is required.
type Deps struct {
	DB *gorm.DB

	// Disk stores product images; nil disables uploads.
	Disk storage.Disk

	// Payments defaults to a Paystack client built from config.
	Payments services.PaymentGateway

	// OrderFeed serves the admin websocket; nil disables the route.
	OrderFeed http.Handler

	// WebhookSecret defaults to config.PaystackWebhookSecret.
	WebhookSecret func() string

	// PublicKey defaults to config.PaystackPublicKey.
	PublicKey func() string
}

// RegisterAPI mounts every /api route and the GraphQL catalogue on r.
func RegisterAPI(r *router.Router, d Deps) error {
	if d.WebhookSecret == nil {
		d.WebhookSecret = config.PaystackWebhookSecret
	}
	if d.PublicKey == nil {
		d.PublicKey = config.PaystackPublicKey
	}
	if d.Payments == nil {
		d.Payments = paystack.New()
	}

	users := repositories.NewUserRepository(d.DB)
	products := repositories.NewProductRepository(d.DB)
	carts := repositories.NewCartRepository(d.DB)
	orders := repositories.NewOrderRepository(d.DB)

	catalog := services.NewProductService(products, d.Disk)
	orderService := services.NewOrderService(orders)

	authC := controllers.NewAuthController(services.NewAuthService(users))
	userC := controllers.NewUserController(services.NewUserService(users))
	productC := controllers.NewProductController(catalog)
	cartC := controllers.NewCartController(services.NewCartService(carts, products))
	orderC := controllers.NewOrderController(orderService, services.NewCheckoutService(d.DB, catalog))
	adminOrderC := controllers.NewAdminOrderController(orderService)
	paymentC := controllers.NewPaymentController(services.NewPaymentService(d.Payments, carts, users), d.PublicKey)
	webhookC := controllers.NewWebhookController(services.NewWebhookService(orders, d.WebhookSecret))

	api := r.Group("/api")

	authLimit := middleware.RateLimit(20, time.Minute)
	api.Post("/auth/signup", "auth.signup", ctx.Wrap(authC.Signup), authLimit)
	api.Post("/auth/login", "auth.login", ctx.Wrap(authC.Login), authLimit)

	api.Get("/products", "products.index", ctx.Wrap(productC.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(productC.Show))

	api.Get("/payments/config", "payments.config", ctx.Wrap(paymentC.Config))
	api.Post("/webhook/paystack", "webhook.paystack", ctx.Wrap(webhookC.Paystack))

	user := api.Group("", middleware.AuthMiddleware)
	user.Get("/auth/me", "auth.me", ctx.Wrap(authC.Me))
	user.Put("/users", "users.update", ctx.Wrap(userC.Update))

	user.Get("/cart", "cart.show", ctx.Wrap(cartC.Show))
	user.Post("/cart", "cart.add", ctx.Wrap(cartC.Add))
	user.Delete("/cart", "cart.clear", ctx.Wrap(cartC.Clear))
	user.Put("/cart/items/{productId}", "cart.items.update", ctx.Wrap(cartC.Update))
	user.Delete("/cart/items/{productId}", "cart.items.remove", ctx.Wrap(cartC.Remove))

	user.Get("/order", "order.index", ctx.Wrap(orderC.Index))
	user.Post("/order", "order.store", ctx.Wrap(orderC.Store))
	user.Post("/payments/initialize", "payments.initialize", ctx.Wrap(paymentC.Initialize))
	user.Get("/payments/verify/{reference}", "payments.verify", ctx.Wrap(paymentC.Verify))

	admin := api.Group("", middleware.AuthMiddleware, rbac.Admin)
	admin.Get("/orders", "orders.index", ctx.Wrap(adminOrderC.Index))
	admin.Put("/orders/{id}/status", "orders.status", ctx.Wrap(adminOrderC.UpdateStatus))
	admin.Post("/products", "products.store", ctx.Wrap(productC.Store))
	admin.Put("/products/{id}", "products.update", ctx.Wrap(productC.Update))
	admin.Delete("/products/{id}", "products.destroy", ctx.Wrap(productC.Destroy))
	admin.Post("/products/{id}/image", "products.image", ctx.Wrap(productC.UploadImage))
	if d.OrderFeed != nil {
		admin.Get("/admin/orders/ws", "admin.orders.ws", d.OrderFeed.ServeHTTP)
	}

	schema, err := graph.CatalogSchema(catalog)
	if err != nil {
		return err
	}
	gql := graphql.Handler(schema)
	r.Get("/graphql", "graphql.query", gql)
	r.Post("/graphql", "graphql", gql)
	return nil
}
