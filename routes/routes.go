package routes

import (
	"net/http"

	"gadgethub/admin"
	"gadgethub/auth"
	"gadgethub/cart"
	"gadgethub/globals"
	"gadgethub/middleware"
	"gadgethub/orders"
	"gadgethub/products"
	"gadgethub/ratelim"
	"gadgethub/users"
	"gadgethub/utils"

	"github.com/julienschmidt/httprouter"
)

// Deps are the handlers and guards the API is assembled from.
type Deps struct {
	Auth      *auth.Handlers
	Products  *products.Handlers
	Cart      *cart.Handlers
	Orders    *orders.Handlers
	Users     *users.Handlers
	Dashboard *admin.Dashboard

	Tokens      *middleware.Tokens
	RateLimiter *ratelim.RateLimiter
	StaticDir   string
}

// Guards wrap routes that need a login, an admin or rate limiting.
type Guards struct {
	auth  middleware.Middleware
	admin middleware.Middleware
	rl    middleware.Middleware
}

// New builds the router with every /api route plus static files.
func New(d Deps) *httprouter.Router {
	router := httprouter.New()
	g := Guards{
		auth:  d.Tokens.Authenticate,
		admin: middleware.Chain(d.Tokens.Authenticate, middleware.RequireRoles(globals.RoleAdmin)),
		rl:    d.RateLimiter.Limit,
	}

	router.GET("/api/health", Health)
	AddAuthRoutes(router, d.Auth, g)
	AddProductRoutes(router, d.Products, g)
	AddCartRoutes(router, d.Cart, g)
	AddOrderRoutes(router, d.Orders, g)
	AddUserRoutes(router, d.Users, g)
	router.GET("/api/dashboard/metrics", g.admin(d.Dashboard.GetMetrics))
	AddStaticRoutes(router, d.StaticDir)
	return router
}

func Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	utils.SendResponse(w, http.StatusOK, map[string]string{"status": "ok"}, "")
}

func AddStaticRoutes(router *httprouter.Router, staticDir string) {
	router.ServeFiles("/static/*filepath", http.Dir(staticDir))
}

func AddAuthRoutes(router *httprouter.Router, h *auth.Handlers, g Guards) {
	router.POST("/api/auth/register", g.rl(h.Register))
	router.POST("/api/auth/login", g.rl(h.Login))
	router.POST("/api/auth/verify", g.rl(h.Verify))
	router.POST("/api/auth/resend-code", g.rl(h.ResendCode))
	router.POST("/api/auth/logout", g.auth(h.Logout))
}

func AddProductRoutes(router *httprouter.Router, h *products.Handlers, g Guards) {
	router.GET("/api/products", h.GetAllProducts)
	router.GET("/api/products/:id", utils.Dispatch("id", map[string]httprouter.Handle{
		"featured": h.GetFeaturedProducts,
		"promos":   h.GetPromoDeals,
		"search":   h.SearchProducts,
	}, h.GetProductByID))
	router.GET("/api/products/:id/:view", utils.Dispatch("id", map[string]httprouter.Handle{
		"filter": utils.Dispatch("view", map[string]httprouter.Handle{"advanced": h.GetFilteredProducts}, nil),
	}, nil))

	router.POST("/api/products", g.admin(h.CreateProduct))
	router.POST("/api/products/:id", utils.Dispatch("id", map[string]httprouter.Handle{
		"bulk": g.admin(h.BulkCreateProducts),
	}, nil))
	router.PUT("/api/products/:id", g.admin(h.UpdateProduct))
	router.DELETE("/api/products/:id", g.admin(h.SoftDeleteProduct))
	router.POST("/api/products/:id/image", g.admin(h.UploadProductImage))
}

func AddCartRoutes(router *httprouter.Router, h *cart.Handlers, g Guards) {
	router.POST("/api/cart/add", g.auth(h.AddToCart))
	router.GET("/api/cart", g.auth(h.GetCart))
	router.PUT("/api/cart/update", g.auth(h.UpdateCartItem))
	router.DELETE("/api/cart/remove", g.auth(h.RemoveFromCart))
	router.DELETE("/api/cart/clear", g.auth(h.ClearCart))
}

func AddOrderRoutes(router *httprouter.Router, h *orders.Handlers, g Guards) {
	router.POST("/api/orders", g.auth(h.CreateOrder))
	router.GET("/api/orders", g.admin(h.GetAllOrders))
	router.GET("/api/orders/:id", utils.Dispatch("id", map[string]httprouter.Handle{
		"my":   g.auth(h.GetMyOrders),
		"live": g.auth(h.LiveOrders),
	}, g.auth(h.GetOrder)))
	router.GET("/api/orders/:id/invoice", g.auth(h.DownloadInvoice))
	router.PUT("/api/orders/:id", g.admin(h.UpdateOrderStatus))
}

func AddUserRoutes(router *httprouter.Router, h *users.Handlers, g Guards) {
	router.GET("/api/user", g.admin(h.GetAllUsers))
	router.GET("/api/user/:id", utils.Dispatch("id", map[string]httprouter.Handle{
		"profile": g.auth(h.GetProfile),
	}, g.admin(h.GetUserByID)))
	router.PUT("/api/user/:id", utils.Dispatch("id", map[string]httprouter.Handle{
		"profile": g.auth(h.UpdateProfile),
	}, g.admin(h.UpdateUserByID)))
	router.DELETE("/api/user/:id", g.admin(h.DeleteUser))
}
