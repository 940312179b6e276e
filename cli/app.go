package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"gadgethub/admin"
	"gadgethub/auth"
	"gadgethub/cart"
	"gadgethub/config"
	"gadgethub/db"
	"gadgethub/memstore"
	"gadgethub/middleware"
	"gadgethub/mq"
	"gadgethub/orders"
	"gadgethub/products"
	"gadgethub/ratelim"
	"gadgethub/rdx"
	"gadgethub/routes"
	"gadgethub/users"
	"gadgethub/utils"

	"github.com/rs/cors"
)

// Options select the backing stores and the code notifier.
type Options struct {
	// InMemory keeps everything in process: no MongoDB or Redis.
	InMemory bool
	// Notifier overrides the one chosen from the SMTP settings.
	Notifier auth.Notifier
}

// App is a fully wired storefront.
type App struct {
	Handler  http.Handler
	Hub      *orders.Hub
	Auth     *auth.Service
	Products *products.Service

	closers []func(context.Context) error
}

type backend struct {
	products products.Store
	users    users.Store
	carts    cart.Store
	orders   orders.Store
	tx       orders.Transactor
	revoked  middleware.RevocationList
	pub      orders.Publisher
}

// NewApp connects the stores and assembles services, handlers and the
// middleware stack. The hub is running when it returns.
func NewApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	app := &App{Hub: orders.NewHub()}
	go app.Hub.Run()
	app.closers = append(app.closers, func(context.Context) error {
		app.Hub.Stop()
		return nil
	})

	var (
		be  *backend
		err error
	)
	if opts.InMemory {
		be = app.inMemoryBackend()
	} else {
		be, err = app.connectBackend(ctx, cfg)
		if err != nil {
			app.Close(context.Background())
			return nil, err
		}
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifierFor(cfg)
	}

	if err := utils.EnsureDir(cfg.StaticDir); err != nil {
		app.Close(context.Background())
		return nil, fmt.Errorf("static dir: %w", err)
	}

	tokens := middleware.NewTokens(cfg.JWTSecret, cfg.TokenTTL, be.revoked).WithAccounts(be.users)
	catalog := products.NewService(be.products)
	carts := cart.NewService(be.carts, catalog)
	authSvc := auth.NewService(be.users, tokens, notifier, cfg.VerificationTTL)
	orderSvc := orders.NewService(be.orders, carts, catalog, be.tx, be.pub)

	router := routes.New(routes.Deps{
		Auth:        auth.NewHandlers(authSvc),
		Products:    products.NewHandlers(catalog, cfg.StaticDir),
		Cart:        cart.NewHandlers(carts),
		Orders:      orders.NewHandlers(orderSvc, app.Hub),
		Users:       users.NewHandlers(users.NewService(be.users)),
		Dashboard:   admin.NewDashboard(be.products, be.users, be.orders),
		Tokens:      tokens,
		RateLimiter: ratelim.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies...),
		StaticDir:   cfg.StaticDir,
	})

	// CORS → security headers → recover → logging → request id, outermost last
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
	}).Handler(router)
	app.Handler = middleware.RequestID(middleware.Logging(middleware.Recover(middleware.SecurityHeaders(corsHandler))))

	app.Auth = authSvc
	app.Products = catalog
	return app, nil
}

func (a *App) inMemoryBackend() *backend {
	log.Println("Using in-memory stores")
	return &backend{
		products: memstore.NewProductStore(),
		users:    memstore.NewUserStore(),
		carts:    memstore.NewCartStore(),
		orders:   memstore.NewOrderStore(),
		revoked:  memstore.NewRevocationList(),
		pub:      a.Hub,
	}
}

func (a *App) connectBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	database, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, database.Close)
	if err := database.CreateIndexes(ctx); err != nil {
		return nil, err
	}

	be := &backend{
		products: products.NewMongoStore(database.ProductCollection),
		users:    users.NewMongoStore(database.UserCollection),
		carts:    cart.NewMongoStore(database.CartCollection),
		orders:   orders.NewMongoStore(database.OrderCollection),
		tx:       database,
		revoked:  memstore.NewRevocationList(),
		pub:      a.Hub,
	}

	if cfg.RedisAddr == "" {
		log.Println("REDIS_ADDR not set; token revocation and order events stay in process")
		return be, nil
	}

	conn, err := rdx.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return conn.Close() })

	workerCtx, stop := context.WithCancel(context.Background())
	a.closers = append(a.closers, func(context.Context) error {
		stop()
		return nil
	})
	if err := mq.StartOrderEventWorker(workerCtx, conn, a.Hub.Broadcast); err != nil {
		return nil, err
	}

	be.revoked = rdx.NewTokenBlacklist(conn)
	be.pub = mq.NewEmitter(conn)
	return be, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func notifierFor(cfg *config.Config) auth.Notifier {
	if cfg.SMTPHost == "" {
		return auth.LogNotifier{}
	}
	return auth.SMTPNotifier{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}
}
