package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nono-wallet/nono_wallet/internal/config"
	"github.com/nono-wallet/nono_wallet/internal/funding"
	"github.com/nono-wallet/nono_wallet/internal/history"
	"github.com/nono-wallet/nono_wallet/internal/ledger"
	"github.com/nono-wallet/nono_wallet/internal/middleware"
	"github.com/nono-wallet/nono_wallet/internal/notification"
	"github.com/nono-wallet/nono_wallet/internal/payments"
	"github.com/nono-wallet/nono_wallet/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. With a nil DB the
// ledger runs on the in-memory store; with a nil Cache the idempotency and
// rate-limit middleware are disabled. Both are dev-only configurations.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	RegisterHealthRoutes(app, d)

	var store ledger.Store
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB)
	} else {
		store = ledger.NewMemoryStore()
	}
	engine := ledger.NewEngine(store, d.Logger, d.Cfg.LockWait)
	queries := ledger.NewQueryEngine(store)

	walletSvc := wallet.NewService(engine)
	fundingSvc := funding.NewService(engine)
	notifier := notification.NewLoggerNotifier(d.Logger)
	paymentSvc := payments.NewService(engine, notifier)

	walletHandler := wallet.NewHandler(walletSvc)
	fundingHandler := funding.NewHandler(fundingSvc)
	paymentHandler := payments.NewHandler(paymentSvc)
	historyHandler := history.NewHandler(queries, d.Logger)

	api := app.Group("/api/v1",
		middleware.APIKey(d.Cfg.APIKey, d.Cfg.APIKeyHash),
		middleware.Audit(d.Logger),
	)
	if d.Cache != nil {
		api.Use(middleware.RateLimit(d.Cache, d.Cfg.RatePerMinute))
		api.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterWalletRoutes(api, walletHandler)
	RegisterFundingRoutes(api, fundingHandler)
	RegisterPaymentRoutes(api, paymentHandler)
	RegisterHistoryRoutes(api, historyHandler)

	return nil
}
