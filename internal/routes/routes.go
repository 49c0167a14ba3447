package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/p2d/serverwallet/internal/balance"
	"github.com/p2d/serverwallet/internal/config"
	"github.com/p2d/serverwallet/internal/dispatch"
	"github.com/p2d/serverwallet/internal/middleware"
	"github.com/p2d/serverwallet/internal/notification"
	"github.com/p2d/serverwallet/internal/platform"
	"github.com/p2d/serverwallet/internal/transfer"
	"github.com/p2d/serverwallet/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	Cache    *redis.Client
	Platform *platform.Client
	Logger   *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	provisioner := wallet.NewProvisioner(d.Platform)

	checker, err := balance.NewChecker(d.Cfg.APIBase, d.Cfg.Network, d.Platform, d.Logger)
	if err != nil {
		return err
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	dispatchSvc := dispatch.NewService(provisioner, d.Platform, notifier, d.Logger, dispatch.Config{
		Network:          d.Cfg.Network,
		OwnerName:        d.Cfg.OwnerName,
		SmartAccountName: d.Cfg.SmartAccountName,
	})

	sendPolicy := dispatch.FixedTransfer(transfer.USDC)
	rewardPolicy := dispatch.Reward(checker, dispatch.RewardAmounts{
		Native: d.Cfg.RewardETHAmount,
		Token:  d.Cfg.RewardUSDCAmount,
	})

	handler := dispatch.NewHandler(dispatchSvc, sendPolicy, rewardPolicy)
	RegisterTransferRoutes(app, handler)

	app.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDKey).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	return nil
}
