package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/avdave/steamwatch/core/bootstrap"
	corecmd "github.com/avdave/steamwatch/core/cmd"
	"github.com/avdave/steamwatch/core/logger"
	coretelegram "github.com/avdave/steamwatch/core/telegram"
	"github.com/avdave/steamwatch/core/telegram/router"
	"github.com/avdave/steamwatch/core/telegram/state"
	"github.com/avdave/steamwatch/internal/bot"
	"github.com/avdave/steamwatch/internal/pic"
	"github.com/avdave/steamwatch/internal/shot"
	"github.com/avdave/steamwatch/internal/steam"
	"github.com/avdave/steamwatch/internal/tracking"
)

var errNotifierNotReady = errors.New("app: notifier not ready")

// App holds the wired application.
type App struct {
	cfg *Config
	db  *sqlx.DB

	supervisor *tracking.Supervisor
	store      tracking.Store
	notifier   *lazyNotifier
	handlers   *bot.Bot
}

// Bootstrap initializes infrastructure and wires the services.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, errors.New("app: unexpected config carrier type")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := tracking.NewStore(res.DB)
	fetcher := steam.NewClient(cfg.SteamConfig())
	notifier := &lazyNotifier{}
	supervisor := tracking.NewSupervisor(store, fetcher, notifier, cfg.TrackingConfig())

	handlers := bot.New(bot.Deps{
		Supervisor: supervisor,
		Store:      store,
		Capturer:   shot.NewCapturer(cfg.ShotConfig()),
		Assets:     pic.LoadAssets(cfg.AssetsDir),
		States:     state.NewMemoryManager(),
		Limit:      cfg.Tracking.Limit,
	})

	return &App{
		cfg:        cfg,
		db:         res.DB,
		supervisor: supervisor,
		store:      store,
		notifier:   notifier,
		handlers:   handlers,
	}, nil
}

// TelegramRunOptions assembles the bot runtime: registry, routes, middleware,
// and the lifecycle hooks that start and stop the tracking supervisor.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.handlers.Register(reg)

	core := a.cfg.CoreConfig()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin: core.IsAdmin,
	})
	fsm := a.handlers.FSMRouter()
	routes = append(routes, router.TextRoutes(fsm, reg, router.TextOptions{})...)
	routes = append(routes, router.PhotoRoutes(fsm)...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.notifier.set(bot.NewNotifier(rt.Bot, rt.Dispatcher))
			go func() {
				if err := a.supervisor.Restore(logger.Background()); err != nil {
					logger.Error(logger.Background(), "tracker", "restore.failed",
						slog.String("err", err.Error()))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.supervisor.StopAll()
			return a.db.Close()
		},
	}, nil
}

// lazyNotifier defers delivery until the bot instance exists; the supervisor
// is constructed before the Telegram runtime.
type lazyNotifier struct {
	mu    sync.RWMutex
	inner tracking.Notifier
}

func (l *lazyNotifier) set(n tracking.Notifier) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner = n
}

func (l *lazyNotifier) Notify(ctx context.Context, subscriberID int64, text string) error {
	l.mu.RLock()
	inner := l.inner
	l.mu.RUnlock()
	if inner == nil {
		return errNotifierNotReady
	}
	return inner.Notify(ctx, subscriberID, text)
}
