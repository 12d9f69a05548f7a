// Точка сборки сервиса: инфраструктура → репозитории → use cases → адаптеры → HTTP сервер.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	accounttransport "ridematch/internal/account/adapter/in/transport"
	accountuc "ridematch/internal/account/application/usecase"
	"ridematch/internal/ride/adapter/in/in_ws"
	"ridematch/internal/ride/adapter/in/transport"
	"ridematch/internal/ride/adapter/out/out_amqp"
	"ridematch/internal/ride/adapter/out/out_ws"
	"ridematch/internal/ride/adapter/out/repo"
	"ridematch/internal/ride/application/ports/out"
	"ridematch/internal/ride/application/usecase"
	"ridematch/internal/shared/auth"
	"ridematch/internal/shared/config"
	"ridematch/internal/shared/db"
	"ridematch/internal/shared/httpx"
	"ridematch/internal/shared/logger"
	"ridematch/internal/shared/mq"
	"ridematch/internal/shared/user"
	"ridematch/internal/shared/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 15 * time.Second

// App — собранный сервис
type App struct {
	Handler http.Handler
	Hub     *ws.Hub

	cfg     config.Config
	log     *logger.Logger
	closers []func()
}

// storage — репозитории выбранного backend
type storage struct {
	rides out.RideRepository
	users user.Repository
}

// Build создает все зависимости и роутер. Ничего не слушает.
func Build(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log}

	// ========================================================================
	// ИНФРАСТРУКТУРА: хранилище, RabbitMQ, JWT
	// ========================================================================

	store, err := app.openStorage(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	var publisher out.EventPublisher
	if cfg.RabbitMQ.Enabled {
		mqConn, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		app.closers = append(app.closers, mqConn.Close)

		if err := mq.SetupTopology(ctx, mqConn, cfg.RabbitMQ.Exchange, log); err != nil {
			app.Close()
			return nil, fmt.Errorf("rabbitmq topology: %w", err)
		}
		publisher = out_amqp.NewRideEventPublisher(mqConn, cfg.RabbitMQ.Exchange, log)
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	gate := auth.NewGate(jwtService, store.users)

	// ========================================================================
	// WEBSOCKET HUB
	// ========================================================================

	app.Hub = ws.NewHub(ws.Options{
		SendBuffer:     cfg.WebSocket.SendBuffer,
		WriteWait:      cfg.WebSocket.WriteWait(),
		PongWait:       cfg.WebSocket.PongWait(),
		PingInterval:   cfg.WebSocket.PingInterval(),
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
	}, log)

	// ========================================================================
	// USE CASES
	// ========================================================================

	dispatcher := usecase.NewDispatcher(out_ws.NewWsRideNotifier(app.Hub, log), publisher, log)

	createRideUC := usecase.NewCreateRideService(store.rides, dispatcher, log)
	listAvailableUC := usecase.NewListAvailableService(store.rides)
	updateStatusUC := usecase.NewUpdateRideStatusService(store.rides, dispatcher, log)

	registerUC := accountuc.NewRegisterService(store.users, log)
	loginUC := accountuc.NewLoginService(store.users, jwtService, log)
	refreshUC := accountuc.NewRefreshService(store.users, jwtService, log)

	// ========================================================================
	// HTTP
	// ========================================================================

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(httpx.RequestLogger(log))
	r.Use(httpx.Recoverer(log))

	transport.NewHTTPHandler(createRideUC, listAvailableUC, updateStatusUC, log).
		RegisterRoutes(r, transport.JWTMiddleware(gate, log))
	accounttransport.NewHTTPHandler(registerUC, loginUC, refreshUC, log).
		RegisterRoutes(r)
	in_ws.NewNotificationsWSHandler(app.Hub, gate, log).
		RegisterRoutes(r)

	app.Handler = r

	log.Info(logger.Entry{
		Action:  "app_built",
		Message: "service composed",
		Additional: map[string]any{
			"storage":  cfg.Storage.Backend,
			"rabbitmq": cfg.RabbitMQ.Enabled,
		},
	})

	return app, nil
}

func (a *App) openStorage(ctx context.Context) (storage, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendMemory:
		return storage{
			rides: repo.NewRideMemoryRepository(),
			users: user.NewMemoryRepository(),
		}, nil

	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, a.cfg.Database, a.log)
		if err != nil {
			return storage{}, fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, func() { db.Close(pool, a.log) })

		if err := db.Migrate(ctx, pool, a.log); err != nil {
			return storage{}, fmt.Errorf("migrate database: %w", err)
		}
		return storage{
			rides: repo.NewRidePgRepository(pool, a.log),
			users: user.NewPgRepository(pool, a.log),
		}, nil

	default:
		return storage{}, fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
	}
}

// Close освобождает ресурсы в обратном порядке
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Run собирает сервис и держит HTTP сервер до отмены ctx
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	log.Info(logger.Entry{Action: "service_starting", Message: "initializing ridematch"})

	app, err := Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           app.Handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(logger.Entry{
			Action:  "http_server_starting",
			Message: fmt.Sprintf("listening on %s", server.Addr),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info(logger.Entry{Action: "service_stopping", Message: "shutting down"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// hijacked соединения server.Shutdown не закрывает
	app.Hub.Shutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(logger.Entry{
			Action:  "http_server_shutdown_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return err
	}

	log.Info(logger.Entry{Action: "service_stopped", Message: "http server stopped gracefully"})
	return nil
}
