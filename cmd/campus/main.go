package main

import (
	"context"
	"log/slog"
	"os"

	"campus/config"
	"campus/internal/delivery"
	"campus/internal/delivery/http"
	"campus/internal/delivery/http/router/handler"
	"campus/internal/infra/auth"
	logs "campus/internal/infra/log"
	"campus/internal/infra/persistence"
	"campus/internal/infra/persistence/writer"
	"campus/internal/usecase"
	"campus/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Config     *config.Config
	Logger     *slog.Logger
	Deliveries []delivery.Delivery `group:"deliveries"`
}

type restoreParams struct {
	fx.In
	fx.Lifecycle

	Session usecase.SessionUsecase
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			restoreSession,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			persistence.NewKVStore,
			writer.NewSnapshotWriter,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewPasswordHasher,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewStoreService,
			impl.NewSessionService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
			handler.NewPostHandler,
			handler.NewCommentHandler,
			handler.NewEventHandler,
			handler.NewRewardHandler,
			handler.NewStorageHandler,
			handler.NewStreamHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// restoreSession loads persisted state before any delivery starts serving.
func restoreSession(params restoreParams) {
	params.Append(fx.Hook{
		OnStart: params.Session.Restore,
	})
}

func startServer(ctx context.Context, params startServerParams) {
	if !params.Config.HTTP.Enabled {
		params.Logger.Info("HTTP delivery disabled")

		return
	}

	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, delivery := range params.Deliveries {
				go func() {
					if err := delivery.Serve(ctx); err != nil {
						params.Logger.Error("Failed to start server", slog.Any("error", err))
						os.Exit(1)
					}
				}()
			}

			return nil
		},
	})
}
