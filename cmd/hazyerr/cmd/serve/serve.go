package serve

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"google.golang.org/grpc"

	"github.com/HazyCorp/hazyerr/cmd/hazyerr/cmd/globflags"
	"github.com/HazyCorp/hazyerr/internal/fxbuild"
	"github.com/HazyCorp/hazyerr/internal/invokeserver"
	"github.com/HazyCorp/hazyerr/internal/metricsrv"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "runs the grpc and metrics servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var e struct {
			fx.In
			Logger *slog.Logger
		}

		app := fx.New(
			fx.Provide(fxbuild.GetConstructors(globflags.ConfigPath)...),
			fx.Populate(&e),
			fx.Invoke(func(*grpc.Server, *invokeserver.Server, *metricsrv.Server) {}),
			fxbuild.WithLogger(true),
		)

		if err := app.Start(ctx); err != nil {
			return errors.Wrap(err, "cannot start the application")
		}

		l := e.Logger

		select {
		case <-ctx.Done():
			l.Info("got shutdown signal")
		case stopSignal := <-app.Wait():
			l.Info("application ended its work", slog.String("message", stopSignal.String()))
		}

		tCtx, tCancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer tCancel()

		if err := app.Stop(tCtx); err != nil {
			return errors.Wrap(err, "cannot gracefully stop the application")
		}

		l.Info("application shut down successfully")
		return nil
	},
}
