package cmdutil

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"github.com/HazyCorp/hazyerr/internal/fxbuild"
	"github.com/HazyCorp/hazyerr/internal/reportstore"
	"github.com/HazyCorp/hazyerr/pkg/invoke"
)

// App holds the parts of the application used by one-shot commands.
type App struct {
	Invoker *invoke.Invoker
	Reports *reportstore.Store

	app *fx.App
}

// Start builds the application from the config at configPath without the servers.
// The caller must Stop it.
func Start(ctx context.Context, configPath string, verbose bool) (*App, error) {
	a := &App{}

	a.app = fx.New(
		fx.Provide(fxbuild.GetConstructors(configPath)...),
		fx.Populate(&a.Invoker, &a.Reports),
		fxbuild.WithLogger(verbose),
	)

	if err := a.app.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "cannot start the application")
	}

	return a, nil
}

func (a *App) Stop(ctx context.Context) error {
	if err := a.app.Stop(ctx); err != nil {
		return errors.Wrap(err, "cannot stop the application")
	}

	return nil
}
