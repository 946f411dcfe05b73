package invokecmd

import (
	"context"
	"log/slog"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/HazyCorp/hazyerr/cmd/hazyerr/cmd/globflags"
	"github.com/HazyCorp/hazyerr/internal/cmdutil"
	"github.com/HazyCorp/hazyerr/internal/util"
	"github.com/HazyCorp/hazyerr/pkg/common/hzlog"
	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
	"github.com/HazyCorp/hazyerr/pkg/invoke"
)

var dump bool

var InvokeCmd = &cobra.Command{
	Use:   "invoke <target> [args...]",
	Short: "invokes the registered target and prints the classified outcome",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, raw := args[0], args[1:]

		target, err := invoke.DefaultRegistry.Lookup(name)
		if err != nil {
			return err
		}

		callArgs, err := invoke.ConvertArgs(target.Fn, raw)
		if err != nil {
			return errors.Wrap(err, "cannot convert arguments")
		}

		app, err := cmdutil.Start(cmd.Context(), globflags.ConfigPath, globflags.Verbose)
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Stop(context.Background()); err != nil {
				slog.Warn("cannot stop the application", hzlog.Error(err))
			}
		}()

		ctx, span := otel.Tracer("hazyerr/cmd").Start(cmd.Context(), "cmd.invoke")
		span.SetAttributes(attribute.String("target", name))
		defer span.End()

		res, invokeErr := app.Invoker.Invoke(ctx, name, callArgs...)

		output := map[string]any{
			"target":   name,
			"module":   target.Module,
			"args":     raw,
			"outcome":  res.Outcome,
			"duration": res.Duration.String(),
			"outputs":  res.Outputs,
		}
		if id, ok := hzlog.TraceID(ctx); ok {
			output["trace_id"] = id
		}
		if invokeErr != nil {
			output["error"] = invokeErr.Error()
			output["category"] = hazyerr.CategoryOf(invokeErr).String()
		}
		if dump {
			output["dump"] = spew.Sdump(res.Outputs)
		}

		if err := util.WriteJsonTo(output, cmd.OutOrStdout()); err != nil {
			return err
		}

		return invokeErr
	},
}

func init() {
	InvokeCmd.Flags().BoolVar(&dump, "dump", false, "adds a go-spew dump of the outputs")
}
