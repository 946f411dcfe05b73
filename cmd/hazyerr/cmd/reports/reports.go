package reports

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/HazyCorp/hazyerr/cmd/hazyerr/cmd/globflags"
	"github.com/HazyCorp/hazyerr/internal/cmdutil"
	"github.com/HazyCorp/hazyerr/internal/util"
	"github.com/HazyCorp/hazyerr/pkg/common/hzlog"
)

var (
	module string
	limit  int
)

var ReportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "prints recently stored internal error reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.Start(cmd.Context(), globflags.ConfigPath, globflags.Verbose)
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Stop(context.Background()); err != nil {
				slog.Warn("cannot stop the application", hzlog.Error(err))
			}
		}()

		if app.Reports == nil {
			return errors.New("redis is not configured, there are no reports")
		}

		reports, err := app.Reports.Recent(cmd.Context(), module, limit)
		if err != nil {
			return errors.Wrap(err, "cannot get recent reports")
		}

		return util.WriteJsonTo(reports, cmd.OutOrStdout())
	},
}

func init() {
	ReportsCmd.Flags().StringVarP(&module, "module", "m", "", "shows reports of this module only")
	ReportsCmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of reports")
}
