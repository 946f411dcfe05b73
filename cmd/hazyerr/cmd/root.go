package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HazyCorp/hazyerr/cmd/hazyerr/cmd/globflags"
	"github.com/HazyCorp/hazyerr/cmd/hazyerr/cmd/invokecmd"
	"github.com/HazyCorp/hazyerr/cmd/hazyerr/cmd/list"
	"github.com/HazyCorp/hazyerr/cmd/hazyerr/cmd/reports"
	"github.com/HazyCorp/hazyerr/cmd/hazyerr/cmd/serve"
	"github.com/HazyCorp/hazyerr/internal/util"
)

var rootCmd = &cobra.Command{
	Use:              "hazyerr",
	Short:            "invokes registered targets and classifies their failures",
	Version:          "0.1.0",
	TraverseChildren: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cmd.ValidateFlagGroups(); err != nil {
			return err
		}
		if err := cmd.ValidateRequiredFlags(); err != nil {
			return err
		}

		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return nil
	},
}

func Execute() {
	ctx, cancel := util.CtxWithShutdown()
	defer cancel()

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.SilenceErrors = false
		cmd.SilenceUsage = false

		return err
	})

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "❌❌❌ Error occurred: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globflags.ConfigPath, "config", "c", "", "path to the yaml config, defaults are used when empty")
	rootCmd.PersistentFlags().BoolVar(&globflags.Verbose, "verbose", false, "log application lifecycle events")

	rootCmd.AddCommand(list.ListCmd)
	rootCmd.AddCommand(invokecmd.InvokeCmd)
	rootCmd.AddCommand(serve.ServeCmd)
	rootCmd.AddCommand(reports.ReportsCmd)
}
