package list

import (
	"github.com/spf13/cobra"

	"github.com/HazyCorp/hazyerr/internal/util"
	"github.com/HazyCorp/hazyerr/pkg/invoke"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "lists all registered targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return util.WriteJsonTo(invoke.DefaultRegistry.Targets(), cmd.OutOrStdout())
	},
}
