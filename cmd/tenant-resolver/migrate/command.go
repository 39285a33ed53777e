package migrate

import (
	"github.com/spf13/cobra"

	"github.com/SilviuMajor/total-dash-sub001/internal/business"
	"github.com/SilviuMajor/total-dash-sub001/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"migrate",
		"Tenant Resolver migrations",
		"Applies the agency directory schema migrations.",
		buildInfo,
		cmdutils.RunAsJob,
		business.MigrateMain,
	)
}
