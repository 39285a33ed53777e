package apiserver

import (
	"github.com/spf13/cobra"

	"github.com/SilviuMajor/total-dash-sub001/internal/business"
	"github.com/SilviuMajor/total-dash-sub001/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"api-server",
		"Tenant Resolver API server",
		"Serves the domain context API over HTTP and the health service over gRPC.",
		buildInfo,
		cmdutils.RunAsService,
		business.Main,
	)
}
