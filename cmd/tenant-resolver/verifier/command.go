package verifier

import (
	"github.com/spf13/cobra"

	"github.com/SilviuMajor/total-dash-sub001/internal/business"
	"github.com/SilviuMajor/total-dash-sub001/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"verifier",
		"Tenant Resolver domain verification job",
		"Periodically checks the DNS TXT records of pending whitelabel domains and marks the matching ones as verified.",
		buildInfo,
		cmdutils.RunAsService,
		business.VerifierMain,
	)
}
