package directory

import (
	"github.com/spf13/cobra"

	"github.com/SilviuMajor/total-dash-sub001/internal/business"
	"github.com/SilviuMajor/total-dash-sub001/internal/cmdutils"
)

func CreateAgencyCmd(buildInfo string) *cobra.Command {
	opts := &business.AgencyOptions{}

	cmd := cmdutils.CobraCommand(
		"create-agency",
		"Adds an agency to the directory",
		"Adds an agency with its branding to the directory.",
		buildInfo,
		cmdutils.RunAsJob,
		business.CreateAgencyMain(opts),
	)

	cmd.Flags().StringVar(&opts.Slug, "slug", "", "agency slug, used as the first path segment")
	cmd.Flags().StringVar(&opts.Name, "name", "", "agency display name")
	cmd.Flags().StringVar(&opts.LogoURL, "logo-url", "", "logo shown on whitelabel domains")
	cmd.Flags().StringVar(&opts.PrimaryColor, "primary-color", "", "primary brand color")
	cmd.Flags().StringVar(&opts.SecondaryColor, "secondary-color", "", "secondary brand color")
	_ = cmd.MarkFlagRequired("slug")

	return cmd
}

func RegisterDomainCmd(buildInfo string) *cobra.Command {
	opts := &business.RegisterDomainOptions{}

	cmd := cmdutils.CobraCommand(
		"register-domain",
		"Registers a whitelabel domain for an agency",
		"Registers an unverified whitelabel domain and prints the DNS TXT record the verifier looks for.",
		buildInfo,
		cmdutils.RunAsJob,
		business.RegisterDomainMain(opts),
	)

	cmd.Flags().StringVar(&opts.AgencySlug, "agency", "", "slug of the agency owning the domain")
	cmd.Flags().StringVar(&opts.Domain, "domain", "", "custom domain, e.g. fiveleaf.co.uk")
	cmd.Flags().StringVar(&opts.Subdomain, "subdomain", "", "optional subdomain serving the dashboard, e.g. dashboard")
	_ = cmd.MarkFlagRequired("agency")
	_ = cmd.MarkFlagRequired("domain")

	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		opts.Out = cmd.OutOrStdout()
	}

	return cmd
}
