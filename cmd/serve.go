package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/boxoffice-crawler/internal/app"
	"github.com/JakeFAU/boxoffice-crawler/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves extraction requests over HTTP",
		Long: `Starts the HTTP API on server.port. Requests run one at a time and
share the page cache with the CLI commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			defer appInstance.Close()
			a, ok := appInstance.(*app.App)
			if !ok {
				return errors.New("serve requires the full application container")
			}
			return server.New(a).Run(cmd.Context())
		},
	}
}
