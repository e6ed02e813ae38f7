package cmd

import (
	"github.com/spf13/cobra"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
)

func newWeekendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "weekend <YYYYWnn>",
		Short:   "Extracts the top releases for one weekend",
		Example: "  boxoffice weekend 2019W17 --format json",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := boxoffice.NewWeekendRequest(args[0])
			if err != nil {
				return err
			}
			return runAndRender(cmd, opts, req)
		},
	}
}
