package cmd

import (
	"github.com/spf13/cobra"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
)

func newTitleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "title <release-url>",
		Short:   "Extracts one title starting from its release page",
		Example: "  boxoffice title https://www.boxofficemojo.com/release/rl3059975681/",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := boxoffice.NewSourceRequest(args[0])
			if err != nil {
				return err
			}
			return runAndRender(cmd, opts, req)
		},
	}
}
