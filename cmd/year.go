package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
)

func newYearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "year <YYYY>",
		Short:   "Extracts the top domestic releases for one calendar year",
		Example: "  boxoffice year 2019",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: year %q", boxoffice.ErrInvalidRequest, args[0])
			}
			req, err := boxoffice.NewYearRequest(year)
			if err != nil {
				return err
			}
			return runAndRender(cmd, opts, req)
		},
	}
}
