package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkgscout/pkgscout/pkg/report"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List report formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range report.Formats() {
				fmt.Println(name)
			}
			return nil
		},
	}
}
