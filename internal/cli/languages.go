package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pkgscout/pkgscout/pkg/deps/languages"
)

var (
	langNameStyle  = lipgloss.NewStyle().Bold(true)
	langAliasStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported language ecosystems",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, lang := range languages.All() {
				fmt.Printf("%s  %s %s\n",
					langNameStyle.Render(fmt.Sprintf("%-8s", lang.Name)),
					lang.Registry,
					langAliasStyle.Render("("+strings.Join(lang.Aliases, ", ")+")"),
				)
			}
			return nil
		},
	}
}
