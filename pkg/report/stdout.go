package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pkgscout/pkgscout/pkg/deps"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	packagedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	unknownStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// StdoutReporter renders a colored tree for terminals.
type StdoutReporter struct{}

func (r *StdoutReporter) Format() string { return "stdout" }

func (r *StdoutReporter) Render(w io.Writer, d Data) error {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%s)", d.Root.Name, d.Registry)))
	if d.MissingOnly {
		renderMissing(w, d.Summary)
	} else if err := renderTree(w, d.Root, ""); err != nil {
		return err
	}
	if len(d.Features) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Features:"))
		for _, f := range d.Features {
			fmt.Fprintf(w, "  %s%s\n", f.Name, dimStyle.Render(featureDeps(f.Dependencies)))
		}
	}
	if len(d.AuxDeps) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Dev/build dependencies:"))
		for _, a := range d.AuxDeps {
			fmt.Fprintf(w, "  %s %s %s\n", a.Name, dimStyle.Render("("+string(a.Kind)+")"), statusWordStyled(a.Status))
		}
	}
	fmt.Fprintln(w)
	renderSummary(w, d.Summary)
	return nil
}

func featureDeps(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return " -> " + strings.Join(names, ", ")
}

func renderMissing(w io.Writer, s deps.Summary) {
	if len(s.MissingNames) == 0 {
		fmt.Fprintln(w, packagedStyle.Render("Nothing missing."))
		return
	}
	for _, name := range s.MissingNames {
		fmt.Fprintf(w, "%s %s\n", missingStyle.Render("✗"), name)
	}
}

func statusWordStyled(s deps.Status) string {
	switch s {
	case deps.StatusPackaged:
		return packagedStyle.Render("packaged")
	case deps.StatusMissing:
		return missingStyle.Render("missing")
	default:
		return unknownStyle.Render("unknown")
	}
}

func renderTree(w io.Writer, n *deps.Node, prefix string) error {
	for i, child := range n.Children {
		last := i == len(n.Children)-1
		branch, cont := "├── ", "│   "
		if last {
			branch, cont = "└── ", "    "
		}
		if _, err := fmt.Fprintln(w, prefix+branch+nodeLine(child)); err != nil {
			return err
		}
		if err := renderTree(w, child, prefix+cont); err != nil {
			return err
		}
	}
	return nil
}

func nodeLine(n *deps.Node) string {
	label := n.Name
	if n.Version != "" {
		label += dimStyle.Render(" v" + n.Version)
	}
	label += " " + statusBadge(n)
	switch {
	case n.CycleRef:
		label += dimStyle.Render(" (seen above)")
	case n.Truncated:
		label += dimStyle.Render(" (depth limit)")
	}
	if n.Optional {
		label += dimStyle.Render(" [optional]")
	}
	return label
}

func statusBadge(n *deps.Node) string {
	switch n.Verdict.Status {
	case deps.StatusPackaged:
		badge := "✓ packaged"
		if len(n.Verdict.Packages) > 0 {
			badge += " as " + strings.Join(n.Verdict.Packages, ", ")
		}
		return packagedStyle.Render(badge)
	case deps.StatusMissing:
		if n.NotFound {
			return missingStyle.Render("✗ not on registry")
		}
		return missingStyle.Render("✗ missing")
	default:
		return unknownStyle.Render("? unknown")
	}
}

func renderSummary(w io.Writer, s deps.Summary) {
	fmt.Fprintf(w, "%s %d checked: %s, %s, %s\n",
		headerStyle.Render("Summary:"),
		s.TotalChecked,
		packagedStyle.Render(fmt.Sprintf("%d packaged", s.Packaged)),
		missingStyle.Render(fmt.Sprintf("%d missing", s.Missing)),
		unknownStyle.Render(fmt.Sprintf("%d unknown", s.Unknown)),
	)
	if len(s.MissingNames) > 0 {
		fmt.Fprintf(w, "Missing: %s\n", strings.Join(s.MissingNames, ", "))
	}
}
