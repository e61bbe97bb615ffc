package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/pkgscout/pkgscout/pkg/deps"
)

// TemplateReporter renders a report through a user-provided text/template
// file, so teams can match their tracker's issue format without patching the
// tool. Only a fixed, documented variable set is exposed; unknown variables
// fail the render rather than expanding to nothing.
//
// Available variables:
//
//	{{.RootPackage}} {{.Language}} {{.Registry}} {{.Version}}
//	{{.Timestamp}} {{.MaxDepth}}
//	{{.TotalDependencies}} {{.PackagedCount}} {{.MissingCount}} {{.UnknownCount}}
//	{{.IncludeOptional}} {{.OptionalTotal}} {{.OptionalPackaged}} {{.OptionalMissing}}
//	{{.MissingPackages}} {{.PackagedPackages}}
//	{{.MissingOnly}}
type TemplateReporter struct {
	// Path is the template file. Required.
	Path string
}

func (r *TemplateReporter) Format() string { return "template" }

func (r *TemplateReporter) Render(w io.Writer, d Data) error {
	if r.Path == "" {
		return errors.New("the template format needs a template file (--template)")
	}

	tpl, err := template.New(filepath.Base(r.Path)).Option("missingkey=error").ParseFiles(r.Path)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}
	if err := tpl.Execute(w, templateContext(d)); err != nil {
		return fmt.Errorf("rendering template: %w", err)
	}
	return nil
}

// templateContext builds the restricted variable set. Lists are sorted for
// stable output regardless of traversal order.
func templateContext(d Data) map[string]any {
	missing := append([]string(nil), d.Summary.MissingNames...)
	sort.Strings(missing)

	return map[string]any{
		"RootPackage": d.Root.Name,
		"Language":    d.Language,
		"Registry":    d.Registry,
		"Version":     d.Root.Version,
		"Timestamp":   d.GeneratedAt.Format("2006-01-02 15:04:05"),
		"MaxDepth":    d.MaxDepth,

		"TotalDependencies": d.Summary.TotalChecked,
		"PackagedCount":     d.Summary.Packaged,
		"MissingCount":      d.Summary.Missing,
		"UnknownCount":      d.Summary.Unknown,

		"IncludeOptional":  d.IncludeOptional,
		"OptionalTotal":    d.Summary.OptionalTotal,
		"OptionalPackaged": d.Summary.OptionalPackaged,
		"OptionalMissing":  d.Summary.OptionalMissing,

		"MissingPackages":  missing,
		"PackagedPackages": packagedNames(d.Root),

		"MissingOnly": d.MissingOnly,
	}
}

// packagedNames collects the distinct packaged package names, sorted.
func packagedNames(root *deps.Node) []string {
	seen := make(map[string]struct{})
	var names []string
	root.Walk(func(n *deps.Node) {
		if n.CycleRef || n.Verdict.Status != deps.StatusPackaged {
			return
		}
		if _, dup := seen[n.Name]; dup {
			return
		}
		seen[n.Name] = struct{}{}
		names = append(names, n.Name)
	})
	sort.Strings(names)
	return names
}
