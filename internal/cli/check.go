package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkgscout/pkgscout/pkg/deps"
	"github.com/pkgscout/pkgscout/pkg/deps/languages"
	"github.com/pkgscout/pkgscout/pkg/distro"
	"github.com/pkgscout/pkgscout/pkg/report"
)

func newCheckCmd() *cobra.Command {
	var (
		lang         string
		version      string
		format       string
		output       string
		templateFile string
		release      string
		repos        []string
		exclude      []string
		maxDepth     int
		optional     bool
		missingOnly  bool
		noProgress   bool
		refresh      bool
	)

	cmd := &cobra.Command{
		Use:   "check <package>",
		Short: "Resolve a package's dependency tree and check distro availability",
		Example: `  pkgscout check serde --lang rust
  pkgscout check requests --lang python --report markdown
  pkgscout check tokio --lang rust --max-depth 3 --exclude 'windows-*'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if !cmd.Flags().Changed("max-depth") {
				maxDepth = a.cfg.Check.MaxDepth
			}
			if !cmd.Flags().Changed("report") {
				format = a.cfg.Check.Report
			}
			if !cmd.Flags().Changed("release") {
				release = a.cfg.Distro.Release
			}
			if !cmd.Flags().Changed("repos") {
				repos = a.cfg.Distro.Repos
			}

			reporter, err := report.Get(format)
			if err != nil {
				return err
			}
			if _, ok := reporter.(*report.TemplateReporter); ok {
				if templateFile == "" {
					return fmt.Errorf("the template format needs --template <file>")
				}
				reporter = &report.TemplateReporter{Path: templateFile}
			} else if templateFile != "" {
				return fmt.Errorf("--template only applies to --report template")
			}
			language, err := languages.Get(lang)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := a.cfg.OpenStore(ctx)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			defer store.Close()

			provider := language.NewProvider(store, time.Duration(a.cfg.Cache.RegistryTTL))
			checker := distro.NewChecker(store, time.Duration(a.cfg.Cache.DistroTTL))
			checker.Refresh = refresh
			checker.Release = release
			checker.Repos = repos
			if a.cfg.Distro.DNF != "" {
				checker.Binary = a.cfg.Distro.DNF
			}

			var observer *progressObserver
			buildCfg := deps.Config{
				MaxDepth:        maxDepth,
				IncludeOptional: optional,
				Exclude:         exclude,
				Refresh:         refresh,
				Logf:            a.log.Debugf,
			}
			if !noProgress {
				observer = newProgressObserver()
				buildCfg.Observer = observer
			}

			start := time.Now()
			root, err := deps.Build(ctx, provider, checker, args[0], version, buildCfg)
			observer.finish()
			if err != nil {
				return err
			}

			data := report.Data{
				Language:        language.Name,
				Registry:        language.Registry,
				Root:            root,
				Summary:         deps.Summarize(root),
				GeneratedAt:     time.Now().UTC(),
				Duration:        time.Since(start),
				MaxDepth:        maxDepth,
				IncludeOptional: optional,
				MissingOnly:     missingOnly,
				Release:         release,
				Repos:           repos,
			}
			data.Features, data.AuxDeps = rootDetails(ctx, a, provider, checker, root, refresh)

			out, closeOut, err := openOutput(output, format, root.Name, data.GeneratedAt)
			if err != nil {
				return err
			}
			defer closeOut()

			return reporter.Render(out, data)
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "language ecosystem (rust, python)")
	cmd.Flags().StringVar(&version, "version", "", "package version (default latest)")
	cmd.Flags().StringVarP(&format, "report", "r", "stdout", "report format (see 'pkgscout formats')")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringVar(&templateFile, "template", "", "template file for --report template")
	cmd.Flags().IntVar(&maxDepth, "max-depth", deps.DefaultMaxDepth, "maximum resolution depth")
	cmd.Flags().BoolVar(&optional, "optional", false, "also resolve optional dependencies")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "glob patterns of dependencies to skip")
	cmd.Flags().BoolVar(&missingOnly, "missing-only", false, "list only missing packages")
	cmd.Flags().StringVar(&release, "release", "", "distribution release to query (--releasever)")
	cmd.Flags().StringSliceVar(&repos, "repos", nil, "limit queries to these repositories")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress spinner")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached registry and repoquery answers")
	_ = cmd.MarkFlagRequired("lang")

	return cmd
}

// rootDetails gathers the root's feature flags and its dev/build dependency
// statuses. Both are best-effort extras; failures are logged and dropped.
func rootDetails(ctx context.Context, a *app, provider deps.Provider, checker deps.AvailabilityChecker, root *deps.Node, refresh bool) ([]deps.Feature, []report.DepStatus) {
	var features []deps.Feature
	if fp, ok := provider.(deps.FeatureProvider); ok {
		var err error
		if features, err = fp.Features(ctx, root.Name, root.Version, refresh); err != nil {
			a.log.Debug("fetching features", "package", root.Name, "err", err)
			features = nil
		}
	}

	edges, err := provider.Dependencies(ctx, root.Name, root.Version, refresh)
	if err != nil {
		a.log.Debug("fetching aux dependencies", "package", root.Name, "err", err)
		return features, nil
	}

	var aux []report.DepStatus
	for _, e := range edges {
		if e.Kind == deps.KindNormal || e.Kind == "" {
			continue
		}
		name := provider.NormalizeName(e.Name)
		status := deps.StatusUnknown
		if v, err := checker.Check(ctx, provider.Provides(name), nil); err == nil {
			status = v.Status
		}
		aux = append(aux, report.DepStatus{Name: name, Kind: e.Kind, Status: status})
	}
	return features, aux
}

// openOutput decides where the report goes. Markdown and SVG default to
// timestamped files; everything else defaults to stdout.
func openOutput(path, format, rootName string, ts time.Time) (io.Writer, func(), error) {
	if path == "" {
		switch format {
		case "markdown", "md", "template", "tpl":
			path = fmt.Sprintf("pkgscout_%s_%s.md", rootName, ts.Format("20060102-150405"))
		case "svg":
			path = fmt.Sprintf("pkgscout_%s_%s.svg", rootName, ts.Format("20060102-150405"))
		default:
			return os.Stdout, func() {}, nil
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintln(os.Stderr, "writing report to", path)
	return f, func() { _ = f.Close() }, nil
}
