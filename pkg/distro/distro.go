// Package distro answers availability queries against a Linux
// distribution's package index via dnf repoquery.
//
// Queries use virtual provides patterns such as "crate(serde)" or
// "python3dist(requests)". Answers change when the distribution updates its
// repositories, so they are cached with a shorter lifetime than registry
// metadata.
package distro

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/pkgscout/pkgscout/pkg/cache"
	"github.com/pkgscout/pkgscout/pkg/deps"
)

// Namespace is the cache namespace used by the checker.
const Namespace = "distro"

// DefaultTTL is how long distribution answers stay fresh. Repositories
// update daily, so a day keeps answers honest without hammering repoquery.
const DefaultTTL = 24 * time.Hour

// ErrUnavailable means no supported distribution query tool is installed.
var ErrUnavailable = errors.New("dnf not available")

// queryFormat keeps the output parseable without scraping package NEVRAs.
const queryFormat = "%{name}|%{version}\n"

// runner executes one repoquery invocation. Swappable for tests.
type runner func(ctx context.Context, args ...string) ([]byte, error)

// Checker implements [deps.AvailabilityChecker] over dnf repoquery.
type Checker struct {
	store cache.Cache
	ttl   time.Duration
	run   runner
	look  func() error

	// Refresh bypasses cached answers.
	Refresh bool
	// Release pins --releasever, e.g. "43" or "rawhide".
	Release string
	// Repos limits queries to the named repositories.
	Repos []string
	// Binary is the dnf executable, "dnf" unless overridden.
	Binary string

	lookOnce sync.Once
	lookErr  error
}

// NewChecker creates a checker caching answers in store. A non-positive ttl
// means DefaultTTL; a nil store disables caching.
func NewChecker(store cache.Cache, ttl time.Duration) *Checker {
	if store == nil {
		store = cache.NullCache{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Checker{store: store, ttl: ttl, Binary: "dnf"}
	c.run = c.dnfRun
	c.look = c.lookDNF
	return c
}

func (c *Checker) dnfRun(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, c.Binary, args...).Output()
}

func (c *Checker) lookDNF() error {
	if _, err := exec.LookPath(c.Binary); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// answer is the cached envelope for one provides pattern.
type answer struct {
	Found    bool     `json:"found"`
	Packages []string `json:"packages,omitempty"`
	Versions []string `json:"versions,omitempty"`
}

// Check queries the primary pattern, then each alternative, stopping at the
// first match. Returns [ErrUnavailable] when dnf is not installed.
func (c *Checker) Check(ctx context.Context, primary string, alternatives []string) (deps.Verdict, error) {
	c.lookOnce.Do(func() {
		if c.look != nil {
			c.lookErr = c.look()
		}
	})
	if c.lookErr != nil {
		return deps.Verdict{}, c.lookErr
	}

	for _, pattern := range append([]string{primary}, alternatives...) {
		ans, err := c.query(ctx, pattern)
		if err != nil {
			return deps.Verdict{}, err
		}
		if ans.Found {
			return deps.Verdict{
				Status:   deps.StatusPackaged,
				Versions: ans.Versions,
				Packages: ans.Packages,
			}, nil
		}
	}
	return deps.Verdict{Status: deps.StatusMissing}, nil
}

func (c *Checker) query(ctx context.Context, pattern string) (answer, error) {
	var ans answer
	if !c.Refresh {
		if ok, err := c.store.Get(ctx, Namespace, pattern, &ans); err == nil && ok {
			return ans, nil
		}
	}

	out, err := c.run(ctx, c.args("--queryformat", queryFormat, "--whatprovides", pattern)...)
	if err != nil {
		if ctx.Err() != nil {
			return answer{}, ctx.Err()
		}
		// repoquery exits non-zero for unknown patterns on some dnf
		// versions; that is a negative answer, not a failure.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			ans = answer{}
		} else {
			return answer{}, fmt.Errorf("repoquery %s: %w", pattern, err)
		}
	} else {
		ans = parseOutput(out)
	}

	if ans.Found {
		if vers := c.refineVersions(ctx, pattern, ans.Packages); len(vers) > 0 {
			ans.Versions = vers
		}
		// Degenerate repoquery output can carry empty version fields; a
		// packaged answer always names at least one version.
		if len(ans.Versions) == 0 {
			ans.Versions = []string{"unknown"}
		}
	}

	// Cache write failures are not worth failing the query over.
	_ = c.store.Set(ctx, Namespace, pattern, ans, c.ttl)
	return ans, nil
}

// args assembles a repoquery invocation with release and repo pinning.
func (c *Checker) args(extra ...string) []string {
	args := []string{"repoquery", "--quiet"}
	if c.Release != "" {
		args = append(args, "--releasever", c.Release)
	}
	for _, repo := range c.Repos {
		args = append(args, "--repo", repo)
	}
	return append(args, extra...)
}

// refineVersions asks the matched packages what exact versions of the
// provides pattern they carry, e.g. "crate(serde) = 1.0.219". The package
// version is a fine fallback when nothing parses.
func (c *Checker) refineVersions(ctx context.Context, pattern string, packages []string) []string {
	out, err := c.run(ctx, c.args(append([]string{"--provides"}, packages...)...)...)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var versions []string
	for _, line := range strings.Split(string(out), "\n") {
		left, right, ok := strings.Cut(strings.TrimSpace(line), " = ")
		if !ok || left != pattern {
			continue
		}
		if _, dup := seen[right]; dup {
			continue
		}
		seen[right] = struct{}{}
		versions = append(versions, right)
	}
	sortVersions(versions)
	return versions
}

func parseOutput(out []byte) answer {
	pkgSet := make(map[string]struct{})
	verSet := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		name, version, ok := strings.Cut(strings.TrimSpace(line), "|")
		if !ok || name == "" {
			continue
		}
		pkgSet[name] = struct{}{}
		if version != "" {
			verSet[version] = struct{}{}
		}
	}
	if len(pkgSet) == 0 {
		return answer{}
	}

	ans := answer{Found: true}
	for p := range pkgSet {
		ans.Packages = append(ans.Packages, p)
	}
	sort.Strings(ans.Packages)
	for v := range verSet {
		ans.Versions = append(ans.Versions, v)
	}
	sortVersions(ans.Versions)
	return ans
}

// sortVersions orders ascending, semver-aware when every entry parses and
// lexical otherwise.
func sortVersions(versions []string) {
	parsed := make([]*semver.Version, len(versions))
	for i, v := range versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			sort.Strings(versions)
			return
		}
		parsed[i] = sv
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].LessThan(parsed[j]) })
	for i, sv := range parsed {
		versions[i] = sv.Original()
	}
}
