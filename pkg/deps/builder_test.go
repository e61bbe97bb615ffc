package deps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakePackage struct {
	version string
	deps    []Dependency
	err     error
	depsErr error
}

type fakeProvider struct {
	packages     map[string]fakePackage
	resolveCalls map[string]int
}

func newFakeProvider(packages map[string]fakePackage) *fakeProvider {
	return &fakeProvider{packages: packages, resolveCalls: make(map[string]int)}
}

func (p *fakeProvider) Name() string     { return "fake" }
func (p *fakeProvider) Registry() string { return "fake.io" }

func (p *fakeProvider) NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

func (p *fakeProvider) AlternativeNames(name string) []string { return nil }
func (p *fakeProvider) Provides(name string) string           { return "fake(" + name + ")" }

func (p *fakeProvider) Resolve(ctx context.Context, name, version string, refresh bool) (*PackageInfo, error) {
	p.resolveCalls[name]++
	pkg, ok := p.packages[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if pkg.err != nil {
		return nil, pkg.err
	}
	return &PackageInfo{Name: name, Version: pkg.version, License: "MIT"}, nil
}

func (p *fakeProvider) Dependencies(ctx context.Context, name, version string, refresh bool) ([]Dependency, error) {
	pkg, ok := p.packages[name]
	if !ok {
		return nil, &NotFoundError{Name: name, Version: version}
	}
	if pkg.depsErr != nil {
		return nil, pkg.depsErr
	}
	return pkg.deps, nil
}

type fakeChecker struct {
	packaged map[string]bool // keyed by provides pattern
	errFor   map[string]error
	calls    int
}

func (c *fakeChecker) Check(ctx context.Context, primary string, alternatives []string) (Verdict, error) {
	c.calls++
	if err, ok := c.errFor[primary]; ok {
		return Verdict{}, err
	}
	for _, pattern := range append([]string{primary}, alternatives...) {
		if c.packaged[pattern] {
			return Verdict{Status: StatusPackaged, Versions: []string{"1.0.0"}}, nil
		}
	}
	return Verdict{Status: StatusMissing}, nil
}

func edge(name string) Dependency { return Dependency{Name: name, Requirement: "*"} }

func TestBuild_Leaf(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"solo": {version: "1.2.3"},
	})
	c := &fakeChecker{packaged: map[string]bool{"fake(solo)": true}}

	root, err := Build(context.Background(), p, c, "solo", "", Config{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if root.Name != "solo" || root.Version != "1.2.3" {
		t.Errorf("got %s@%s", root.Name, root.Version)
	}
	if root.Verdict.Status != StatusPackaged {
		t.Errorf("got status %s", root.Verdict.Status)
	}
	if len(root.Children) != 0 || root.Truncated {
		t.Errorf("leaf has children=%d truncated=%v", len(root.Children), root.Truncated)
	}
}

func TestBuild_DiamondExpandedOnce(t *testing.T) {
	// a -> b, c; both b and c -> d.
	p := newFakeProvider(map[string]fakePackage{
		"a": {version: "1.0.0", deps: []Dependency{edge("b"), edge("c")}},
		"b": {version: "1.0.0", deps: []Dependency{edge("d")}},
		"c": {version: "1.0.0", deps: []Dependency{edge("d")}},
		"d": {version: "1.0.0"},
	})
	c := &fakeChecker{packaged: map[string]bool{
		"fake(a)": true, "fake(b)": true, "fake(c)": true, "fake(d)": true,
	}}

	root, err := Build(context.Background(), p, c, "a", "", Config{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if p.resolveCalls["d"] != 1 {
		t.Errorf("d resolved %d times, want 1", p.resolveCalls["d"])
	}

	second := root.Children[1].Children[0]
	if !second.CycleRef {
		t.Error("second occurrence of d is not a back-reference")
	}
	if second.Verdict.Status != StatusPackaged {
		t.Errorf("back-reference lost verdict: %s", second.Verdict.Status)
	}

	s := Summarize(root)
	if s.TotalChecked != 4 {
		t.Errorf("total_checked = %d, want 4", s.TotalChecked)
	}
}

func TestBuild_CycleTerminates(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"a": {version: "1.0.0", deps: []Dependency{edge("b")}},
		"b": {version: "1.0.0", deps: []Dependency{edge("a")}},
	})
	c := &fakeChecker{packaged: map[string]bool{"fake(a)": true, "fake(b)": true}}

	root, err := Build(context.Background(), p, c, "a", "", Config{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	back := root.Children[0].Children[0]
	if back.Name != "a" || !back.CycleRef {
		t.Errorf("got %+v, want back-reference to a", back)
	}
	if back.Verdict.Status != StatusPackaged {
		t.Errorf("back-reference verdict = %s", back.Verdict.Status)
	}
	if s := Summarize(root); s.TotalChecked != 2 {
		t.Errorf("total_checked = %d, want 2", s.TotalChecked)
	}
}

func TestBuild_SelfDependency(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"a": {version: "1.0.0", deps: []Dependency{edge("a")}},
	})
	c := &fakeChecker{packaged: map[string]bool{"fake(a)": true}}

	root, err := Build(context.Background(), p, c, "a", "", Config{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(root.Children) != 1 || !root.Children[0].CycleRef {
		t.Errorf("got %+v", root.Children)
	}
}

func TestBuild_DepthLimit(t *testing.T) {
	// Chain a -> b -> c -> d.
	p := newFakeProvider(map[string]fakePackage{
		"a": {version: "1.0.0", deps: []Dependency{edge("b")}},
		"b": {version: "1.0.0", deps: []Dependency{edge("c")}},
		"c": {version: "1.0.0", deps: []Dependency{edge("d")}},
		"d": {version: "1.0.0"},
	})
	c := &fakeChecker{packaged: map[string]bool{}}

	root, err := Build(context.Background(), p, c, "a", "", Config{MaxDepth: 2})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	bNode := root.Children[0]
	cNode := bNode.Children[0]
	if !cNode.Truncated {
		t.Error("node at max depth with remaining edges not marked truncated")
	}
	if len(cNode.Children) != 0 {
		t.Errorf("truncated node has %d children", len(cNode.Children))
	}
	// c still got a verdict even though its subtree was cut.
	if cNode.Verdict.Status != StatusMissing {
		t.Errorf("truncated node verdict = %s", cNode.Verdict.Status)
	}
	if bNode.Truncated {
		t.Error("node below the limit marked truncated")
	}
}

func TestBuild_OptionalPolicy(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"a":   {version: "1.0.0", deps: []Dependency{edge("b"), {Name: "opt", Optional: true}}},
		"b":   {version: "1.0.0"},
		"opt": {version: "1.0.0"},
	})
	c := &fakeChecker{packaged: map[string]bool{}}

	root, err := Build(context.Background(), p, c, "a", "", Config{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("optional edge expanded by default: %d children", len(root.Children))
	}

	root, err = Build(context.Background(), newFakeProvider(p.packages), c, "a", "", Config{IncludeOptional: true})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(root.Children))
	}
	if !root.Children[1].Optional {
		t.Error("optional edge lost its flag")
	}
}

func TestBuild_NonRuntimeKindsSkipped(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"a": {version: "1.0.0", deps: []Dependency{
			edge("b"),
			{Name: "criterion", Kind: KindDev},
			{Name: "cc", Kind: KindBuild},
		}},
		"b": {version: "1.0.0"},
	})
	c := &fakeChecker{packaged: map[string]bool{}}

	root, err := Build(context.Background(), p, c, "a", "", Config{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(root.Children) != 1 || root.Children[0].Name != "b" {
		t.Errorf("got %+v", root.Children)
	}
}

func TestBuild_ExcludeGlobs(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"a": {version: "1.0.0", deps: []Dependency{edge("b"), edge("windows-sys"), edge("winapi")}},
		"b": {version: "1.0.0"},
	})
	c := &fakeChecker{packaged: map[string]bool{}}

	root, err := Build(context.Background(), p, c, "a", "", Config{
		Exclude: []string{"windows-*", "winapi"},
	})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(root.Children) != 1 || root.Children[0].Name != "b" {
		t.Errorf("got %+v", root.Children)
	}
	if p.resolveCalls["windows-sys"] != 0 {
		t.Error("excluded dependency was resolved")
	}
}

func TestBuild_RootNotFound(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{})
	c := &fakeChecker{}

	_, err := Build(context.Background(), p, c, "nope", "", Config{})
	if err == nil {
		t.Fatal("Build() succeeded for unknown root")
	}
	var be *BuildError
	if !errors.As(err, &be) || be.Root != "nope" {
		t.Errorf("got %v, want BuildError for nope", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound in chain", err)
	}
}

func TestBuild_DependencyNotFoundDegrades(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"a": {version: "1.0.0", deps: []Dependency{edge("ghost"), edge("b")}},
		"b": {version: "1.0.0"},
	})
	c := &fakeChecker{packaged: map[string]bool{"fake(a)": true, "fake(b)": true}}

	root, err := Build(context.Background(), p, c, "a", "", Config{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	ghost := root.Children[0]
	if !ghost.NotFound || ghost.Verdict.Status != StatusMissing {
		t.Errorf("got %+v, want not-found missing node", ghost)
	}
	// The sibling after the failure is still expanded.
	if root.Children[1].Name != "b" || root.Children[1].Verdict.Status != StatusPackaged {
		t.Errorf("sibling not expanded: %+v", root.Children[1])
	}
}

func TestBuild_TransientFailureIsolated(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"a":     {version: "1.0.0", deps: []Dependency{edge("flaky"), edge("b")}},
		"flaky": {version: "1.0.0", err: fmt.Errorf("%w: GET /flaky: 502", ErrTransient)},
		"b":     {version: "1.0.0"},
	})
	c := &fakeChecker{packaged: map[string]bool{"fake(a)": true, "fake(b)": true}}

	root, err := Build(context.Background(), p, c, "a", "", Config{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	flaky := root.Children[0]
	if flaky.Verdict.Status != StatusUnknown || flaky.NotFound {
		t.Errorf("got %+v, want unknown verdict", flaky)
	}
	if len(flaky.Children) != 0 {
		t.Error("unresolvable node has children")
	}

	s := Summarize(root)
	if s.Unknown != 1 || s.Packaged != 2 {
		t.Errorf("summary = %+v", s)
	}
}

func TestBuild_CheckerFailureDegrades(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"a": {version: "1.0.0", deps: []Dependency{edge("b")}},
		"b": {version: "1.0.0", deps: []Dependency{edge("c")}},
		"c": {version: "1.0.0"},
	})
	c := &fakeChecker{
		packaged: map[string]bool{"fake(a)": true, "fake(c)": true},
		errFor:   map[string]error{"fake(b)": errors.New("repoquery exploded")},
	}

	root, err := Build(context.Background(), p, c, "a", "", Config{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	bNode := root.Children[0]
	if bNode.Verdict.Status != StatusUnknown {
		t.Errorf("got %s, want unknown", bNode.Verdict.Status)
	}
	// Children of an uncheckable node are not expanded.
	if len(bNode.Children) != 0 {
		t.Errorf("got %d children under unknown node", len(bNode.Children))
	}
}

func TestBuild_RootCheckerFailureFatal(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{"a": {version: "1.0.0"}})
	c := &fakeChecker{errFor: map[string]error{"fake(a)": errors.New("dnf not installed")}}

	_, err := Build(context.Background(), p, c, "a", "", Config{})
	if err == nil {
		t.Fatal("Build() succeeded with failing checker at root")
	}
}

func TestBuild_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newFakeProvider(map[string]fakePackage{"a": {version: "1.0.0"}})
	c := &fakeChecker{}

	_, err := Build(ctx, p, c, "a", "", Config{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestBuild_NameNormalization(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"typing-extensions": {version: "4.8.0"},
	})
	c := &fakeChecker{packaged: map[string]bool{"fake(typing-extensions)": true}}

	root, err := Build(context.Background(), p, c, "Typing_Extensions", "", Config{})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if root.Name != "typing-extensions" {
		t.Errorf("got %q", root.Name)
	}
	if root.Verdict.Status != StatusPackaged {
		t.Errorf("got %s", root.Verdict.Status)
	}
}

type recordingObserver struct {
	visits   []string
	verdicts map[string]Status
}

func (o *recordingObserver) OnVisit(name string, depth int) { o.visits = append(o.visits, name) }
func (o *recordingObserver) OnDiscovered(int)               {}
func (o *recordingObserver) OnVerdict(name string, s Status) {
	o.verdicts[name] = s
}

func TestBuild_ObserverCallbacks(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"a": {version: "1.0.0", deps: []Dependency{edge("b")}},
		"b": {version: "1.0.0"},
	})
	c := &fakeChecker{packaged: map[string]bool{"fake(a)": true}}
	obs := &recordingObserver{verdicts: make(map[string]Status)}

	if _, err := Build(context.Background(), p, c, "a", "", Config{Observer: obs}); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(obs.visits) != 2 || obs.visits[0] != "a" || obs.visits[1] != "b" {
		t.Errorf("visits = %v", obs.visits)
	}
	if obs.verdicts["a"] != StatusPackaged || obs.verdicts["b"] != StatusMissing {
		t.Errorf("verdicts = %v", obs.verdicts)
	}
}

func TestSummarize(t *testing.T) {
	p := newFakeProvider(map[string]fakePackage{
		"a":   {version: "1.0.0", deps: []Dependency{edge("b"), {Name: "opt", Optional: true}, edge("gone")}},
		"b":   {version: "1.0.0"},
		"opt": {version: "1.0.0"},
	})
	c := &fakeChecker{packaged: map[string]bool{"fake(a)": true, "fake(b)": true}}

	root, err := Build(context.Background(), p, c, "a", "", Config{IncludeOptional: true})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	s := Summarize(root)
	if s.TotalChecked != 4 {
		t.Errorf("total_checked = %d, want 4", s.TotalChecked)
	}
	if s.Packaged != 2 || s.Missing != 2 || s.Unknown != 0 {
		t.Errorf("summary = %+v", s)
	}
	if s.OptionalTotal != 1 || s.OptionalMissing != 1 {
		t.Errorf("optional counts = %+v", s)
	}
	if len(s.MissingNames) != 2 || s.MissingNames[0] != "opt" || s.MissingNames[1] != "gone" {
		t.Errorf("missing_names = %v", s.MissingNames)
	}
	if s.TotalChecked != s.Packaged+s.Missing+s.Unknown {
		t.Error("counts do not partition total")
	}
}
