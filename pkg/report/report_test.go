package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pkgscout/pkgscout/pkg/deps"
)

func fixture() Data {
	shared := &deps.Node{
		Name:    "log",
		Version: "0.4.27",
		Verdict: deps.Verdict{Status: deps.StatusPackaged, Packages: []string{"rust-log-devel"}, Versions: []string{"0.4.27"}},
	}
	root := &deps.Node{
		Name:    "demo",
		Version: "1.0.0",
		Verdict: deps.Verdict{Status: deps.StatusPackaged, Packages: []string{"rust-demo-devel"}},
		Children: []*deps.Node{
			shared,
			{
				Name:    "ghost",
				Verdict: deps.Verdict{Status: deps.StatusMissing},
			},
			{
				Name:    "helper",
				Version: "2.0.0",
				Verdict: deps.Verdict{Status: deps.StatusMissing},
				Children: []*deps.Node{
					{Name: "log", Version: "0.4.27", Verdict: shared.Verdict, CycleRef: true},
				},
			},
		},
	}
	return Data{
		Language:    "rust",
		Registry:    "crates.io",
		Root:        root,
		Summary:     deps.Summarize(root),
		GeneratedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		Duration:    2 * time.Second,
	}
}

func TestRegistry(t *testing.T) {
	formats := Formats()
	want := []string{"dot", "json", "markdown", "stdout", "svg", "template"}
	if len(formats) != len(want) {
		t.Fatalf("got %v, want %v", formats, want)
	}
	for i := range want {
		if formats[i] != want[i] {
			t.Fatalf("got %v, want %v", formats, want)
		}
	}

	for _, name := range want {
		r, err := Get(name)
		if err != nil {
			t.Errorf("Get(%s) failed: %v", name, err)
			continue
		}
		if r.Format() != name {
			t.Errorf("Get(%s).Format() = %s", name, r.Format())
		}
	}

	if _, err := Get("yaml"); err == nil {
		t.Error("Get(yaml) succeeded")
	}

	for alias, canonical := range map[string]string{"md": "markdown", "tree": "stdout", "graphviz": "dot", "tpl": "template"} {
		r, err := Get(alias)
		if err != nil {
			t.Errorf("Get(%s) failed: %v", alias, err)
			continue
		}
		if r.Format() != canonical {
			t.Errorf("Get(%s) = %s, want %s", alias, r.Format(), canonical)
		}
	}
}

func TestStdoutReporter_MissingOnly(t *testing.T) {
	d := fixture()
	d.MissingOnly = true
	d.AuxDeps = []DepStatus{{Name: "criterion", Kind: deps.KindDev, Status: deps.StatusMissing}}

	var buf bytes.Buffer
	if err := (&StdoutReporter{}).Render(&buf, d); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "└──") {
		t.Error("missing-only output still renders the tree")
	}
	for _, want := range []string{"ghost", "helper", "criterion"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestStdoutReporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&StdoutReporter{}).Render(&buf, fixture()); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"demo", "log", "ghost", "helper", "4 checked", "seen above", "ghost"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONReporter{}).Render(&buf, fixture()); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	var decoded Data
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Root.Name != "demo" || decoded.Summary.TotalChecked != 4 {
		t.Errorf("round-trip lost data: %+v", decoded.Summary)
	}
}

func TestMarkdownReporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownReporter{}).Render(&buf, fixture()); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Packaging status: demo",
		"| Checked | 4 |",
		"## Missing packages",
		"- `ghost`",
		"(seen above)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestDotReporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&DotReporter{}).Render(&buf, fixture()); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "digraph dependencies {") {
		t.Errorf("not a digraph:\n%s", out)
	}
	// The shared node appears once; the back-reference becomes a dashed edge.
	if got := strings.Count(out, `label="log\n0.4.27"`); got != 1 {
		t.Errorf("shared node emitted %d times, want 1", got)
	}
	if !strings.Contains(out, "[style=dashed]") {
		t.Error("no dashed back-edge")
	}
	if got := strings.Count(out, "->"); got != 4 {
		t.Errorf("got %d edges, want 4", got)
	}
}
