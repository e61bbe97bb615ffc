package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/pkgscout/pkgscout/pkg/deps"
)

// progressObserver drives a stderr spinner from builder callbacks.
type progressObserver struct {
	bar        *progressbar.ProgressBar
	processed  int
	discovered int
}

func newProgressObserver() *progressObserver {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("resolving"),
		progressbar.OptionClearOnFinish(),
	)
	return &progressObserver{bar: bar}
}

func (p *progressObserver) OnVisit(name string, depth int) {
	p.processed++
	p.bar.Describe(fmt.Sprintf("resolving %s (%d done, %d found)", name, p.processed, p.discovered))
	_ = p.bar.Add(1)
}

func (p *progressObserver) OnDiscovered(count int) {
	p.discovered += count
}

func (p *progressObserver) OnVerdict(string, deps.Status) {}

// finish clears the spinner. Safe on a nil observer.
func (p *progressObserver) finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
