// Package languages indexes the supported ecosystems by name and alias.
package languages

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkgscout/pkgscout/pkg/deps"
	"github.com/pkgscout/pkgscout/pkg/deps/python"
	"github.com/pkgscout/pkgscout/pkg/deps/rust"
)

var registry = []deps.Language{
	rust.Language,
	python.Language,
}

// Get returns the language matching name, accepting canonical names and
// aliases case-insensitively.
func Get(name string) (deps.Language, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, lang := range registry {
		if lang.Name == needle {
			return lang, nil
		}
		for _, alias := range lang.Aliases {
			if alias == needle {
				return lang, nil
			}
		}
	}
	return deps.Language{}, fmt.Errorf("unsupported language %q (supported: %s)", name, strings.Join(Names(), ", "))
}

// Names returns the canonical language names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, lang := range registry {
		names = append(names, lang.Name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered language, sorted by canonical name.
func All() []deps.Language {
	out := make([]deps.Language, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
