package pypi

import (
	"regexp"
	"strings"
)

// Requirement is one parsed PEP 508 requirement string from requires_dist.
type Requirement struct {
	Name       string `json:"name"`       // Normalized package name
	Constraint string `json:"constraint"` // Raw version specifier, "*" if absent
	Optional   bool   `json:"optional"`   // Guarded by an extra marker
	Extra      string `json:"extra,omitempty"`
}

var (
	nameRE  = regexp.MustCompile(`^([A-Za-z0-9][-A-Za-z0-9._]*)\s*(.*)$`)
	extraRE = regexp.MustCompile(`extra\s*==\s*['"]([\w-]+)['"]`)
)

// ParseRequirement parses a PEP 508 requirement string.
//
// Examples:
//
//	"requests>=2.20.0"
//	"typing-extensions; python_version < '3.8'"
//	"pytest; extra == 'testing'"
//
// Requirements guarded by an extra marker are flagged optional. Environment
// markers are stripped; bracketed extras in the dependency name
// ("pkg[extra1,extra2]") are dropped. Returns ok=false for strings with no
// recognizable package name.
func ParseRequirement(raw string) (Requirement, bool) {
	r := Requirement{}

	if m := extraRE.FindStringSubmatch(raw); m != nil {
		r.Optional = true
		r.Extra = m[1]
	}

	// Everything after ';' is an environment marker.
	spec := raw
	if i := strings.Index(spec, ";"); i >= 0 {
		spec = spec[:i]
	}
	spec = strings.TrimSpace(spec)

	m := nameRE.FindStringSubmatch(spec)
	if m == nil {
		return Requirement{}, false
	}

	name := m[1]
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}

	r.Name = NormalizeName(name)
	r.Constraint = strings.TrimSpace(m[2])
	if r.Constraint == "" {
		r.Constraint = "*"
	}
	return r, true
}

var separatorRE = regexp.MustCompile(`[-_.]+`)

// NormalizeName normalizes a Python package name per PEP 503: lowercase with
// runs of hyphens, underscores, and dots collapsed to a single hyphen.
func NormalizeName(name string) string {
	return separatorRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Well-known classifier suffixes mapped to short SPDX-like identifiers.
var classifierLicenses = map[string]string{
	"MIT License":                                      "MIT",
	"BSD License":                                      "BSD",
	"ISC License (ISCL)":                               "ISC",
	"Apache Software License":                          "Apache-2.0",
	"GNU General Public License v2 (GPLv2)":            "GPL-2.0",
	"GNU General Public License v2 or later (GPLv2+)":  "GPL-2.0-or-later",
	"GNU General Public License v3 (GPLv3)":            "GPL-3.0",
	"GNU General Public License v3 or later (GPLv3+)":  "GPL-3.0-or-later",
	"GNU Lesser General Public License v3 (LGPLv3)":    "LGPL-3.0",
	"Mozilla Public License 2.0 (MPL 2.0)":             "MPL-2.0",
	"Python Software Foundation License":               "PSF",
	"The Unlicense (Unlicense)":                        "Unlicense",
	"Boost Software License 1.0 (BSL-1.0)":             "BSL-1.0",
	"GNU Affero General Public License v3":             "AGPL-3.0",
	"GNU Affero General Public License v3 or later (AGPLv3+)": "AGPL-3.0-or-later",
}

var fullTextMarkers = []string{
	"permission is hereby granted",
	"the software is provided",
	"redistribution and use",
	"licensed under the",
	"copyright (c)",
	"all rights reserved",
}

// extractLicense derives a short license identifier from PyPI package info.
//
// Resolution order: license_expression (PEP 639), then the license field
// when it looks like a short name rather than embedded license text, then
// trove classifiers.
func extractLicense(info packageMeta) string {
	if expr := strings.TrimSpace(info.LicenseExpression); expr != "" {
		return expr
	}
	if lic := strings.TrimSpace(info.License); lic != "" && looksLikeLicenseName(lic) {
		return lic
	}
	return licenseFromClassifiers(info.Classifiers)
}

// looksLikeLicenseName reports whether value is a short license identifier
// rather than full license text.
func looksLikeLicenseName(value string) bool {
	if len(value) > 100 || strings.Contains(value, "\n") {
		return false
	}
	lower := strings.ToLower(value)
	for _, marker := range fullTextMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

func licenseFromClassifiers(classifiers []string) string {
	for _, clf := range classifiers {
		if !strings.HasPrefix(clf, "License :: ") {
			continue
		}
		parts := strings.Split(clf, " :: ")
		suffix := parts[len(parts)-1]
		if short, ok := classifierLicenses[suffix]; ok {
			return short
		}
		return suffix
	}
	return ""
}
