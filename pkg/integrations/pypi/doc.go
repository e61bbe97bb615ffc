// Package pypi implements a PyPI JSON API client with response caching.
//
// Package names are normalized per PEP 503 before lookup. Dependency edges
// come from requires_dist and are parsed as PEP 508 requirement strings;
// requirements guarded by an extra marker are reported as optional edges
// tagged with their extra name.
package pypi
