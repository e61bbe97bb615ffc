// Package crates implements a crates.io API client with response caching.
//
// The client fetches crate metadata, per-version dependency lists, and
// feature maps. Not-found responses are cached as well, so repeated checks
// of a tree containing unpublished crates stay offline within the TTL.
package crates
