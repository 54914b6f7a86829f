// Package csl searches the Consolidated Screening List published by the
// US International Trade Administration.
//
// Entries come from a local cache file ({"entries": [...]}) and, when an
// endpoint is configured, from the Trade.gov search API. Both are held in
// memory for 24 hours. Names are compared with a token-sort similarity so
// word order does not matter.
package csl
