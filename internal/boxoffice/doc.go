// Package boxoffice defines the domain model shared by the extractors, the
// page cache and the pipeline: ranked releases, title details, credits and
// the closed genre/distributor vocabularies.
package boxoffice
