// Package catalog is the read-only registry of equipment specifications.
//
// A Catalog is built once at start-up, either from Default or from specs
// declared in configuration, and is then shared by every simulation run.
// Lookups of unknown identifiers fail with *model.LookupError.
package catalog
