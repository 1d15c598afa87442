// Package registry discovers installed skills and launchable applications.
// A scan reads the store's mcp/ and app/ roots once and produces an
// immutable Catalog; Registry holds the current Catalog and swaps it
// wholesale on Refresh so concurrent readers never observe a partial scan.
package registry
