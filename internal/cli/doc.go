// Package cli implements the adminotaur command tree: catalog listing, skill
// invocation, the health harness, the invocation journal and settings.
package cli
