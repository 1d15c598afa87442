// Package health runs canned probes against every installed skill, reads the
// agent's capability file and checks the external completion endpoint, then
// assembles the results into a Report. Building a report never fails: faults
// in any section become report-level error lines.
package health
