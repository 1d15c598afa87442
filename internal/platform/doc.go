// Package platform isolates the OS-specific pieces of skill hosting:
// permission bits, executable detection, private interpreter layout and
// process-group control. On Unix systems children run in their own process
// group so a timeout can signal the whole tree. On Windows the permission
// helpers are no-ops and termination falls back to Process.Kill.
package platform
