// Package scaffold generates new skill servers from embedded templates. It
// powers the "adminotaur new" command, writing a validated skill.yaml and an
// entry point that already speaks the stdin/stdout request protocol.
package scaffold
