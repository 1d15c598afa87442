// Package manifest handles the optional skill.yaml sidecar a skill directory
// may carry. It parses the file, validates it against an embedded JSON schema
// and checks the declared host version constraint.
package manifest
