// Package config manages host settings stored at ~/.decyphertek-ai/config.yaml.
// Values resolve in the order defaults, config file, ADMINOTAUR_* environment
// variables, and are exposed both as typed Settings and as raw key accessors
// for the config command.
package config
