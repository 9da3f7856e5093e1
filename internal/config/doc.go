// Package config loads tunnel settings from a YAML file and the environment.
//
// Values are layered: built-in defaults, then the YAML file, then REVTUNNEL_*
// environment variables. Command-line flags are applied on top by the CLI.
// [Config.Tunnel] turns the result into a validated [tunnel.Config].
//
// The package also reads the known-hosts map, which assigns each local
// hostname its remote forwarding port, and checks identity files.
package config
