// Package config loads and validates application configuration from
// environment variables (and an optional config file), producing explicit
// configuration structs that are passed to component constructors at
// startup. There is no ambient global configuration state.
package config
