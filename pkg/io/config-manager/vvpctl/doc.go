// Package configmanager loads vvpctl settings.
//
// Settings come from, in increasing priority: built-in defaults, a config
// file (vvpctl.yaml, .json or .toml in the working directory or ~/.vvpctl,
// or the file named by --config), VVPCTL_* environment variables and
// command-line flags.
package configmanager
