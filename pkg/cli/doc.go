// Package cli contains the command line surface of vvpctl.
//
//   - cli/cmd: cobra commands (apply, diff, get, list, delete, schema, version)
//   - cli/parallel: bounded parallel execution of per-deployment work
//   - cli/ui: confirmation prompts and error normalization
package cli
