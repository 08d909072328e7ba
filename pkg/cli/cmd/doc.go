// Package cmd provides the vvpctl command-line interface.
//
// The root command owns the global flags and the configuration manager;
// every subcommand resolves its dependencies from the DI runtime:
//   - apply: reconcile deployment documents against the platform
//   - diff: preview the changes apply would make
//   - get, list: print live deployments
//   - delete: cancel and delete deployments
//   - schema: print the JSON schema of deployment documents
package cmd
